// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestDigestDomainSeparated(t *testing.T) {
	if DigestOf([]byte("alice")) != DigestOf([]byte("alice")) {
		t.Error("DigestOf() is not deterministic")
	}
	if DigestOf([]byte("alice")) == DigestOf([]byte("bob")) {
		t.Error("DigestOf() collides for different names")
	}
	if len(DigestOf(nil).String()) != 64 {
		t.Errorf("Digest.String() = %q, want 64 hex characters", DigestOf(nil).String())
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity", "receipt.cbor")
	written := Receipt{
		UserName:      "appuser",
		GroupName:     "users",
		UID:           99,
		GID:           100,
		UserCreated:   true,
		OwnershipRoot: "/app",
		HandoffPath:   DefaultPath,
		HandoffDigest: DigestOf([]byte("appuser")),
		ReconciledAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := WriteReceipt(path, written); err != nil {
		t.Fatalf("WriteReceipt() error: %v", err)
	}
	read, err := ReadReceipt(path)
	if err != nil {
		t.Fatalf("ReadReceipt() error: %v", err)
	}
	if !read.ReconciledAt.Equal(written.ReconciledAt) {
		t.Errorf("ReconciledAt = %v, want %v", read.ReconciledAt, written.ReconciledAt)
	}
	read.ReconciledAt = written.ReconciledAt
	if read != written {
		t.Errorf("ReadReceipt() = %+v, want %+v", read, written)
	}
	if !read.Matches([]byte("appuser")) {
		t.Error("Matches(appuser) = false, want true")
	}
	if read.Matches([]byte("root")) {
		t.Error("Matches(root) = true, want false")
	}
}

func TestReadReceiptMissing(t *testing.T) {
	_, err := ReadReceipt(filepath.Join(t.TempDir(), "receipt.cbor"))
	if !errors.Is(err, ErrNoReceipt) {
		t.Errorf("ReadReceipt() error = %v, want ErrNoReceipt", err)
	}
}
