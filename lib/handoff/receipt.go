// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/bureau-identity/lib/atomicfile"
	"github.com/bureau-foundation/bureau-identity/lib/codec"
)

// DefaultReceiptPath sits next to [DefaultPath].
const DefaultReceiptPath = "/etc/bureau/identity/receipt.cbor"

// Digest is a keyed BLAKE3 digest of handoff content.
type Digest [32]byte

// String returns the lowercase hex encoding.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// digestKey is the ASCII domain name, zero-padded to 32 bytes. Changing
// it invalidates every receipt already written.
var digestKey = [32]byte{
	'b', 'u', 'r', 'e', 'a', 'u', '.', 'i', 'd', 'e', 'n', 't', 'i', 't', 'y', '.',
	'h', 'a', 'n', 'd', 'o', 'f', 'f', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// DigestOf returns the handoff digest of content.
func DigestOf(content []byte) Digest {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("handoff: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(content)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Receipt records the outcome of one reconciliation.
type Receipt struct {
	UserName      string    `cbor:"user"`
	GroupName     string    `cbor:"group"`
	UID           uint32    `cbor:"uid"`
	GID           uint32    `cbor:"gid"`
	GroupCreated  bool      `cbor:"group_created"`
	UserCreated   bool      `cbor:"user_created"`
	OwnershipRoot string    `cbor:"ownership_root,omitempty"`
	HandoffPath   string    `cbor:"handoff_path"`
	HandoffDigest Digest    `cbor:"handoff_digest"`
	ReconciledAt  time.Time `cbor:"reconciled_at"`
}

// Matches reports whether content is what the receipt's run published.
func (r Receipt) Matches(content []byte) bool {
	return DigestOf(content) == r.HandoffDigest
}

// WriteReceipt stores receipt at path in CBOR.
func WriteReceipt(path string, receipt Receipt) error {
	data, err := codec.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	if err := atomicfile.Write(path, data, 0644); err != nil {
		return fmt.Errorf("writing receipt %s: %w", path, err)
	}
	return nil
}

// ErrNoReceipt means no reconciliation has written a receipt at the
// given path.
var ErrNoReceipt = errors.New("no reconciliation receipt")

// ReadReceipt loads the receipt at path.
func ReadReceipt(path string) (Receipt, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Receipt{}, fmt.Errorf("%w at %s", ErrNoReceipt, path)
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("reading receipt %s: %w", path, err)
	}
	var receipt Receipt
	if err := codec.Unmarshal(data, &receipt); err != nil {
		return Receipt{}, fmt.Errorf("decoding receipt %s: %w", path, err)
	}
	return receipt, nil
}
