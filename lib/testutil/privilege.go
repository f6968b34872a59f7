// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"testing"
)

// OwnerIDs returns the effective UID and GID of the test process.
// Chowning a file the process owns to these IDs never needs privilege.
func OwnerIDs(t *testing.T) (uint32, uint32) {
	t.Helper()
	return uint32(os.Geteuid()), uint32(os.Getegid())
}

// RequireRoot skips the test unless the process runs as root.
func RequireRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("test requires root")
	}
}

// RequireNonRoot skips the test when the process runs as root, for
// tests that depend on a permission error.
func RequireNonRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("test requires a non-root process")
	}
}
