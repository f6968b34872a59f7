// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for bureau-identity
// packages.
//
// [EtcRoot] builds a throwaway root directory holding etc/passwd and
// etc/group (and optionally shadow files) so identity backends can be
// exercised without touching the host database. [ReadFile] and
// [WriteFile] wrap the os calls tests make most often.
//
// [OwnerIDs] returns the UID and GID the test process can legitimately
// chown files to without privileges (its own), and [RequireRoot] /
// [RequireNonRoot] skip tests whose outcome depends on privilege.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no other bureau-identity dependencies.
package testutil
