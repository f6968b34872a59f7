// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package etcfiles implements [identity.Database] by reading and
// rewriting passwd(5) and group(5) files under a root directory.
//
// This backend serves two cases the host tools cannot: provisioning an
// image root that has no shadow-utils or BusyBox applets (distroless
// and scratch-derived layers), and hermetic tests that must not touch
// the real /etc. It reproduces what useradd/groupadd write for a
// system account with no home directory, nothing more.
//
// Every operation re-reads the files; nothing is cached between calls.
// Writes replace the whole file atomically (temporary file in the same
// directory, fsync, rename) and preserve the original mode, so a reader
// never observes a half-written database. When <root>/etc/shadow or
// <root>/etc/gshadow exist, matching locked entries are appended so
// pwck/grpck stay clean. Lines this package does not understand
// (comments, NIS "+" entries, malformed lines) are preserved verbatim
// and ignored for lookups.
//
// There is no locking: a single writer per root is a precondition of
// the reconciler, and lckpwdf(3) would only coordinate with tools
// running on the same root filesystem anyway.
package etcfiles
