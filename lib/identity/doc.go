// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity resolves a desired numeric user/group identity to
// named records in the host's identity database, creating records only
// when the numeric ID is unclaimed.
//
// The numeric ID is the real constraint: it has to match file ownership
// a downstream consumer depends on (a mounted volume, an image layer).
// The name is only a preference. When a record already exists for the
// requested ID its name is authoritative and the preferred name is
// ignored; records are never renamed.
//
// The database is abstracted by [Database] so the same resolution logic
// runs against the host's account tools (package hostdb), raw
// passwd/group files under a root directory (package etcfiles), or a
// test double. Backends report outcomes through sentinel errors:
//
//   - [ErrNameTaken] -- creation refused, the name belongs to a record
//     with a different ID
//   - [ErrIDOccupied] -- creation refused, the ID is already in use
//   - [ErrAlreadyMember] -- membership already present
//   - [ErrNotFound] -- a named record referenced by an operation is absent
//
// The resolvers translate these into the outcomes callers act on:
// [ErrCreationConflict] (fatal, needs an operator) and
// [ErrMembershipFailure] (non-fatal by default, see [EnsureMembership]).
//
// Key exports:
//
//   - [Request], [Record] -- the immutable input and looked-up records
//   - [ResolveGroup], [ResolveUser] -- resolve-or-create per entity
//   - [EnsureMembership] -- idempotent supplementary group membership
//   - [ValidateName] -- account name syntax shared with the handoff file
package identity
