// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package handoff carries the resolved account name from the
// reconciliation stage to a later stage that runs as that account.
//
// The two stages share no process memory; the only channel between
// them is a single-line file holding exactly the user name. [File]
// implements both ends: [File.Publish] writes the name atomically and
// [File.Retrieve] reads it back, failing with [ErrMissingHandoff] when
// nothing was published. Retrieve validates the content as an account
// name rather than trusting whatever the file holds.
//
// A [Receipt] records what a reconciliation produced, together with a
// keyed BLAKE3 digest of the handoff content, so diagnostics can tell
// when the handoff was edited after the run that wrote it.
package handoff
