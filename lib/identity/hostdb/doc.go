// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostdb implements [identity.Database] against the running
// system: lookups go through os/user (NSS when cgo is enabled,
// /etc/passwd and /etc/group otherwise) and writes go through the
// distribution's account tools.
//
// Two tool flavors are supported:
//
//   - [Shadow] -- groupadd, useradd and usermod from shadow-utils
//     (Debian, Ubuntu, Fedora, RHEL)
//   - [BusyBox] -- the addgroup and adduser applets (Alpine and other
//     BusyBox-based images)
//
// [Detect] picks Shadow when useradd is on PATH and BusyBox otherwise.
//
// The tools report conflicts only through exit status (shadow-utils)
// or message text (BusyBox). [classify] maps both onto the identity
// sentinels so the resolvers never parse tool output themselves.
package hostdb
