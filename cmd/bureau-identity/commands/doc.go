// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the bureau-identity command tree:
//
//   - reconcile: provision the identity, re-own the application tree,
//     and publish the resolved user name
//   - handoff show / handoff publish: read or repair the handoff
//   - check: read-only checklist of the provisioned state, with --fix
//
// Every command takes --config (or BUREAU_IDENTITY_CONFIG) and
// --log-level. Identity flags override the configuration file.
package commands
