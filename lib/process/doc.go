// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler: report
// an error that escaped the command tree to stderr and exit with a
// status derived from it. This runs after the structured logger's
// lifetime, so it writes raw text.
package process
