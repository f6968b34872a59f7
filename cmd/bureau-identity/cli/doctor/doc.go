// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor runs the check-and-repair workflow behind
// "bureau-identity check".
//
// A check function returns a [Checklist]: one [Result] per check.
// Failures that can be repaired carry a fix attached with
// [Result.WithFix]. [Converge] alternates fix passes and re-checks;
// fixes that need root are skipped, and counted, when the process is
// unprivileged. [Checklist.Print] renders the outcome for people and
// [Checklist.Report] for scripts.
//
// What to check and how to repair it lives with the command.
package doctor
