// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// isRoot is replaceable in tests.
var isRoot = func() bool { return unix.Geteuid() == 0 }

// IsRoot reports whether the process has effective UID 0.
func IsRoot() bool { return isRoot() }

// Checklist is the ordered result of one run of every check.
type Checklist []Result

// Failed reports whether any check failed.
func (c Checklist) Failed() bool {
	for _, result := range c {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}

// Outcome summarizes what --fix did.
type Outcome struct {
	// FixedCount is the number of fixes that succeeded, over all passes.
	FixedCount int

	// PermissionDenied is set when a fix failed with EPERM or EACCES.
	PermissionDenied bool

	// ElevatedSkipped counts failures left unrepaired because their fix
	// needs root and the process is not root.
	ElevatedSkipped int
}

// Converge runs check, then alternates fix passes and re-checks until
// nothing fails, a pass repairs nothing, or maxPasses passes ran. One
// repair often unblocks another check (the user can be created only
// once its group exists), so a single pass is not enough.
//
// Checks that pass after an earlier pass repaired them are reported as
// [StatusFixed].
func Converge(ctx context.Context, check func(context.Context) Checklist, maxPasses int) (Checklist, Outcome) {
	var outcome Outcome
	root := IsRoot()
	results := check(ctx)

	for pass := 0; pass < maxPasses && results.Failed(); pass++ {
		fixed := results.applyFixes(ctx, root, &outcome)
		if fixed == 0 {
			break
		}
		outcome.FixedCount += fixed
		next := check(ctx)
		next.carryRepairs(results)
		results = next
	}

	if !root {
		for _, result := range results {
			if result.Fixable() && result.Elevated {
				outcome.ElevatedSkipped++
			}
		}
	}
	return results, outcome
}

// applyFixes runs every runnable fix in place and returns how many
// succeeded. Elevated fixes are left alone unless root.
func (c Checklist) applyFixes(ctx context.Context, root bool, outcome *Outcome) int {
	fixed := 0
	for i := range c {
		if !c[i].Fixable() || (c[i].Elevated && !root) {
			continue
		}
		err := c[i].fix(ctx)
		switch {
		case err == nil:
			c[i].Status = StatusFixed
			fixed++
		case errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES):
			outcome.PermissionDenied = true
			c[i].Message += " (insufficient permissions)"
		default:
			c[i].Message = fmt.Sprintf("%s (fix failed: %v)", c[i].Message, err)
		}
	}
	return fixed
}

// carryRepairs marks checks that pass now but were repaired in previous
// as fixed.
func (c Checklist) carryRepairs(previous Checklist) {
	repaired := make(map[string]bool)
	for _, result := range previous {
		if result.Status == StatusFixed {
			repaired[result.Name] = true
		}
	}
	for i := range c {
		if c[i].Status == StatusPass && repaired[c[i].Name] {
			c[i].Status = StatusFixed
		}
	}
}

// Report is the --json form of a checklist.
type Report struct {
	Checks           Checklist `json:"checks"`
	OK               bool      `json:"ok"`
	DryRun           bool      `json:"dry_run,omitempty"`
	PermissionDenied bool      `json:"permission_denied,omitempty"`
	ElevatedSkipped  int       `json:"elevated_skipped,omitempty"`
}

// Report returns the --json form of c.
func (c Checklist) Report(dryRun bool, outcome Outcome) Report {
	return Report{
		Checks:           c,
		OK:               !c.Failed(),
		DryRun:           dryRun,
		PermissionDenied: outcome.PermissionDenied,
		ElevatedSkipped:  outcome.ElevatedSkipped,
	}
}
