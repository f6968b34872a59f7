// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
)

// Mode is how check was invoked.
type Mode struct {
	Fix    bool
	DryRun bool
}

// Print writes c to w, one check per line, followed by a summary. It
// returns a *cli.ExitError with code 1 if any check failed, so the
// caller can return it without printing anything further.
func (c Checklist) Print(w io.Writer, mode Mode, outcome Outcome) error {
	width := 0
	for _, result := range c {
		width = max(width, len(result.Name))
	}

	var fixable, fixed int
	var elevatedHints []string
	for _, result := range c {
		fmt.Fprintf(w, "[%-5s]  %-*s  %s\n", strings.ToUpper(string(result.Status)), width, result.Name, result.Message)
		switch {
		case result.Status == StatusFixed:
			fixed++
		case result.Fixable():
			fixable++
			if result.Elevated {
				elevatedHints = append(elevatedHints, result.FixHint)
			}
			if mode.DryRun {
				note := ""
				if result.Elevated {
					note = " (requires sudo)"
				}
				fmt.Fprintf(w, "         %*s  would fix: %s%s\n", width, "", result.FixHint, note)
			}
		}
	}
	fmt.Fprintln(w)

	if !c.Failed() {
		if fixed > 0 {
			fmt.Fprintf(w, "%d issue(s) repaired.\n", fixed)
		} else {
			fmt.Fprintln(w, "All checks passed.")
		}
		return nil
	}

	switch {
	case mode.DryRun && fixable > 0:
		fmt.Fprintf(w, "%d issue(s) would be repaired. Run without --dry-run to apply.\n", fixable)
	case !mode.Fix && fixable > 0:
		fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixable)
	default:
		fmt.Fprintln(w, "Some checks failed.")
	}
	if outcome.PermissionDenied {
		fmt.Fprintln(w, "\nSome fixes failed due to insufficient permissions.")
	}
	if outcome.ElevatedSkipped > 0 {
		fmt.Fprintf(w, "\n%d fix(es) require root privileges:\n", outcome.ElevatedSkipped)
		for _, hint := range elevatedHints {
			fmt.Fprintf(w, "  - %s\n", hint)
		}
		fmt.Fprintln(w, "\nRe-run as root to apply them:\n  sudo bureau-identity check --fix")
	}
	return &cli.ExitError{Code: 1}
}
