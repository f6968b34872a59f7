// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "strconv"

// ExitError ends the process with Code after the command has reported
// the failure itself, so main prints nothing more. check returns one
// for a failed checklist.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return "exit status " + strconv.Itoa(e.Code) }

// ExitCode implements the interface main and lib/process test for.
func (e *ExitError) ExitCode() int { return e.Code }
