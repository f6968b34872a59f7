// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusWarn  Status = "warn"
	StatusSkip  Status = "skip"
	StatusFixed Status = "fixed"
)

// FixAction repairs a failed check. It captures whatever it needs when
// the check builds it.
type FixAction func(ctx context.Context) error

// Result is one line of the checklist.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`

	// FixHint says in a few words what the fix does. Set only on
	// failures that carry a fix.
	FixHint string `json:"fix_hint,omitempty"`

	// Elevated marks fixes that need root.
	Elevated bool `json:"elevated,omitempty"`

	fix FixAction
}

func newResult(name string, status Status, format string, args []any) Result {
	return Result{Name: name, Status: status, Message: fmt.Sprintf(format, args...)}
}

func Pass(name, format string, args ...any) Result {
	return newResult(name, StatusPass, format, args)
}

// Fail reports a problem. Attach a repair with [Result.WithFix].
func Fail(name, format string, args ...any) Result {
	return newResult(name, StatusFail, format, args)
}

// Warn reports something worth knowing that does not fail the
// checklist.
func Warn(name, format string, args ...any) Result {
	return newResult(name, StatusWarn, format, args)
}

// Skip reports a check that could not run, usually because an earlier
// one failed.
func Skip(name, format string, args ...any) Result {
	return newResult(name, StatusSkip, format, args)
}

// WithFix returns a copy of r that --fix repairs by calling fix.
func (r Result) WithFix(hint string, elevated bool, fix FixAction) Result {
	r.FixHint = hint
	r.Elevated = elevated
	r.fix = fix
	return r
}

// Fixable reports whether r is a failure with a repair attached.
func (r Result) Fixable() bool {
	return r.Status == StatusFail && r.fix != nil
}
