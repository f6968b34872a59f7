// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolError_Constructors(t *testing.T) {
	tests := []struct {
		err      *ToolError
		category ErrorCategory
		exitCode int
	}{
		{Validation("bad %s", "flag"), CategoryValidation, 2},
		{NotFound("no handoff"), CategoryNotFound, 1},
		{Forbidden("not root"), CategoryForbidden, 1},
		{Conflict("name taken"), CategoryConflict, 3},
		{Internal("bug"), CategoryInternal, 1},
	}
	for _, test := range tests {
		if test.err.Category != test.category {
			t.Errorf("%v: Category = %q, want %q", test.err, test.err.Category, test.category)
		}
		if test.err.ExitCode() != test.exitCode {
			t.Errorf("%v: ExitCode() = %d, want %d", test.err, test.err.ExitCode(), test.exitCode)
		}
	}
	if got := Validation("bad %s", "flag").Error(); got != "bad flag" {
		t.Errorf("Error() = %q, want %q", got, "bad flag")
	}
}

func TestToolError_Chain(t *testing.T) {
	sentinel := errors.New("handoff not published")
	err := fmt.Errorf("show: %w", NotFound("reading: %w", sentinel))

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should reach through the ToolError")
	}
	if CategoryOf(err) != CategoryNotFound {
		t.Errorf("CategoryOf() = %q, want not_found", CategoryOf(err))
	}
	if CategoryOf(sentinel) != CategoryInternal {
		t.Errorf("CategoryOf(plain) = %q, want internal", CategoryOf(sentinel))
	}
}
