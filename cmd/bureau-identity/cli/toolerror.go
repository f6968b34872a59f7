// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ErrorCategory tells a script driving the binary what kind of failure
// occurred, through the exit status, without it parsing messages.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation" // bad flags, arguments or configuration
	CategoryNotFound   ErrorCategory = "not_found"  // e.g. a handoff never published
	CategoryForbidden  ErrorCategory = "forbidden"  // insufficient privilege
	CategoryConflict   ErrorCategory = "conflict"   // a name held under another ID
	CategoryInternal   ErrorCategory = "internal"
)

// exitCodes lists the categories that do not exit 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryConflict:   3,
}

// ToolError attaches a category to an error. The message is the wrapped
// error's message alone.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode is the process exit status for the category.
func (e *ToolError) ExitCode() int {
	if code, ok := exitCodes[e.Category]; ok {
		return code
	}
	return 1
}

func categorized(category ErrorCategory, format string, args []any) *ToolError {
	return &ToolError{Category: category, Err: fmt.Errorf(format, args...)}
}

func Validation(format string, args ...any) *ToolError {
	return categorized(CategoryValidation, format, args)
}

func NotFound(format string, args ...any) *ToolError {
	return categorized(CategoryNotFound, format, args)
}

func Forbidden(format string, args ...any) *ToolError {
	return categorized(CategoryForbidden, format, args)
}

func Conflict(format string, args ...any) *ToolError {
	return categorized(CategoryConflict, format, args)
}

func Internal(format string, args ...any) *ToolError {
	return categorized(CategoryInternal, format, args)
}

// CategoryOf reports the category of the outermost ToolError in err's
// chain. Uncategorized errors are internal.
func CategoryOf(err error) ErrorCategory {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}
	return CategoryInternal
}
