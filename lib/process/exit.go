// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that choose the process exit
// status.
type exitCoder interface {
	ExitCode() int
}

// ExitCode returns the status for err: 0 for nil, the ExitCode of the
// first error in the chain that has one, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Fatal writes "error: err" to stderr and exits with ExitCode(err).
// Use it in main() for errors from run().
func Fatal(err error) {
	report(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
