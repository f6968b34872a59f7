// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code int }

func (e codedError) Error() string { return "coded" }
func (e codedError) ExitCode() int { return e.code }

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"coded", codedError{code: 3}, 3},
		{"wrapped", fmt.Errorf("reconcile: %w", codedError{code: 2}), 2},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("%s: ExitCode() = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestReport(t *testing.T) {
	var buffer bytes.Buffer
	report(&buffer, errors.New("group step failed: creation conflict"))
	if got := buffer.String(); got != "error: group step failed: creation conflict\n" {
		t.Errorf("report() wrote %q", got)
	}
}
