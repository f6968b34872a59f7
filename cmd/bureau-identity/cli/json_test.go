// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"testing"
)

func TestEmitJSON_Disabled(t *testing.T) {
	var output JSONOutput
	done, err := output.EmitJSON(map[string]string{"user": "appuser"})
	if done || err != nil {
		t.Errorf("EmitJSON() without --json = %v, %v, want false, nil", done, err)
	}
}

func TestEmitJSON_WritesToStdout(t *testing.T) {
	var buffer bytes.Buffer
	previous := Stdout
	Stdout = &buffer
	t.Cleanup(func() { Stdout = previous })

	output := JSONOutput{OutputJSON: true}
	done, err := output.EmitJSON(map[string]string{"path": "/srv/a&b"})
	if !done || err != nil {
		t.Fatalf("EmitJSON() = %v, %v, want true, nil", done, err)
	}
	want := "{\n  \"path\": \"/srv/a&b\"\n}\n"
	if got := buffer.String(); got != want {
		t.Errorf("EmitJSON() wrote %q, want %q", got, want)
	}
}
