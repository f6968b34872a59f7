// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"os"
)

// Stdout receives command output, JSON or text. Replaced in tests.
var Stdout io.Writer = os.Stdout

// JSONOutput adds a --json flag to a params struct. Commands embed it
// and return early when EmitJSON reports done:
//
//	if done, err := params.EmitJSON(result); done {
//	    return err
//	}
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`
}

// EmitJSON writes result to [Stdout] as indented JSON when --json was
// given. done is false when the caller should print text instead.
func (j *JSONOutput) EmitJSON(result any) (done bool, err error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, encodeJSON(Stdout, result)
}

// encodeJSON writes one indented document. Paths are left unescaped.
func encodeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
