// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"simple", "appuser", ""},
		{"existing style", "John.Doe", ""},
		{"underscore", "_apt", ""},
		{"machine account", "host1$", ""},
		{"hyphen inside", "www-data", ""},
		{"empty", "", "empty"},
		{"leading hyphen", "-rf", "starts with '-'"},
		{"dot", ".", "reserved"},
		{"dotdot", "..", "reserved"},
		{"numeric", "1000", "purely numeric"},
		{"colon", "app:user", "invalid character"},
		{"whitespace", "app user", "invalid character"},
		{"slash", "app/user", "invalid character"},
		{"dollar only", "$", "invalid character"},
		{"dollar inside", "a$b", "invalid character"},
		{"too long", strings.Repeat("a", MaxNameLength+1), "maximum"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateName(test.input)
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", test.input, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want error containing %q", test.input, err, test.wantErr)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{UID: 99, GID: 100, UserName: "appuser", GroupName: "appgroup", Shell: "/bin/sh"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on a valid request = %v", err)
	}

	invalid := Request{UID: 0, GID: 0, UserName: strings.Repeat("u", MaxCreateNameLength+1), GroupName: "1", Shell: "sh"}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("Validate() should reject the request")
	}
	for _, want := range []string{"uid 0", "gid 0", "user name", "group name", "shell"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q: %v", want, err)
		}
	}
}

func TestRequestLoginShell(t *testing.T) {
	if shell := (Request{}).LoginShell(); shell != DefaultShell {
		t.Errorf("LoginShell() = %q, want %q", shell, DefaultShell)
	}
	if shell := (Request{Shell: "/bin/bash"}).LoginShell(); shell != "/bin/bash" {
		t.Errorf("LoginShell() = %q, want /bin/bash", shell)
	}
}
