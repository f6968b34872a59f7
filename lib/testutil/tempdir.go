// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BasePasswd and BaseGroup are the entries every EtcRoot starts with,
// mirroring a minimal Debian base image.
const (
	BasePasswd = "root:x:0:0:root:/root:/bin/bash\n" +
		"daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin\n" +
		"nobody:x:65534:65534:nobody:/nonexistent:/usr/sbin/nologin\n"
	BaseGroup = "root:x:0:\n" +
		"daemon:x:1:\n" +
		"users:x:100:\n" +
		"nogroup:x:65534:\n"
)

// EtcRoot creates a temporary root with etc/passwd and etc/group
// holding the given content. Lines are joined with newlines; pass nil
// for an empty file. Returns the root directory.
//
//	root := testutil.EtcRoot(t, []string{"root:x:0:0::/root:/bin/sh"}, []string{"root:x:0:"})
func EtcRoot(t *testing.T, passwdLines, groupLines []string) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, filepath.Join(root, "etc", "passwd"), joinLines(passwdLines))
	WriteFile(t, filepath.Join(root, "etc", "group"), joinLines(groupLines))
	return root
}

// BaseEtcRoot creates a root populated with BasePasswd and BaseGroup.
func BaseEtcRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, filepath.Join(root, "etc", "passwd"), BasePasswd)
	WriteFile(t, filepath.Join(root, "etc", "group"), BaseGroup)
	return root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
