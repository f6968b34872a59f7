// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ownership

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrOwnership means at least one entry under the root could not be
// re-owned (or the root itself is unusable).
var ErrOwnership = errors.New("ownership error")

// maxReportedFailures bounds how many per-entry failures are spelled
// out in an error message. The count is always exact.
const maxReportedFailures = 10

// Mismatch is an entry whose owner differs from the expected one.
type Mismatch struct {
	Path string `json:"path"`
	UID  uint32 `json:"uid"`
	GID  uint32 `json:"gid"`
}

// Apply sets the owner of root and everything below it to uid:gid.
// A root that is a symlink is followed; links below it are not.
func Apply(root string, uid, gid uint32) error {
	root, err := resolveRoot(root)
	if err != nil {
		return err
	}

	var failures []error
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", path, err))
			return nil
		}
		if chownErr := unix.Lchown(path, int(uid), int(gid)); chownErr != nil {
			failures = append(failures, fmt.Errorf("chown %s: %w", path, chownErr))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: walking %s: %w", ErrOwnership, root, err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %d entries under %s not re-owned to %d:%d: %w",
			ErrOwnership, len(failures), root, uid, gid, failureList(failures))
	}
	return nil
}

// Verify returns every entry under root not owned by uid:gid. An empty
// result means the tree is completely owned.
func Verify(root string, uid, gid uint32) ([]Mismatch, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		var stat unix.Stat_t
		if err := unix.Lstat(path, &stat); err != nil {
			return fmt.Errorf("lstat %s: %w", path, err)
		}
		if stat.Uid != uid || stat.Gid != gid {
			mismatches = append(mismatches, Mismatch{Path: path, UID: stat.Uid, GID: stat.Gid})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying %s: %w", root, err)
	}
	return mismatches, nil
}

// resolveRoot returns root with symlinks evaluated. WalkDir does not
// descend into a root that is itself a link.
func resolveRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty root path", ErrOwnership)
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOwnership, root, err)
	}
	return resolved, nil
}

// failureList reports a bounded summary but keeps every failure in the
// chain, so callers can match EPERM with errors.Is.
type failureList []error

func (f failureList) Error() string   { return summarize(f) }
func (f failureList) Unwrap() []error { return f }

func summarize(failures []error) string {
	shown := failures
	if len(shown) > maxReportedFailures {
		shown = shown[:maxReportedFailures]
	}
	messages := make([]string, 0, len(shown)+1)
	for _, failure := range shown {
		messages = append(messages, failure.Error())
	}
	if hidden := len(failures) - len(shown); hidden > 0 {
		messages = append(messages, fmt.Sprintf("and %d more", hidden))
	}
	return strings.Join(messages, "; ")
}
