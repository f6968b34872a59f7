// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile replaces files so readers see either the old or
// the new content, never a mix.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Write replaces path with data and sets mode on the result. The
// temporary file lives in the same directory so the rename never
// crosses filesystems, and it is fsynced before the rename so a crash
// cannot leave an empty file in place of the old one.
func Write(path string, data []byte, mode os.FileMode) error {
	return write(path, data, mode, nil)
}

// Replace rewrites an existing file, keeping its permission bits, owner
// and group. /etc/shadow is typically root:shadow 0640, and a rename
// alone would hand it to the writer's group.
func Replace(path string, data []byte) error {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	mode := os.FileMode(stat.Mode & 0o777)
	return write(path, data, mode, &owner{uid: stat.Uid, gid: stat.Gid})
}

type owner struct {
	uid, gid uint32
}

func write(path string, data []byte, mode os.FileMode, keep *owner) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	temporaryPath := temporary.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("write %s: %w", temporaryPath, err)
	}
	if keep != nil {
		if err := chownIfDifferent(temporary, *keep); err != nil {
			temporary.Close()
			return err
		}
	}
	// Chmod follows chown: chown clears setgid bits on some systems.
	if err := temporary.Chmod(mode); err != nil {
		temporary.Close()
		return fmt.Errorf("chmod %s: %w", temporaryPath, err)
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		return fmt.Errorf("sync %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("close %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", temporaryPath, path, err)
	}
	committed = true
	return nil
}

// chownIfDifferent skips the call when the temporary file already has
// the wanted owner, so an unprivileged writer replacing its own file
// never needs CAP_CHOWN.
func chownIfDifferent(file *os.File, want owner) error {
	var stat unix.Stat_t
	if err := unix.Fstat(int(file.Fd()), &stat); err != nil {
		return fmt.Errorf("fstat %s: %w", file.Name(), err)
	}
	if stat.Uid == want.uid && stat.Gid == want.gid {
		return nil
	}
	if err := unix.Fchown(int(file.Fd()), int(want.uid), int(want.gid)); err != nil {
		return fmt.Errorf("chown %s to %d:%d: %w", file.Name(), want.uid, want.gid, err)
	}
	return nil
}
