// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ownership re-owns a directory tree to a numeric user and
// group and verifies the result.
//
// [Apply] visits every entry under the root (the root included) and
// calls lchown(2) on it. Symlinks are re-owned themselves and never
// followed, so a link pointing outside the tree cannot redirect the
// chown. File modes are left alone: individual files may carry
// intentionally restrictive permissions.
//
// Failures do not stop the walk. Every entry that could not be
// re-owned is collected and reported in one error wrapping
// [ErrOwnership]; a partially re-owned application root is as broken
// as an untouched one, so callers treat any such error as fatal.
//
// [Verify] walks the same tree read-only and reports each entry whose
// owner differs from the expected pair.
package ownership
