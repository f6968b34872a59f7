// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/bureau-identity/lib/atomicfile"
	"github.com/bureau-foundation/bureau-identity/lib/identity"
)

// DefaultPath is where the handoff is published unless configured
// otherwise.
const DefaultPath = "/etc/bureau/identity/run-as"

var (
	// ErrMissingHandoff means Retrieve ran before any Publish. There is
	// no safe identity to fall back to.
	ErrMissingHandoff = errors.New("handoff not published")

	// ErrInvalidHandoff means the handoff exists but does not hold
	// exactly one valid account name.
	ErrInvalidHandoff = errors.New("invalid handoff content")
)

// Publisher writes the resolved user name for a later stage.
type Publisher interface {
	Publish(userName string) error
}

// Retriever reads a published user name.
type Retriever interface {
	Retrieve() (string, error)
}

// File is a handoff stored at Path.
type File struct {
	Path string
}

var (
	_ Publisher = File{}
	_ Retriever = File{}
)

// Publish atomically replaces the handoff with userName. The parent
// directory is created if needed.
func (f File) Publish(userName string) error {
	if err := identity.ValidateName(userName); err != nil {
		return fmt.Errorf("publishing handoff: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("publishing handoff: %w", err)
	}
	if err := atomicfile.Write(f.Path, []byte(userName), 0644); err != nil {
		return fmt.Errorf("publishing handoff to %s: %w", f.Path, err)
	}
	return nil
}

// Retrieve returns the published user name exactly as written.
func (f File) Retrieve() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s does not exist", ErrMissingHandoff, f.Path)
	}
	if err != nil {
		return "", fmt.Errorf("reading handoff %s: %w", f.Path, err)
	}
	name := string(data)
	if err := checkContent(name); err != nil {
		return "", fmt.Errorf("%w in %s: %w", ErrInvalidHandoff, f.Path, err)
	}
	return name, nil
}

// checkContent rejects anything but a bare account name. A trailing
// newline added by an editor is an error too: the consumer substitutes
// the content literally.
func checkContent(name string) error {
	if name == "" {
		return errors.New("file is empty")
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("%q contains whitespace", name)
	}
	return identity.ValidateName(name)
}
