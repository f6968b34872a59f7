// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hostdb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/bureau-foundation/bureau-identity/lib/identity"
)

// Runner executes an account tool. Failures with an exit status are
// reported as *CommandError so they can be classified.
type Runner func(ctx context.Context, name string, args ...string) error

// CommandError is a tool invocation that exited non-zero.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: exit status %d: %s", e.Name, strings.Join(e.Args, " "), e.ExitCode, e.Output)
}

// runCommand is the production Runner.
func runCommand(ctx context.Context, name string, args ...string) error {
	command := exec.CommandContext(ctx, name, args...)
	output, err := command.CombinedOutput()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Output:   strings.TrimSpace(string(output)),
		}
	}
	return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
}

// Flavor is a family of account tools.
type Flavor string

const (
	Shadow  Flavor = "shadow"
	BusyBox Flavor = "busybox"
)

// Detect returns Shadow if useradd is on PATH, BusyBox if adduser is,
// and an error if neither is.
func Detect() (Flavor, error) {
	if _, err := exec.LookPath("useradd"); err == nil {
		return Shadow, nil
	}
	if _, err := exec.LookPath("adduser"); err == nil {
		return BusyBox, nil
	}
	return "", fmt.Errorf("neither useradd (shadow-utils) nor adduser (BusyBox) found in PATH")
}

// ParseFlavor accepts the configuration spellings of a flavor.
func ParseFlavor(name string) (Flavor, error) {
	switch Flavor(name) {
	case Shadow, BusyBox:
		return Flavor(name), nil
	}
	return "", fmt.Errorf("unknown account tool flavor %q (want %q or %q)", name, Shadow, BusyBox)
}

func (f Flavor) createGroupCommand(name string, gid uint32) (string, []string) {
	if f == BusyBox {
		return "addgroup", []string{"-g", fmt.Sprint(gid), name}
	}
	return "groupadd", []string{"--gid", fmt.Sprint(gid), name}
}

// createUserCommand never creates a home directory. --no-log-init keeps
// useradd from growing /var/log/lastlog to a sparse file sized by the
// UID, which inflates image layers for large UIDs.
func (f Flavor) createUserCommand(name string, uid uint32, group, shell string) (string, []string) {
	if f == BusyBox {
		return "adduser", []string{"-D", "-H", "-u", fmt.Sprint(uid), "-G", group, "-s", shell, name}
	}
	return "useradd", []string{
		"--no-log-init", "--no-create-home",
		"--uid", fmt.Sprint(uid),
		"--gid", group,
		"--shell", shell,
		name,
	}
}

func (f Flavor) addMemberCommand(user, group string) (string, []string) {
	if f == BusyBox {
		return "addgroup", []string{user, group}
	}
	return "usermod", []string{"--append", "--groups", group, user}
}

// Exit statuses documented in groupadd(8), useradd(8) and usermod(8).
const (
	shadowExitIDNotUnique   = 4
	shadowExitGroupNotFound = 6
	shadowExitNameNotUnique = 9
)

var (
	busyboxNameInUse = regexp.MustCompile(`(?:user|group) '[^']*' in use`)
	busyboxIDInUse   = regexp.MustCompile(`(?:uid|gid) '?\d+'? in use`)
	busyboxUnknown   = regexp.MustCompile(`unknown (?:user|group)`)
	busyboxMember    = regexp.MustCompile(`already (?:a member|in)`)
)

// classify wraps a tool failure with the identity sentinel it
// corresponds to. Errors that are not *CommandError, or whose status
// means something else (lock contention, bad syntax), pass through.
func (f Flavor) classify(err error) error {
	var commandErr *CommandError
	if !errors.As(err, &commandErr) {
		return err
	}

	var sentinel error
	if f == BusyBox {
		switch {
		case busyboxNameInUse.MatchString(commandErr.Output):
			sentinel = identity.ErrNameTaken
		case busyboxIDInUse.MatchString(commandErr.Output):
			sentinel = identity.ErrIDOccupied
		case busyboxUnknown.MatchString(commandErr.Output):
			sentinel = identity.ErrNotFound
		case busyboxMember.MatchString(commandErr.Output):
			sentinel = identity.ErrAlreadyMember
		}
	} else {
		switch commandErr.ExitCode {
		case shadowExitNameNotUnique:
			sentinel = identity.ErrNameTaken
		case shadowExitIDNotUnique:
			sentinel = identity.ErrIDOccupied
		case shadowExitGroupNotFound:
			sentinel = identity.ErrNotFound
		}
	}

	if sentinel == nil {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
