// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

const (
	// MaxNameLength bounds any account name accepted from the database
	// or the handoff file.
	MaxNameLength = 256

	// MaxCreateNameLength is the longest name this package will ask a
	// backend to create. shadow-utils and BusyBox both refuse longer
	// names (LOGIN_NAME_MAX - 1 on glibc systems).
	MaxCreateNameLength = 32

	// DefaultShell is used when a request leaves Shell empty. The
	// provisioned identity runs a service, not an interactive login.
	DefaultShell = "/usr/sbin/nologin"
)

// Request is the desired identity, supplied once per invocation and
// never modified.
type Request struct {
	// UID is the numeric user ID the identity must have.
	UID uint32 `json:"uid"`

	// GID is the numeric group ID the identity's group must have.
	GID uint32 `json:"gid"`

	// UserName is used only when no user with UID exists.
	UserName string `json:"user"`

	// GroupName is used only when no group with GID exists.
	GroupName string `json:"group"`

	// Shell is the login shell for a newly created user.
	Shell string `json:"shell"`
}

// Validate checks that the request describes a creatable non-root
// identity. All problems are reported together.
func (r Request) Validate() error {
	var errs []error
	if r.UID == 0 {
		errs = append(errs, fmt.Errorf("uid 0 is root; a non-root uid is required"))
	}
	if r.GID == 0 {
		errs = append(errs, fmt.Errorf("gid 0 is the root group; a non-root gid is required"))
	}
	if err := validateCreateName(r.UserName); err != nil {
		errs = append(errs, fmt.Errorf("user name: %w", err))
	}
	if err := validateCreateName(r.GroupName); err != nil {
		errs = append(errs, fmt.Errorf("group name: %w", err))
	}
	if r.Shell != "" && !filepath.IsAbs(r.Shell) {
		errs = append(errs, fmt.Errorf("shell %q is not an absolute path", r.Shell))
	}
	return errors.Join(errs...)
}

// LoginShell returns the request's shell or [DefaultShell].
func (r Request) LoginShell() string {
	if r.Shell == "" {
		return DefaultShell
	}
	return r.Shell
}

// Record is a user or group entry as the database reports it. For a
// group, ID is the GID and PrimaryGroup is empty. For a user, ID is the
// UID and PrimaryGroup names the group of the user's primary GID (empty
// if that GID has no group entry).
type Record struct {
	Name         string `json:"name"`
	ID           uint32 `json:"id"`
	PrimaryGroup string `json:"primary_group,omitempty"`
}

// Database is the host identity store. Lookups report absence with
// found=false and a nil error; an error means the store could not be
// queried at all.
type Database interface {
	LookupGroupByID(ctx context.Context, gid uint32) (record Record, found bool, err error)
	LookupUserByID(ctx context.Context, uid uint32) (record Record, found bool, err error)

	// CreateGroup adds a group. Returns an error wrapping ErrNameTaken
	// if name belongs to another group, or ErrIDOccupied if gid is in
	// use.
	CreateGroup(ctx context.Context, name string, gid uint32) error

	// CreateUser adds a user whose primary group is group. Returns an
	// error wrapping ErrNameTaken or ErrIDOccupied as for CreateGroup,
	// and ErrNotFound if group does not exist.
	CreateUser(ctx context.Context, name string, uid uint32, group, shell string) error

	// AddUserToGroup adds user as a supplementary member of group.
	// Returns an error wrapping ErrAlreadyMember if the user is already
	// a member (or has group as its primary group).
	AddUserToGroup(ctx context.Context, user, group string) error
}

// MembershipChecker is implemented by databases that can answer
// membership queries without modifying anything.
type MembershipChecker interface {
	IsMember(ctx context.Context, user, group string) (bool, error)
}

// NameLookup is implemented by databases that can look records up by
// name. Used to describe conflicts (which ID holds the name).
type NameLookup interface {
	LookupGroupByName(ctx context.Context, name string) (record Record, found bool, err error)
	LookupUserByName(ctx context.Context, name string) (record Record, found bool, err error)
}

// ValidateName checks account name syntax: ASCII letters, digits, '.',
// '_' and '-', with an optional trailing '$' (Samba machine accounts).
// The name must not start with '-' (it would parse as a flag), must not
// be "." or "..", and must not be purely numeric (indistinguishable
// from an ID in chown and most tools).
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name is %d characters, maximum is %d", len(name), MaxNameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name %q is reserved", name)
	}
	if name[0] == '-' {
		return fmt.Errorf("name %q starts with '-'", name)
	}

	numeric := true
	for i := 0; i < len(name); i++ {
		character := name[i]
		switch {
		case character >= '0' && character <= '9':
		case character >= 'a' && character <= 'z',
			character >= 'A' && character <= 'Z',
			character == '.', character == '_', character == '-':
			numeric = false
		case character == '$' && i == len(name)-1 && i > 0:
			numeric = false
		default:
			return fmt.Errorf("invalid character %q at position %d (allowed: a-z, A-Z, 0-9, ., _, -, trailing $)", character, i)
		}
	}
	if numeric {
		return fmt.Errorf("name %q is purely numeric", name)
	}
	return nil
}

func validateCreateName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if len(name) > MaxCreateNameLength {
		return fmt.Errorf("name %q is %d characters, maximum for creation is %d", name, len(name), MaxCreateNameLength)
	}
	return nil
}
