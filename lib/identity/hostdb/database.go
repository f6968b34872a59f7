// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hostdb

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"strconv"

	"github.com/bureau-foundation/bureau-identity/lib/identity"
)

// Database is the running system's identity database.
type Database struct {
	flavor Flavor
	run    Runner

	// Account lookups, replaceable in tests. os/user reads the host
	// database, which tests cannot control.
	lookupUserID    func(uid string) (*user.User, error)
	lookupUserName  func(name string) (*user.User, error)
	lookupGroupID   func(gid string) (*user.Group, error)
	lookupGroupName func(name string) (*user.Group, error)
	groupIDs        func(account *user.User) ([]string, error)
}

var (
	_ identity.Database          = (*Database)(nil)
	_ identity.MembershipChecker = (*Database)(nil)
	_ identity.NameLookup        = (*Database)(nil)
)

// New returns a Database that creates records with flavor's tools.
func New(flavor Flavor) *Database {
	return &Database{
		flavor:          flavor,
		run:             runCommand,
		lookupUserID:    user.LookupId,
		lookupUserName:  user.Lookup,
		lookupGroupID:   user.LookupGroupId,
		lookupGroupName: user.LookupGroup,
		groupIDs:        (*user.User).GroupIds,
	}
}

// Flavor returns the account tool family this database invokes.
func (d *Database) Flavor() Flavor { return d.flavor }

// LookupGroupByID implements [identity.Database].
func (d *Database) LookupGroupByID(ctx context.Context, gid uint32) (identity.Record, bool, error) {
	group, err := d.lookupGroupID(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		var unknown user.UnknownGroupIdError
		if errors.As(err, &unknown) {
			return identity.Record{}, false, nil
		}
		return identity.Record{}, false, fmt.Errorf("looking up gid %d: %w", gid, err)
	}
	return identity.Record{Name: group.Name, ID: gid}, true, nil
}

// LookupGroupByName implements [identity.NameLookup].
func (d *Database) LookupGroupByName(ctx context.Context, name string) (identity.Record, bool, error) {
	group, err := d.lookupGroupName(name)
	if err != nil {
		var unknown user.UnknownGroupError
		if errors.As(err, &unknown) {
			return identity.Record{}, false, nil
		}
		return identity.Record{}, false, fmt.Errorf("looking up group %q: %w", name, err)
	}
	gid, err := parseID(group.Gid)
	if err != nil {
		return identity.Record{}, false, fmt.Errorf("group %q: %w", name, err)
	}
	return identity.Record{Name: group.Name, ID: gid}, true, nil
}

// LookupUserByID implements [identity.Database].
func (d *Database) LookupUserByID(ctx context.Context, uid uint32) (identity.Record, bool, error) {
	account, err := d.lookupUserID(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		var unknown user.UnknownUserIdError
		if errors.As(err, &unknown) {
			return identity.Record{}, false, nil
		}
		return identity.Record{}, false, fmt.Errorf("looking up uid %d: %w", uid, err)
	}
	return d.userRecord(account)
}

// LookupUserByName implements [identity.NameLookup].
func (d *Database) LookupUserByName(ctx context.Context, name string) (identity.Record, bool, error) {
	account, err := d.lookupUserName(name)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			return identity.Record{}, false, nil
		}
		return identity.Record{}, false, fmt.Errorf("looking up user %q: %w", name, err)
	}
	return d.userRecord(account)
}

func (d *Database) userRecord(account *user.User) (identity.Record, bool, error) {
	uid, err := parseID(account.Uid)
	if err != nil {
		return identity.Record{}, false, fmt.Errorf("user %q: %w", account.Username, err)
	}
	record := identity.Record{Name: account.Username, ID: uid}
	// A primary GID without a group entry is legal; leave the name empty.
	if group, err := d.lookupGroupID(account.Gid); err == nil {
		record.PrimaryGroup = group.Name
	}
	return record, true, nil
}

// CreateGroup implements [identity.Database].
func (d *Database) CreateGroup(ctx context.Context, name string, gid uint32) error {
	command, args := d.flavor.createGroupCommand(name, gid)
	return d.flavor.classify(d.run(ctx, command, args...))
}

// CreateUser implements [identity.Database].
func (d *Database) CreateUser(ctx context.Context, name string, uid uint32, group, shell string) error {
	command, args := d.flavor.createUserCommand(name, uid, group, shell)
	return d.flavor.classify(d.run(ctx, command, args...))
}

// AddUserToGroup implements [identity.Database]. usermod --append
// succeeds silently for an existing member, so membership is checked
// first to report ErrAlreadyMember consistently across flavors.
func (d *Database) AddUserToGroup(ctx context.Context, userName, group string) error {
	member, err := d.IsMember(ctx, userName, group)
	if err != nil {
		return err
	}
	if member {
		return fmt.Errorf("user %q in group %q: %w", userName, group, identity.ErrAlreadyMember)
	}
	command, args := d.flavor.addMemberCommand(userName, group)
	return d.flavor.classify(d.run(ctx, command, args...))
}

// IsMember implements [identity.MembershipChecker]. The user's group
// list includes its primary group.
func (d *Database) IsMember(ctx context.Context, userName, group string) (bool, error) {
	account, err := d.lookupUserName(userName)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			return false, fmt.Errorf("user %q: %w", userName, identity.ErrNotFound)
		}
		return false, fmt.Errorf("looking up user %q: %w", userName, err)
	}
	target, err := d.lookupGroupName(group)
	if err != nil {
		var unknown user.UnknownGroupError
		if errors.As(err, &unknown) {
			return false, fmt.Errorf("group %q: %w", group, identity.ErrNotFound)
		}
		return false, fmt.Errorf("looking up group %q: %w", group, err)
	}
	if account.Gid == target.Gid {
		return true, nil
	}
	groupIDs, err := d.groupIDs(account)
	if err != nil {
		return false, fmt.Errorf("reading groups of %q: %w", userName, err)
	}
	for _, groupID := range groupIDs {
		if groupID == target.Gid {
			return true, nil
		}
	}
	return false, nil
}

func parseID(text string) (uint32, error) {
	value, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing id %q: %w", text, err)
	}
	return uint32(value), nil
}
