// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package etcfiles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/bureau-identity/lib/identity"
)

// Database is an identity database stored as plain files under a root
// directory. The zero value is not usable; call [Open].
type Database struct {
	root string
}

var (
	_ identity.Database          = (*Database)(nil)
	_ identity.MembershipChecker = (*Database)(nil)
	_ identity.NameLookup        = (*Database)(nil)
)

// Open returns a Database for root ("/" for the running system). Both
// <root>/etc/passwd and <root>/etc/group must exist.
func Open(root string) (*Database, error) {
	if root == "" {
		root = "/"
	}
	database := &Database{root: root}
	for _, path := range []string{database.passwdPath(), database.groupPath()} {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("opening identity files under %s: %w", root, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%s is not a regular file", path)
		}
	}
	return database, nil
}

// Root returns the directory the database files live under.
func (d *Database) Root() string { return d.root }

func (d *Database) passwdPath() string  { return filepath.Join(d.root, "etc", "passwd") }
func (d *Database) groupPath() string   { return filepath.Join(d.root, "etc", "group") }
func (d *Database) shadowPath() string  { return filepath.Join(d.root, "etc", "shadow") }
func (d *Database) gshadowPath() string { return filepath.Join(d.root, "etc", "gshadow") }

// LookupGroupByID implements [identity.Database].
func (d *Database) LookupGroupByID(ctx context.Context, gid uint32) (identity.Record, bool, error) {
	groups, err := readGroup(d.groupPath())
	if err != nil {
		return identity.Record{}, false, err
	}
	for _, current := range groups.lines {
		if current.group != nil && current.group.GID == gid {
			return groupRecord(current.group), true, nil
		}
	}
	return identity.Record{}, false, nil
}

// LookupGroupByName implements [identity.NameLookup].
func (d *Database) LookupGroupByName(ctx context.Context, name string) (identity.Record, bool, error) {
	groups, err := readGroup(d.groupPath())
	if err != nil {
		return identity.Record{}, false, err
	}
	if entry := findGroup(groups, name); entry != nil {
		return groupRecord(entry), true, nil
	}
	return identity.Record{}, false, nil
}

// LookupUserByID implements [identity.Database].
func (d *Database) LookupUserByID(ctx context.Context, uid uint32) (identity.Record, bool, error) {
	return d.lookupUser(func(entry *passwdEntry) bool { return entry.UID == uid })
}

// LookupUserByName implements [identity.NameLookup].
func (d *Database) LookupUserByName(ctx context.Context, name string) (identity.Record, bool, error) {
	return d.lookupUser(func(entry *passwdEntry) bool { return entry.Name == name })
}

func (d *Database) lookupUser(match func(*passwdEntry) bool) (identity.Record, bool, error) {
	users, err := readPasswd(d.passwdPath())
	if err != nil {
		return identity.Record{}, false, err
	}
	for _, current := range users.lines {
		if current.passwd == nil || !match(current.passwd) {
			continue
		}
		groups, err := readGroup(d.groupPath())
		if err != nil {
			return identity.Record{}, false, err
		}
		record := identity.Record{Name: current.passwd.Name, ID: current.passwd.UID}
		for _, candidate := range groups.lines {
			if candidate.group != nil && candidate.group.GID == current.passwd.GID {
				record.PrimaryGroup = candidate.group.Name
				break
			}
		}
		return record, true, nil
	}
	return identity.Record{}, false, nil
}

// CreateGroup implements [identity.Database].
func (d *Database) CreateGroup(ctx context.Context, name string, gid uint32) error {
	groups, err := readGroup(d.groupPath())
	if err != nil {
		return err
	}
	for _, current := range groups.lines {
		if current.group == nil {
			continue
		}
		if current.group.Name == name {
			return fmt.Errorf("group %q has gid %d: %w", name, current.group.GID, identity.ErrNameTaken)
		}
		if current.group.GID == gid {
			return fmt.Errorf("gid %d belongs to group %q: %w", gid, current.group.Name, identity.ErrIDOccupied)
		}
	}

	entry := &groupEntry{Name: name, Password: "x", GID: gid}
	groups.lines = append(groups.lines, line{raw: entry.String(), group: entry})

	// gshadow first: a group without its gshadow line is what grpck
	// complains about, the reverse is harmless until the next write.
	if err := d.appendIfPresent(d.gshadowPath(), name, name+":!::"); err != nil {
		return err
	}
	return groups.save()
}

// CreateUser implements [identity.Database]. The home directory field
// is /home/<name> (the useradd default) but no directory is created.
func (d *Database) CreateUser(ctx context.Context, name string, uid uint32, group, shell string) error {
	groups, err := readGroup(d.groupPath())
	if err != nil {
		return err
	}
	primary := findGroup(groups, group)
	if primary == nil {
		return fmt.Errorf("primary group %q: %w", group, identity.ErrNotFound)
	}

	users, err := readPasswd(d.passwdPath())
	if err != nil {
		return err
	}
	for _, current := range users.lines {
		if current.passwd == nil {
			continue
		}
		if current.passwd.Name == name {
			return fmt.Errorf("user %q has uid %d: %w", name, current.passwd.UID, identity.ErrNameTaken)
		}
		if current.passwd.UID == uid {
			return fmt.Errorf("uid %d belongs to user %q: %w", uid, current.passwd.Name, identity.ErrIDOccupied)
		}
	}

	entry := &passwdEntry{
		Name:     name,
		Password: "x",
		UID:      uid,
		GID:      primary.GID,
		Home:     "/home/" + name,
		Shell:    shell,
	}
	users.lines = append(users.lines, line{raw: entry.String(), passwd: entry})

	if err := d.appendIfPresent(d.shadowPath(), name, name+":!::0:99999:7:::"); err != nil {
		return err
	}
	return users.save()
}

// AddUserToGroup implements [identity.Database].
func (d *Database) AddUserToGroup(ctx context.Context, user, group string) error {
	record, found, err := d.LookupUserByName(ctx, user)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %q: %w", user, identity.ErrNotFound)
	}

	groups, err := readGroup(d.groupPath())
	if err != nil {
		return err
	}
	entry := findGroup(groups, group)
	if entry == nil {
		return fmt.Errorf("group %q: %w", group, identity.ErrNotFound)
	}
	if record.PrimaryGroup == group || entry.hasMember(user) {
		return fmt.Errorf("user %q in group %q: %w", user, group, identity.ErrAlreadyMember)
	}

	entry.Members = append(entry.Members, user)
	if err := d.addGshadowMember(group, user); err != nil {
		return err
	}
	return groups.save()
}

// IsMember implements [identity.MembershipChecker].
func (d *Database) IsMember(ctx context.Context, user, group string) (bool, error) {
	record, found, err := d.LookupUserByName(ctx, user)
	if err != nil {
		return false, err
	}
	if found && record.PrimaryGroup == group {
		return true, nil
	}
	groups, err := readGroup(d.groupPath())
	if err != nil {
		return false, err
	}
	entry := findGroup(groups, group)
	return entry != nil && entry.hasMember(user), nil
}

func findGroup(groups *table, name string) *groupEntry {
	for _, current := range groups.lines {
		if current.group != nil && current.group.Name == name {
			return current.group
		}
	}
	return nil
}

func groupRecord(entry *groupEntry) identity.Record {
	return identity.Record{Name: entry.Name, ID: entry.GID}
}

// appendIfPresent appends text to path when path exists and has no
// entry for name yet. A missing file is not an error: most minimal
// images ship without shadow files.
func (d *Database) appendIfPresent(path, name, text string) error {
	shadow, err := readRaw(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if shadow.findRaw(name) >= 0 {
		return nil
	}
	shadow.lines = append(shadow.lines, line{raw: text})
	return shadow.save()
}

// addGshadowMember mirrors a group membership into gshadow's member
// list (the fourth field) when gshadow exists and has the group.
func (d *Database) addGshadowMember(group, user string) error {
	shadow, err := readRaw(d.gshadowPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	index := shadow.findRaw(group)
	if index < 0 {
		return nil
	}
	fields := strings.Split(shadow.lines[index].raw, ":")
	if len(fields) != 4 {
		return nil
	}
	members := splitMembers(fields[3])
	for _, member := range members {
		if member == user {
			return nil
		}
	}
	fields[3] = strings.Join(append(members, user), ",")
	shadow.lines[index].raw = strings.Join(fields, ":")
	return shadow.save()
}
