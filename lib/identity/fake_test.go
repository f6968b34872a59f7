// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"fmt"
)

// memoryDatabase is an in-memory Database with call counters and
// injectable failures.
type memoryDatabase struct {
	groups  []Record
	users   []memoryUser
	members map[string][]string // group name -> supplementary members

	lookupErr     error
	createUserErr error
	addMemberErr  error

	// dropCreates makes create calls succeed without storing anything.
	dropCreates bool

	groupCreates int
	userCreates  int
	memberAdds   int
}

type memoryUser struct {
	name  string
	uid   uint32
	gid   uint32
	shell string
}

func newMemoryDatabase() *memoryDatabase {
	return &memoryDatabase{members: make(map[string][]string)}
}

func (m *memoryDatabase) LookupGroupByID(ctx context.Context, gid uint32) (Record, bool, error) {
	if m.lookupErr != nil {
		return Record{}, false, m.lookupErr
	}
	for _, group := range m.groups {
		if group.ID == gid {
			return group, true, nil
		}
	}
	return Record{}, false, nil
}

func (m *memoryDatabase) LookupGroupByName(ctx context.Context, name string) (Record, bool, error) {
	for _, group := range m.groups {
		if group.Name == name {
			return group, true, nil
		}
	}
	return Record{}, false, nil
}

func (m *memoryDatabase) LookupUserByID(ctx context.Context, uid uint32) (Record, bool, error) {
	if m.lookupErr != nil {
		return Record{}, false, m.lookupErr
	}
	for _, user := range m.users {
		if user.uid == uid {
			return m.userRecord(user), true, nil
		}
	}
	return Record{}, false, nil
}

func (m *memoryDatabase) LookupUserByName(ctx context.Context, name string) (Record, bool, error) {
	for _, user := range m.users {
		if user.name == name {
			return m.userRecord(user), true, nil
		}
	}
	return Record{}, false, nil
}

func (m *memoryDatabase) userRecord(user memoryUser) Record {
	record := Record{Name: user.name, ID: user.uid}
	for _, group := range m.groups {
		if group.ID == user.gid {
			record.PrimaryGroup = group.Name
		}
	}
	return record
}

func (m *memoryDatabase) CreateGroup(ctx context.Context, name string, gid uint32) error {
	m.groupCreates++
	for _, group := range m.groups {
		if group.Name == name {
			return fmt.Errorf("group %q: %w", name, ErrNameTaken)
		}
		if group.ID == gid {
			return fmt.Errorf("gid %d: %w", gid, ErrIDOccupied)
		}
	}
	if !m.dropCreates {
		m.groups = append(m.groups, Record{Name: name, ID: gid})
	}
	return nil
}

func (m *memoryDatabase) CreateUser(ctx context.Context, name string, uid uint32, group, shell string) error {
	m.userCreates++
	if m.createUserErr != nil {
		return m.createUserErr
	}
	primary, found, _ := m.LookupGroupByName(ctx, group)
	if !found {
		return fmt.Errorf("group %q: %w", group, ErrNotFound)
	}
	for _, user := range m.users {
		if user.name == name {
			return fmt.Errorf("user %q: %w", name, ErrNameTaken)
		}
		if user.uid == uid {
			return fmt.Errorf("uid %d: %w", uid, ErrIDOccupied)
		}
	}
	if !m.dropCreates {
		m.users = append(m.users, memoryUser{name: name, uid: uid, gid: primary.ID, shell: shell})
	}
	return nil
}

func (m *memoryDatabase) AddUserToGroup(ctx context.Context, user, group string) error {
	m.memberAdds++
	if m.addMemberErr != nil {
		return m.addMemberErr
	}
	for _, member := range m.members[group] {
		if member == user {
			return fmt.Errorf("%s in %s: %w", user, group, ErrAlreadyMember)
		}
	}
	m.members[group] = append(m.members[group], user)
	return nil
}

func (m *memoryDatabase) IsMember(ctx context.Context, user, group string) (bool, error) {
	for _, member := range m.members[group] {
		if member == user {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryDatabase) addGroup(name string, gid uint32) {
	m.groups = append(m.groups, Record{Name: name, ID: gid})
}

func (m *memoryDatabase) addUser(name string, uid, gid uint32) {
	m.users = append(m.users, memoryUser{name: name, uid: uid, gid: gid, shell: "/bin/sh"})
}
