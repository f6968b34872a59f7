// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
)

// resolveOrCreate returns the record lookup finds, or calls create and
// then looks the record up again. existed reports whether the first
// lookup found it. create is never called when lookup succeeds, so a
// second record can never be requested for an occupied ID.
//
// The re-read after create makes the database the only source of the
// returned record: a backend that silently normalizes the name (or a
// tool that exits 0 without writing anything) shows up here rather than
// in a later step.
func resolveOrCreate(
	ctx context.Context,
	lookup func(context.Context) (Record, bool, error),
	create func(context.Context) error,
) (record Record, existed bool, err error) {
	record, found, err := lookup(ctx)
	if err != nil {
		return Record{}, false, fmt.Errorf("lookup: %w", err)
	}
	if found {
		return record, true, nil
	}

	if err := create(ctx); err != nil {
		return Record{}, false, err
	}

	record, found, err = lookup(ctx)
	if err != nil {
		return Record{}, false, fmt.Errorf("lookup after create: %w", err)
	}
	if !found {
		return Record{}, false, fmt.Errorf("record not visible after create")
	}
	return record, false, nil
}

// ResolveGroup returns the group with gid, creating it as preferredName
// if no group has that gid. An existing group is returned unchanged
// whatever its name, with alreadyExisted set.
func ResolveGroup(ctx context.Context, db Database, gid uint32, preferredName string) (record Record, alreadyExisted bool, err error) {
	record, alreadyExisted, err = resolveOrCreate(ctx,
		func(ctx context.Context) (Record, bool, error) {
			return db.LookupGroupByID(ctx, gid)
		},
		func(ctx context.Context) error {
			if err := db.CreateGroup(ctx, preferredName, gid); err != nil {
				return classifyCreateError(ctx, db, "group", preferredName, gid, err)
			}
			return nil
		},
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("resolving group gid %d: %w", gid, err)
	}
	return record, alreadyExisted, nil
}

// ResolveUser returns the user with uid, creating it as preferredName
// (primary group groupName, login shell shell) if no user has that uid.
// alreadyExisted is true when the uid was found on the first lookup;
// such a user's name is authoritative and its group membership is not
// guaranteed (see EnsureMembership).
func ResolveUser(ctx context.Context, db Database, uid uint32, preferredName, groupName, shell string) (record Record, alreadyExisted bool, err error) {
	record, alreadyExisted, err = resolveOrCreate(ctx,
		func(ctx context.Context) (Record, bool, error) {
			return db.LookupUserByID(ctx, uid)
		},
		func(ctx context.Context) error {
			if err := db.CreateUser(ctx, preferredName, uid, groupName, shell); err != nil {
				return classifyCreateError(ctx, db, "user", preferredName, uid, err)
			}
			return nil
		},
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("resolving user uid %d: %w", uid, err)
	}
	return record, alreadyExisted, nil
}

// classifyCreateError turns a backend ErrNameTaken into
// ErrCreationConflict, naming the ID that holds the name when the
// database can say. ErrIDOccupied passes through unchanged: the lookup
// just reported the ID free, so an occupied ID means something else is
// writing the database concurrently, which the caller must not paper
// over.
func classifyCreateError(ctx context.Context, db Database, kind, name string, id uint32, err error) error {
	if !errors.Is(err, ErrNameTaken) {
		return fmt.Errorf("creating %s %q (id %d): %w", kind, name, id, err)
	}

	holder := ""
	if names, ok := db.(NameLookup); ok {
		var (
			existing Record
			found    bool
		)
		if kind == "group" {
			existing, found, _ = names.LookupGroupByName(ctx, name)
		} else {
			existing, found, _ = names.LookupUserByName(ctx, name)
		}
		if found {
			holder = fmt.Sprintf(" (held by id %d)", existing.ID)
		}
	}
	return fmt.Errorf("%w: %s name %q is already taken%s; id %d is free but cannot be created under that name: %w",
		ErrCreationConflict, kind, name, holder, id, err)
}
