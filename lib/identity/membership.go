// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
)

// EnsureMembership makes user a member of group. It is meant for a user
// that pre-existed under its own name and so may not belong to the
// resolved group. An existing membership (including group being the
// user's primary group) is success.
//
// Any other failure is returned wrapping ErrMembershipFailure. Callers
// normally log it and continue: chown needs a valid GID, not membership,
// so ownership can still be applied.
func EnsureMembership(ctx context.Context, db Database, user, group Record) error {
	if user.PrimaryGroup == group.Name {
		return nil
	}

	if checker, ok := db.(MembershipChecker); ok {
		member, err := checker.IsMember(ctx, user.Name, group.Name)
		if err == nil && member {
			return nil
		}
		// A failed check falls through to the add, which reports the
		// authoritative answer.
	}

	err := db.AddUserToGroup(ctx, user.Name, group.Name)
	if err == nil || errors.Is(err, ErrAlreadyMember) {
		return nil
	}
	return fmt.Errorf("%w: adding user %q to group %q: %w", ErrMembershipFailure, user.Name, group.Name, err)
}
