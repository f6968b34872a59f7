// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "errors"

// Backend outcomes. Database implementations wrap these so resolvers
// can classify failures with errors.Is.
var (
	ErrNameTaken     = errors.New("name already in use")
	ErrIDOccupied    = errors.New("numeric id already in use")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotFound      = errors.New("record not found")
)

// ErrCreationConflict means the requested numeric ID is free but the
// preferred name belongs to a record with a different ID. There is no
// safe automatic resolution: renaming either record would break
// whatever depends on it.
var ErrCreationConflict = errors.New("creation conflict")

// ErrMembershipFailure means a pre-existing user could not be added to
// the resolved group for a reason other than already being a member.
var ErrMembershipFailure = errors.New("membership failure")
