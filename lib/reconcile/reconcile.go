// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bureau-identity/lib/clock"
	"github.com/bureau-foundation/bureau-identity/lib/handoff"
	"github.com/bureau-foundation/bureau-identity/lib/identity"
	"github.com/bureau-foundation/bureau-identity/lib/ownership"
)

// Step names a pipeline stage in errors and logs.
type Step string

const (
	StepRequest    Step = "request"
	StepGroup      Step = "group"
	StepUser       Step = "user"
	StepMembership Step = "membership"
	StepOwnership  Step = "ownership"
	StepHandoff    Step = "handoff"
	StepReceipt    Step = "receipt"
)

// StepError is a fatal pipeline failure.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// MembershipPolicy decides what a membership failure does to the run.
type MembershipPolicy string

const (
	// MembershipWarn logs the failure and continues. Ownership is
	// applied by numeric ID and does not depend on membership.
	MembershipWarn MembershipPolicy = "warn"

	// MembershipFatal aborts the run.
	MembershipFatal MembershipPolicy = "error"
)

// ParseMembershipPolicy accepts the configuration spellings.
func ParseMembershipPolicy(value string) (MembershipPolicy, error) {
	switch MembershipPolicy(value) {
	case MembershipWarn, MembershipFatal:
		return MembershipPolicy(value), nil
	case "":
		return MembershipWarn, nil
	}
	return "", fmt.Errorf("unknown membership failure policy %q (want %q or %q)", value, MembershipWarn, MembershipFatal)
}

// Result is the outcome of a successful run.
type Result struct {
	UserName  string `json:"user"`
	GroupName string `json:"group"`
	UID       uint32 `json:"uid"`
	GID       uint32 `json:"gid"`

	// Created is true when the run created any record.
	Created      bool `json:"created"`
	GroupCreated bool `json:"group_created"`
	UserCreated  bool `json:"user_created"`

	// MembershipError describes a tolerated membership failure.
	MembershipError string `json:"membership_error,omitempty"`
}

// Reconciler holds the collaborators of a run. Database, Publisher and
// Logger are required.
type Reconciler struct {
	Database  identity.Database
	Publisher handoff.Publisher
	Logger    *slog.Logger

	// Clock timestamps the receipt. Nil means the real clock.
	Clock clock.Clock

	// ReceiptPath, when set, receives a CBOR receipt after the
	// handoff is published. HandoffPath is recorded in it.
	ReceiptPath string
	HandoffPath string

	OnMembershipFailure MembershipPolicy
}

// Run reconciles request and re-owns ownershipRoot (skipped when
// empty).
func (r *Reconciler) Run(ctx context.Context, request identity.Request, ownershipRoot string) (Result, error) {
	if err := request.Validate(); err != nil {
		return Result{}, &StepError{Step: StepRequest, Err: err}
	}
	logger := r.Logger.With("uid", request.UID, "gid", request.GID)

	group, groupExisted, err := identity.ResolveGroup(ctx, r.Database, request.GID, request.GroupName)
	if err != nil {
		return Result{}, &StepError{Step: StepGroup, Err: err}
	}
	groupCreated := !groupExisted
	logger.Info("group resolved", "group", group.Name, "created", groupCreated)

	user, userExisted, err := identity.ResolveUser(ctx, r.Database, request.UID, request.UserName, group.Name, request.LoginShell())
	if err != nil {
		return Result{}, &StepError{Step: StepUser, Err: err}
	}
	logger.Info("user resolved", "user", user.Name, "created", !userExisted)

	result := Result{
		UserName:     user.Name,
		GroupName:    group.Name,
		UID:          request.UID,
		GID:          request.GID,
		GroupCreated: groupCreated,
		UserCreated:  !userExisted,
	}
	result.Created = result.GroupCreated || result.UserCreated

	if userExisted {
		if err := identity.EnsureMembership(ctx, r.Database, user, group); err != nil {
			if r.OnMembershipFailure == MembershipFatal {
				return Result{}, &StepError{Step: StepMembership, Err: err}
			}
			logger.Warn("membership not ensured, continuing",
				"user", user.Name, "group", group.Name, "error", err)
			result.MembershipError = err.Error()
		} else {
			logger.Info("membership ensured", "user", user.Name, "group", group.Name)
		}
	}

	if ownershipRoot != "" {
		if err := ownership.Apply(ownershipRoot, request.UID, request.GID); err != nil {
			return Result{}, &StepError{Step: StepOwnership, Err: err}
		}
		logger.Info("ownership applied", "root", ownershipRoot)
	} else {
		logger.Debug("ownership skipped, no root configured")
	}

	if err := r.Publisher.Publish(user.Name); err != nil {
		return Result{}, &StepError{Step: StepHandoff, Err: err}
	}
	logger.Info("handoff published", "user", user.Name)

	if r.ReceiptPath != "" {
		if err := r.writeReceipt(result, ownershipRoot); err != nil {
			return Result{}, &StepError{Step: StepReceipt, Err: err}
		}
		logger.Debug("receipt written", "path", r.ReceiptPath)
	}
	return result, nil
}

func (r *Reconciler) writeReceipt(result Result, ownershipRoot string) error {
	now := r.Clock
	if now == nil {
		now = clock.Real()
	}
	return handoff.WriteReceipt(r.ReceiptPath, handoff.Receipt{
		UserName:      result.UserName,
		GroupName:     result.GroupName,
		UID:           result.UID,
		GID:           result.GID,
		GroupCreated:  result.GroupCreated,
		UserCreated:   result.UserCreated,
		OwnershipRoot: ownershipRoot,
		HandoffPath:   r.HandoffPath,
		HandoffDigest: handoff.DigestOf([]byte(result.UserName)),
		ReconciledAt:  now.Now().UTC(),
	})
}

// IsFatalConflict reports whether err stems from a creation conflict,
// which needs an operator to rename or remove a record.
func IsFatalConflict(err error) bool {
	return errors.Is(err, identity.ErrCreationConflict) || errors.Is(err, identity.ErrIDOccupied)
}
