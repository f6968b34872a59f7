// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
	"github.com/bureau-foundation/bureau-identity/lib/clock"
	"github.com/bureau-foundation/bureau-identity/lib/handoff"
	"github.com/bureau-foundation/bureau-identity/lib/reconcile"
)

type reconcileParams struct {
	cli.JSONOutput
	identityParams
}

func reconcileCommand() *cli.Command {
	var params reconcileParams

	return &cli.Command{
		Name:    "reconcile",
		Summary: "Provision the identity and publish the resolved user name",
		Description: `Resolve the group with the configured gid, creating it under the preferred
name only if no group has that gid. Resolve the user with the configured uid
the same way. A user that already existed is added to the resolved group
(best effort unless membership.on_failure is "error"). Then re-own the
ownership root to uid:gid and publish the resolved user name to the handoff.

An existing record's name always wins over the preferred name. If an id is
free but its preferred name belongs to a different id, reconcile fails
without creating anything: rename or remove the conflicting record first.

Running reconcile again is safe: the second run creates nothing.`,
		Usage: "bureau-identity reconcile [flags]",
		Examples: []cli.Example{
			{
				Description: "Provision 99:100 and re-own /app",
				Command:     "bureau-identity reconcile --uid 99 --gid 100 --user appuser --group appgroup --ownership-root /app",
			},
			{
				Description: "Provision an image root without account tools",
				Command:     "bureau-identity reconcile --config identity.yaml --backend files --database-root /rootfs",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runReconcile(ctx, &params, logger)
		},
	}
}

func runReconcile(ctx context.Context, params *reconcileParams, logger *slog.Logger) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	policy, err := reconcile.ParseMembershipPolicy(cfg.Membership.OnFailure)
	if err != nil {
		return cli.Validation("%w", err)
	}

	reconciler := &reconcile.Reconciler{
		Database:            database,
		Publisher:           handoff.File{Path: cfg.Handoff.Path},
		Logger:              logger,
		Clock:               clock.Real(),
		ReceiptPath:         cfg.Handoff.Receipt,
		HandoffPath:         cfg.Handoff.Path,
		OnMembershipFailure: policy,
	}
	result, err := reconciler.Run(ctx, cfg.Request(), cfg.Ownership.Root)
	if err != nil {
		return classifyReconcileError(err)
	}

	if done, err := params.EmitJSON(result); done {
		return err
	}
	fmt.Fprintf(cli.Stdout, "user   %s (uid %d)%s\n", result.UserName, result.UID, createdNote(result.UserCreated))
	fmt.Fprintf(cli.Stdout, "group  %s (gid %d)%s\n", result.GroupName, result.GID, createdNote(result.GroupCreated))
	if result.MembershipError != "" {
		fmt.Fprintf(cli.Stdout, "warning: %s\n", result.MembershipError)
	}
	fmt.Fprintf(cli.Stdout, "published %q to %s\n", result.UserName, cfg.Handoff.Path)
	return nil
}

func createdNote(created bool) string {
	if created {
		return ", created"
	}
	return ""
}

// classifyReconcileError attaches the CLI category matching the
// failure. The message keeps the failing step's name.
func classifyReconcileError(err error) error {
	var stepErr *reconcile.StepError
	switch {
	case errors.As(err, &stepErr) && stepErr.Step == reconcile.StepRequest:
		return &cli.ToolError{Category: cli.CategoryValidation, Err: err}
	case reconcile.IsFatalConflict(err):
		return &cli.ToolError{Category: cli.CategoryConflict, Err: err}
	case errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES):
		return &cli.ToolError{Category: cli.CategoryForbidden, Err: err}
	}
	return err
}
