// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli/doctor"
	"github.com/bureau-foundation/bureau-identity/lib/codec"
	"github.com/bureau-foundation/bureau-identity/lib/config"
	"github.com/bureau-foundation/bureau-identity/lib/handoff"
	"github.com/bureau-foundation/bureau-identity/lib/identity"
	"github.com/bureau-foundation/bureau-identity/lib/ownership"
	"github.com/bureau-foundation/bureau-identity/lib/reconcile"
)

// maxFixPasses bounds the repair loop: group, then user, then the
// handoff that names the user.
const maxFixPasses = 3

type checkParams struct {
	cli.JSONOutput
	identityParams
	Fix    bool `json:"fix"     flag:"fix"     desc:"repair what can be repaired"`
	DryRun bool `json:"dry_run" flag:"dry-run" desc:"with --fix, show what would be repaired without changing anything"`
}

func checkCommand() *cli.Command {
	var params checkParams

	return &cli.Command{
		Name:    "check",
		Summary: "Verify the provisioned identity and repair drift",
		Description: `Check, without changing anything, that the host matches what reconcile
would produce: the group and user hold the configured ids, the user belongs
to the group, the ownership root is owned by uid:gid, and the handoff holds
the resolved user name (matching the receipt, when one was written).

With --fix, failed checks are repaired and the checklist is re-run until
it is stable. Fixes that edit the identity database or re-own files owned
by others need root; without root they are listed and skipped.`,
		Usage: "bureau-identity check [flags]",
		Examples: []cli.Example{
			{
				Description: "Check an image root",
				Command:     "bureau-identity check --config identity.yaml --database-root /rootfs",
			},
			{
				Description: "Preview repairs",
				Command:     "bureau-identity check --fix --dry-run",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.DryRun && !params.Fix {
				return cli.Validation("--dry-run requires --fix")
			}
			return runCheck(ctx, &params, logger)
		},
	}
}

func runCheck(ctx context.Context, params *checkParams, logger *slog.Logger) error {
	cfg, err := params.load()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	checker := &identityChecker{cfg: cfg, database: database, logger: logger}

	var results doctor.Checklist
	var outcome doctor.Outcome
	if params.Fix && !params.DryRun {
		results, outcome = doctor.Converge(ctx, checker.run, maxFixPasses)
		logger.Debug("fix passes complete", "fixed", outcome.FixedCount, "elevated_skipped", outcome.ElevatedSkipped)
	} else {
		results = checker.run(ctx)
	}

	if done, err := params.EmitJSON(results.Report(params.DryRun, outcome)); done {
		if err == nil && results.Failed() {
			err = &cli.ExitError{Code: 1}
		}
		return err
	}
	return results.Print(cli.Stdout, doctor.Mode{Fix: params.Fix, DryRun: params.DryRun}, outcome)
}

// identityChecker builds the checklist for one configuration.
type identityChecker struct {
	cfg      *config.Config
	database identity.Database
	logger   *slog.Logger
}

func (c *identityChecker) run(ctx context.Context) doctor.Checklist {
	group, groupFound, groupResult := c.checkGroup(ctx)
	account, userFound, userResult := c.checkUser(ctx, group, groupFound)
	results := doctor.Checklist{
		c.checkConfig(),
		groupResult,
		userResult,
		c.checkMembership(ctx, account, userFound, group, groupFound),
		c.checkOwnership(),
	}
	handoffResult, published := c.checkHandoff(account, userFound)
	results = append(results, handoffResult, c.checkReceipt(published))
	return results
}

func (c *identityChecker) checkConfig() doctor.Result {
	// identityParams.load already refused an invalid configuration, so
	// this reports what was checked.
	return doctor.Pass("configuration", "uid %d, gid %d, database %s at %s",
		c.cfg.Identity.UID, c.cfg.Identity.GID, c.cfg.Database.Backend, c.cfg.Database.Root)
}

// databaseElevated reports whether editing the identity database needs
// more privilege than this process has.
func (c *identityChecker) databaseElevated() bool {
	if c.cfg.Database.Root == "/" {
		return !doctor.IsRoot()
	}
	return !writable(filepath.Join(c.cfg.Database.Root, "etc"))
}

func (c *identityChecker) checkGroup(ctx context.Context) (identity.Record, bool, doctor.Result) {
	const name = "group"
	gid := c.cfg.Identity.GID
	group, found, err := c.database.LookupGroupByID(ctx, gid)
	if err != nil {
		return group, false, doctor.Fail(name, "cannot read the group database: %v", err)
	}
	if found {
		message := fmt.Sprintf("gid %d is %q", gid, group.Name)
		if group.Name != c.cfg.Identity.Group {
			message += fmt.Sprintf(" (reused; %q not created)", c.cfg.Identity.Group)
		}
		return group, true, doctor.Pass(name, "%s", message)
	}

	message := fmt.Sprintf("no group has gid %d", gid)
	hint := fmt.Sprintf("create group %q with gid %d", c.cfg.Identity.Group, gid)
	fix := func(ctx context.Context) error {
		_, _, err := identity.ResolveGroup(ctx, c.database, gid, c.cfg.Identity.Group)
		return err
	}
	return group, false, c.fixResult(name, message, hint, c.databaseElevated(), fix)
}

func (c *identityChecker) checkUser(ctx context.Context, group identity.Record, groupFound bool) (identity.Record, bool, doctor.Result) {
	const name = "user"
	uid := c.cfg.Identity.UID
	account, found, err := c.database.LookupUserByID(ctx, uid)
	if err != nil {
		return account, false, doctor.Fail(name, "cannot read the user database: %v", err)
	}
	if found {
		message := fmt.Sprintf("uid %d is %q", uid, account.Name)
		if account.Name != c.cfg.Identity.User {
			message += fmt.Sprintf(" (reused; %q not created)", c.cfg.Identity.User)
		}
		return account, true, doctor.Pass(name, "%s", message)
	}
	if !groupFound {
		return account, false, doctor.Skip(name, "no user has uid %d; needs the group first", uid)
	}

	message := fmt.Sprintf("no user has uid %d", uid)
	hint := fmt.Sprintf("create user %q with uid %d in group %q", c.cfg.Identity.User, uid, group.Name)
	fix := func(ctx context.Context) error {
		current, found, err := c.database.LookupGroupByID(ctx, c.cfg.Identity.GID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("gid %d: %w", c.cfg.Identity.GID, identity.ErrNotFound)
		}
		_, _, err = identity.ResolveUser(ctx, c.database, uid, c.cfg.Identity.User, current.Name, c.cfg.Request().LoginShell())
		return err
	}
	return account, false, c.fixResult(name, message, hint, c.databaseElevated(), fix)
}

func (c *identityChecker) checkMembership(ctx context.Context, account identity.Record, userFound bool, group identity.Record, groupFound bool) doctor.Result {
	const name = "membership"
	if !userFound || !groupFound {
		return doctor.Skip(name, "needs both the user and the group")
	}
	if account.PrimaryGroup == group.Name {
		return doctor.Pass(name, "%q is the primary group of %q", group.Name, account.Name)
	}
	checker, ok := c.database.(identity.MembershipChecker)
	if !ok {
		return doctor.Skip(name, "the database cannot answer membership queries")
	}
	member, err := checker.IsMember(ctx, account.Name, group.Name)
	if err != nil {
		return doctor.Fail(name, "cannot read membership: %v", err)
	}
	if member {
		return doctor.Pass(name, "%q is a member of %q", account.Name, group.Name)
	}

	message := fmt.Sprintf("%q is not a member of %q", account.Name, group.Name)
	if c.cfg.Membership.OnFailure != string(reconcile.MembershipFatal) {
		return doctor.Warn(name, "%s (tolerated by membership.on_failure)", message)
	}
	hint := fmt.Sprintf("add %q to group %q", account.Name, group.Name)
	fix := func(ctx context.Context) error {
		return identity.EnsureMembership(ctx, c.database, account, group)
	}
	return c.fixResult(name, message, hint, c.databaseElevated(), fix)
}

func (c *identityChecker) checkOwnership() doctor.Result {
	const name = "ownership"
	root := c.cfg.Ownership.Root
	if root == "" {
		return doctor.Skip(name, "no ownership root configured")
	}
	uid, gid := c.cfg.Identity.UID, c.cfg.Identity.GID
	mismatches, err := ownership.Verify(root, uid, gid)
	if err != nil {
		return doctor.Fail(name, "%v", err)
	}
	if len(mismatches) == 0 {
		return doctor.Pass(name, "%s is owned by %d:%d", root, uid, gid)
	}

	first := mismatches[0]
	message := fmt.Sprintf("%d entries under %s not owned by %d:%d (first: %s is %d:%d)",
		len(mismatches), root, uid, gid, first.Path, first.UID, first.GID)
	hint := fmt.Sprintf("chown -R %d:%d %s", uid, gid, root)
	fix := func(ctx context.Context) error {
		return ownership.Apply(root, uid, gid)
	}
	// Giving files away always needs CAP_CHOWN.
	return c.fixResult(name, message, hint, !doctor.IsRoot(), fix)
}

// checkHandoff compares the published name against the user holding the
// configured uid. It returns the published content for the receipt
// check ("" when nothing valid is published).
func (c *identityChecker) checkHandoff(account identity.Record, userFound bool) (doctor.Result, string) {
	const name = "handoff"
	file := handoff.File{Path: c.cfg.Handoff.Path}
	published, err := file.Retrieve()

	switch {
	case err == nil && !userFound:
		return doctor.Warn(name, "%s holds %q but no user has uid %d", file.Path, published, c.cfg.Identity.UID), published
	case err == nil && published == account.Name:
		return doctor.Pass(name, "%s holds %q", file.Path, published), published
	case !userFound:
		return doctor.Skip(name, "needs the user"), ""
	}

	var message string
	switch {
	case errors.Is(err, handoff.ErrMissingHandoff):
		message = fmt.Sprintf("%s has not been published", file.Path)
	case err != nil:
		message = err.Error()
	default:
		message = fmt.Sprintf("%s holds %q, want %q", file.Path, published, account.Name)
	}
	hint := fmt.Sprintf("publish %q to %s", account.Name, file.Path)
	fix := func(ctx context.Context) error {
		return file.Publish(account.Name)
	}
	valid := ""
	if err == nil {
		valid = published
	}
	return c.fixResult(name, message, hint, !writable(filepath.Dir(file.Path)), fix), valid
}

func (c *identityChecker) checkReceipt(published string) doctor.Result {
	const name = "receipt"
	path := c.cfg.Handoff.Receipt
	if path == "" {
		return doctor.Skip(name, "no receipt path configured")
	}
	receipt, err := handoff.ReadReceipt(path)
	if errors.Is(err, handoff.ErrNoReceipt) {
		return doctor.Warn(name, "%s does not exist; reconcile writes it", path)
	}
	if err != nil {
		message := err.Error()
		if data, readErr := os.ReadFile(path); readErr == nil {
			if diagnostic, diagErr := codec.Diagnose(data); diagErr == nil {
				c.logger.Debug("receipt content", "path", path, "diagnostic", diagnostic)
			}
		}
		return doctor.Fail(name, "%s", message)
	}

	if published == "" {
		return doctor.Skip(name, "no valid handoff to compare")
	}
	if !receipt.Matches([]byte(published)) {
		return doctor.Warn(name, "handoff %q differs from %q recorded at %s",
			published, receipt.UserName, receipt.ReconciledAt.Format(time.RFC3339))
	}
	if receipt.UID != c.cfg.Identity.UID || receipt.GID != c.cfg.Identity.GID {
		return doctor.Warn(name, "receipt records %d:%d, configuration says %d:%d",
			receipt.UID, receipt.GID, c.cfg.Identity.UID, c.cfg.Identity.GID)
	}
	return doctor.Pass(name, "handoff matches the receipt written %s",
		receipt.ReconciledAt.Format(time.RFC3339))
}

func (c *identityChecker) fixResult(name, message, hint string, elevated bool, fix doctor.FixAction) doctor.Result {
	return doctor.Fail(name, "%s", message).WithFix(hint, elevated, fix)
}

// writable reports whether this process may create files in dir. A
// missing dir counts as writable when its parent is.
func writable(dir string) bool {
	for {
		err := unix.Access(dir, unix.W_OK)
		if err == nil {
			return true
		}
		if !errors.Is(err, unix.ENOENT) {
			return false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}
