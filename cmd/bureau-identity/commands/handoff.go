// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
	"github.com/bureau-foundation/bureau-identity/lib/handoff"
)

func handoffCommand() *cli.Command {
	return &cli.Command{
		Name:    "handoff",
		Summary: "Read or repair the published user name",
		Description: `The handoff is a single-line file holding exactly the resolved user name.
A later stage reads it to run as the provisioned identity.`,
		Subcommands: []*cli.Command{
			handoffShowCommand(),
			handoffPublishCommand(),
		},
	}
}

type handoffShowParams struct {
	cli.JSONOutput
	configParams
}

// handoffShowResult is the --json output of "handoff show".
type handoffShowResult struct {
	User string `json:"user"`
	Path string `json:"path"`

	// Verified is set when a receipt exists; it reports whether the
	// handoff still holds what reconcile published.
	Verified     *bool      `json:"verified,omitempty"`
	ReconciledAt *time.Time `json:"reconciled_at,omitempty"`
}

func handoffShowCommand() *cli.Command {
	var params handoffShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Print the published user name",
		Description: `Print the user name published by reconcile. Fails if nothing was published:
there is no safe identity to fall back to.`,
		Usage: "bureau-identity handoff show [flags]",
		Examples: []cli.Example{
			{
				Description: "Run the service as the provisioned user",
				Command:     `exec setpriv --reuid "$(bureau-identity handoff show)" --regid 100 --init-groups /app/serve`,
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}

			file := handoff.File{Path: cfg.Handoff.Path}
			name, err := file.Retrieve()
			if errors.Is(err, handoff.ErrMissingHandoff) {
				return cli.NotFound("%w; run bureau-identity reconcile first", err)
			}
			if err != nil {
				return err
			}

			result := handoffShowResult{User: name, Path: file.Path}
			if cfg.Handoff.Receipt != "" {
				receipt, err := handoff.ReadReceipt(cfg.Handoff.Receipt)
				switch {
				case err == nil:
					verified := receipt.Matches([]byte(name))
					result.Verified = &verified
					result.ReconciledAt = &receipt.ReconciledAt
					if !verified {
						logger.Warn("handoff differs from what reconcile published",
							"user", name, "receipt_user", receipt.UserName)
					}
				case errors.Is(err, handoff.ErrNoReceipt):
					logger.Debug("no receipt to verify the handoff against", "path", cfg.Handoff.Receipt)
				default:
					logger.Warn("reading receipt", "error", err)
				}
			}

			if done, err := params.EmitJSON(result); done {
				return err
			}
			fmt.Fprintln(cli.Stdout, name)
			return nil
		},
	}
}

type handoffPublishParams struct {
	configParams
}

func handoffPublishCommand() *cli.Command {
	var params handoffPublishParams

	return &cli.Command{
		Name:    "publish",
		Summary: "Publish a user name by hand",
		Description: `Replace the handoff with NAME. Meant for repair; reconcile publishes the
resolved name itself. The receipt is not updated, so "check" reports the
handoff as edited until reconcile runs again.`,
		Usage:  "bureau-identity handoff publish NAME [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one user name, got %d arguments", len(args))
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			file := handoff.File{Path: cfg.Handoff.Path}
			if err := file.Publish(args[0]); err != nil {
				return err
			}
			logger.Info("handoff published", "user", args[0], "path", file.Path)
			return nil
		},
	}
}
