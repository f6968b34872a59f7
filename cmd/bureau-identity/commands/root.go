// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
)

// Root returns the bureau-identity command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "bureau-identity",
		Summary: "Provision a non-root service identity bound to numeric IDs",
		Description: `Provision a non-root user and group bound to specific numeric IDs,
reusing whatever records already hold those IDs, re-own the application
tree, and publish the resolved user name for a later stage that runs as
that user.`,
		Subcommands: []*cli.Command{
			reconcileCommand(),
			handoffCommand(),
			checkCommand(),
		},
	}
}
