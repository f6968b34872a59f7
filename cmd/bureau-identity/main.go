// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/cli"
	"github.com/bureau-foundation/bureau-identity/cmd/bureau-identity/commands"
	"github.com/bureau-foundation/bureau-identity/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (check) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:])
}
