// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func noop(context.Context, []string, *slog.Logger) error { return nil }

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "bureau-identity",
		Subcommands: []*Command{
			{
				Name: "reconcile",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "reconcile"
					return nil
				},
			},
			{
				Name: "check",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					called = "check"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"check"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "check" {
		t.Errorf("dispatched to %q, want %q", called, "check")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var receivedArgs []string
	show := &Command{
		Name: "publish",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			receivedArgs = args
			return nil
		},
	}
	root := &Command{
		Name:        "bureau-identity",
		Subcommands: []*Command{{Name: "handoff", Subcommands: []*Command{show}}},
	}

	if err := root.Execute(context.Background(), []string{"handoff", "publish", "appuser"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "appuser" {
		t.Errorf("args = %v, want [appuser]", receivedArgs)
	}
	if got := show.fullName(); got != "bureau-identity handoff publish" {
		t.Errorf("fullName() = %q, want %q", got, "bureau-identity handoff publish")
	}
	if got := show.commandPath(); got != "handoff/publish" {
		t.Errorf("commandPath() = %q, want %q", got, "handoff/publish")
	}
}

type testParams struct {
	JSONOutput
	Logging
	UID  uint32 `flag:"uid" desc:"numeric user id"`
	Root string `flag:"root" desc:"ownership root" default:"/app"`
}

func TestCommand_Execute_ParamsBinding(t *testing.T) {
	var params testParams
	var seen testParams

	command := &Command{
		Name:   "reconcile",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			seen = params
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--uid", "99", "--json", "--log-level", "debug"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if seen.UID != 99 || !seen.OutputJSON || seen.Root != "/app" || seen.Level != "debug" {
		t.Errorf("params = %+v", seen)
	}
}

func TestCommand_Execute_InvalidLogLevel(t *testing.T) {
	var params testParams
	command := &Command{Name: "reconcile", Params: func() any { return &params }, Run: noop}

	err := command.Execute(context.Background(), []string{"--log-level", "loud"})
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("Execute() = %v, want a validation error", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var params testParams
	command := &Command{Name: "reconcile", Params: func() any { return &params }, Run: noop}

	err := command.Execute(context.Background(), []string{"--rooot", "/srv"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --root") {
		t.Errorf("error = %q, want suggestion for '--root'", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("CategoryOf() = %q, want validation", CategoryOf(err))
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name:        "bureau-identity",
		Subcommands: []*Command{{Name: "reconcile", Run: noop}, {Name: "check", Run: noop}},
	}

	err := root.Execute(context.Background(), []string{"reconcle"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "reconcile"`) {
		t.Errorf("Execute() = %v, want suggestion for reconcile", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{Name: "bureau-identity", Subcommands: []*Command{{Name: "check", Run: noop}}}
	if err := root.Execute(context.Background(), nil); err == nil {
		t.Error("Execute() with no subcommand should fail")
	}
}

func TestCommand_Execute_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	command := &Command{
		Name: "check",
		Run: func(context.Context, []string, *slog.Logger) error {
			return sentinel
		},
	}
	if err := command.Execute(context.Background(), nil); !errors.Is(err, sentinel) {
		t.Errorf("Execute() = %v, want %v", err, sentinel)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var params testParams
	command := &Command{
		Name:        "reconcile",
		Description: "Reconcile the identity.",
		Params:      func() any { return &params },
		Examples:    []Example{{Description: "From a file", Command: "bureau-identity reconcile --config /etc/identity.yaml"}},
		Run:         noop,
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{"Reconcile the identity.", "--uid", "--log-level", "# From a file"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}
