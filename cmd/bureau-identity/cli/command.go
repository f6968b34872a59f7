// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a node of the command tree: either a group dispatching to
// Subcommands or a leaf with Run.
type Command struct {
	// Name is what the user types ("handoff", "show").
	Name string

	// Summary is the one-line description in the parent's command list.
	Summary string

	// Description is the longer text at the top of the command's own
	// help. Summary is used when it is empty.
	Description string

	// Usage replaces the synthesized usage line in help.
	Usage string

	Examples []Example

	// Params returns a pointer to the command's params struct. Tagged
	// fields become flags (see [BindFlags]) and are filled in before
	// Run is called. Embedding [Logging] gives the command --log-level.
	Params func() any

	Subcommands []*Command

	// Run receives the positional arguments left after flag parsing and
	// a logger tagged with the command path.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	// parent is set during dispatch so help and logs know the full path.
	parent *Command
}

// Example is one entry in the Examples section of help.
type Example struct {
	Description string
	Command     string
}

// Execute runs the command tree on args: the first positional argument
// selects a subcommand, the rest is parsed as flags for the leaf.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}
	if len(c.Subcommands) > 0 {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			return c.dispatch(ctx, args[0], args[1:])
		}
		if c.Run == nil {
			c.PrintHelp(os.Stderr)
			if len(args) == 0 {
				return Validation("subcommand required")
			}
			return Validation("subcommand required (got flag %q)", args[0])
		}
	}
	if c.Run == nil {
		return fmt.Errorf("command %q has neither subcommands nor an action", c.fullName())
	}
	return c.run(ctx, args)
}

func (c *Command) dispatch(ctx context.Context, name string, args []string) error {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub.Execute(ctx, args)
		}
	}
	hint := ""
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		hint = fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return Validation("unknown command %q%s\n\nRun '%s --help' for usage.", name, hint, c.fullName())
}

func (c *Command) run(ctx context.Context, args []string) error {
	var params any
	if c.Params != nil {
		params = c.Params()
		remaining, err := c.parseFlags(params, args)
		if err != nil {
			return err
		}
		args = remaining
	}

	level := slog.LevelInfo
	if leveler, ok := params.(LogLeveler); ok {
		var err error
		if level, err = leveler.LogLevel(); err != nil {
			return err
		}
	}
	logger := NewCommandLogger(level).With("command", c.commandPath())
	return c.Run(ctx, args, logger)
}

// parseFlags fills params from args and returns the positional
// arguments. Parse errors become validation errors, with a suggestion
// for a mistyped flag name.
func (c *Command) parseFlags(params any, args []string) ([]string, error) {
	flagSet := FlagsFromParams(c.Name, params)
	flagSet.SetOutput(io.Discard)
	err := flagSet.Parse(args)
	if err == nil {
		return flagSet.Args(), nil
	}

	message := err.Error()
	if strings.HasPrefix(message, "unknown flag") || strings.HasPrefix(message, "unknown shorthand flag") {
		// Suggest against a fresh set; the failed parse has already
		// written into params.
		if suggestion := suggestFlag(args, c.freshFlags()); suggestion != "" {
			message += fmt.Sprintf(" (did you mean %s?)", suggestion)
		}
	}
	return nil, Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// freshFlags returns the command's flags bound to a new params value,
// or nil for a command without params.
func (c *Command) freshFlags() *pflag.FlagSet {
	if c.Params == nil {
		return nil
	}
	return FlagsFromParams(c.Name, c.Params())
}

// PrintHelp writes the command's help to w.
func (c *Command) PrintHelp(w io.Writer) {
	intro := c.Description
	if intro == "" {
		intro = c.Summary
	}
	if intro != "" {
		fmt.Fprintf(w, "%s\n\n", intro)
	}

	fmt.Fprintf(w, "Usage:\n  %s\n", c.usageLine())

	if len(c.Subcommands) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if flagSet := c.freshFlags(); flagSet != nil && flagSet.HasFlags() {
		fmt.Fprintf(w, "\nFlags:\n%s", flagSet.FlagUsages())
	}

	if len(c.Examples) > 0 {
		fmt.Fprintln(w, "\nExamples:")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n  %s\n\n", example.Description, example.Command)
			} else {
				fmt.Fprintf(w, "  %s\n", example.Command)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.fullName())
	}
}

func (c *Command) usageLine() string {
	switch {
	case c.Usage != "":
		return c.Usage
	case len(c.Subcommands) > 0:
		return c.fullName() + " <command> [flags]"
	}
	return c.fullName() + " [flags]"
}

// fullName is the command as typed: "bureau-identity handoff show".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// commandPath is the path below the root joined with slashes
// ("handoff/show"), the form used in log records.
func (c *Command) commandPath() string {
	switch {
	case c.parent == nil, c.parent.parent == nil:
		return c.Name
	}
	return c.parent.commandPath() + "/" + c.Name
}

func isHelpFlag(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	}
	return false
}
