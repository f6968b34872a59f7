// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for bureau-identity.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a parameter struct whose tagged fields
// become flags ([FlagsFromParams]), and a Run function that receives a
// context and a logger scoped to the command. The tree is assembled in
// cmd/bureau-identity/commands and dispatched via [Command.Execute],
// which handles flag parsing, subcommand routing, and help output.
//
// Parameter structs opt into shared behavior by embedding:
//
//   - [JSONOutput] adds --json and [JSONOutput.EmitJSON].
//   - [Logging] adds --log-level; Execute builds the command's logger
//     at that level with [NewCommandLogger].
//
// Unknown subcommands and flags get a Levenshtein-based suggestion
// (distance <= 3), implemented in suggest.go.
//
// Commands report bad input with [Validation] and friends ([ToolError])
// and signal a handled non-zero exit with [ExitError].
package cli
