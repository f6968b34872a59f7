// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads bureau-identity configuration.
//
// Configuration comes from a single file named by the --config flag or
// the BUREAU_IDENTITY_CONFIG environment variable. There is no
// discovery and no search path: with neither set, [Resolve] returns
// [Default] and the command line must supply the identity. This keeps
// what a build step provisions auditable from its own invocation.
//
// The file format follows the extension: .yaml or .yml (the default
// for an unrecognized-but-empty extension), .json or .jsonc (comments
// and trailing commas allowed), and .toml. All three decode into the
// same [Config] over the defaults, so a file only names what it
// changes.
//
// After loading, ${VAR} and ${VAR:-default} patterns in path fields
// are expanded from the environment. Nothing else in the environment
// overrides configuration values.
//
// [Config.Validate] reports every problem at once. It is meant to run
// after command-line overrides are applied, since a file may leave the
// numeric IDs to flags.
package config
