// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable output.
// When stderr is piped or redirected (image builds, CI, scripts), uses
// slog.JSONHandler for machine-parseable output.
//
// [Command.Execute] scopes the logger with the command path; Run
// functions add their own context via With():
//
//	logger = logger.With("uid", request.UID, "gid", request.GID)
func NewCommandLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// LogLeveler is implemented by params structs that choose the
// command's log level.
type LogLeveler interface {
	LogLevel() (slog.Level, error)
}

// Logging is an embeddable struct that adds --log-level to a command's
// parameter struct.
type Logging struct {
	Level string `json:"-" flag:"log-level" desc:"minimum log level: debug, info, warn, error" default:"info"`
}

// LogLevel parses the --log-level value, satisfying [LogLeveler].
func (l *Logging) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, Validation("invalid --log-level %q (want debug, info, warn or error)", l.Level)
	}
	return level, nil
}
