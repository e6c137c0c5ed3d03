// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger builds the structured logger for CLI commands and
// for the pipeline's diagnostics. When stderr is a terminal it uses
// slog.TextHandler for human-readable output; when stderr is piped or
// redirected (CI, scripts) it switches to slog.JSONHandler so the
// output stays machine-parseable.
//
// Commands scope the logger with their own context via With():
//
//	logger := cli.NewCommandLogger(verbose).With("command", "ship")
func NewCommandLogger(verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}
