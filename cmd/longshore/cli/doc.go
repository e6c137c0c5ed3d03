// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the longshore binary:
// a [Command] tree with help output, typo suggestions, and pflag-based
// flag parsing, plus the shared command logger. Commands are assembled
// into a tree in cmd/longshore/main.go; each node either dispatches to
// subcommands or executes its Run function.
package cli
