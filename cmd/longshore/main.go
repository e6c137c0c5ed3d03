// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/longshore-foundation/longshore/cmd/longshore/cli"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like probe) return an
		// ExitError with the desired code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return root().Execute(os.Args[1:])
}

// root builds the longshore command tree.
func root() *cli.Command {
	return &cli.Command{
		Name:    "longshore",
		Summary: "Resilient client log shipping",
		Description: `Longshore: resilient client log shipping.

Reads log entries, mirrors them locally, and ships them to an HTTP
collector in batches through a bounded queue with retries and a
circuit breaker. A dead collector never blocks or fails the caller;
at worst entries are dropped, oldest first.`,
		Subcommands: []*cli.Command{
			shipCommand(),
			probeCommand(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Ship a log file to a collector",
				Command:     "longshore ship --endpoint https://api.example.com/logs/client < app.log",
			},
			{
				Description: "Follow a pipe and ship lines as warnings",
				Command:     "tail -f /var/log/app.log | longshore ship --config longshore.yaml --level warning",
			},
			{
				Description: "Check that the collector accepts entries",
				Command:     "longshore probe --endpoint https://api.example.com/logs/client",
			},
		},
	}
}
