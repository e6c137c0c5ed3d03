// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/longshore-foundation/longshore/cmd/longshore/cli"
	"github.com/longshore-foundation/longshore/lib/version"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Printf("longshore %s\n", version.Full())
			return nil
		},
	}
}
