// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/longshore-foundation/longshore/cmd/longshore/cli"
	"github.com/longshore-foundation/longshore/pipeline"
)

func probeCommand() *cli.Command {
	var (
		flags   pipelineFlags
		level   string
		timeout time.Duration
		verbose bool
	)
	return &cli.Command{
		Name:    "probe",
		Summary: "Send one forced entry to verify collector connectivity",
		Description: `Sends a single forced log entry to the collector, bypassing the queue,
the batcher, and the circuit breaker, then reports whether the collector
accepted it. Exits 1 when the entry could not be delivered.`,
		Usage: "longshore probe --endpoint <url> [flags] [message]",
		Examples: []cli.Example{
			{
				Description: "Check that the collector is reachable",
				Command:     "longshore probe --endpoint https://api.example.com/logs/client",
			},
			{
				Description: "Deliver a critical marker from a deploy script",
				Command:     "longshore probe --config longshore.yaml --level critical deploy finished",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("probe", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringVar(&level, "level", "info",
				"level for the probe entry: debug, info, warning, error, or critical")
			flagSet.DurationVar(&timeout, "timeout", 15*time.Second,
				"how long to wait for the probe to be delivered")
			flagSet.BoolVar(&verbose, "verbose", false, "enable debug diagnostics")
			return flagSet
		},
		Run: func(args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.EnableRemote = true
			if opts.CorrelationID == "" {
				opts.CorrelationID = uuid.NewString()
			}

			probeLevel, err := pipeline.ParseLevel(level)
			if err != nil {
				return fmt.Errorf("--level: %w", err)
			}
			if probeLevel == pipeline.LevelVerbose {
				return fmt.Errorf("--level: verbose entries are console-only; use debug or higher")
			}

			logger := cli.NewCommandLogger(verbose).With("command", "probe")
			opts.Diagnostics = logger
			opts.ConsoleOut = io.Discard
			opts.ConsoleWarn = io.Discard
			opts.ConsoleErr = io.Discard

			message := "longshore connectivity probe"
			if len(args) > 0 {
				message = strings.Join(args, " ")
			}

			l, err := pipeline.New(opts)
			if err != nil {
				return err
			}
			forceAt(l, probeLevel, message, "probe", true)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := l.Close(ctx); err != nil {
				logger.Error("probe timed out", "endpoint", opts.EndpointURL, "error", err)
				return &cli.ExitError{Code: 1}
			}

			if l.Stats().ForcedFailures > 0 {
				logger.Error("probe failed, collector did not accept the entry",
					"endpoint", opts.EndpointURL)
				return &cli.ExitError{Code: 1}
			}
			logger.Info("probe delivered",
				"endpoint", opts.EndpointURL,
				"correlation_id", opts.CorrelationID)
			return nil
		},
	}
}

func forceAt(l *pipeline.Logger, level pipeline.Level, message string, kv ...any) {
	switch level {
	case pipeline.LevelDebug:
		l.ForceDebug(message, kv...)
	case pipeline.LevelWarning:
		l.ForceWarning(message, kv...)
	case pipeline.LevelError:
		l.ForceError(message, kv...)
	case pipeline.LevelCritical:
		l.ForceCritical(message, kv...)
	default:
		l.ForceInfo(message, kv...)
	}
}
