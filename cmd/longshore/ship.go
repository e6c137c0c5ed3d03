// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/longshore-foundation/longshore/cmd/longshore/cli"
	"github.com/longshore-foundation/longshore/pipeline"
)

func shipCommand() *cli.Command {
	var (
		flags        pipelineFlags
		level        string
		echo         bool
		drainTimeout time.Duration
		verbose      bool
	)
	return &cli.Command{
		Name:    "ship",
		Summary: "Ship log lines to the collector",
		Description: `Reads log lines from stdin (or the given files) and ships each as a
client log entry. Lines are batched, buffered, and sent with retries
and a circuit breaker; a dead collector drops entries rather than
blocking the input. Empty lines are skipped.

On EOF the remaining queue is flushed, bounded by --drain-timeout,
and a summary of shipped and dropped counts is logged.`,
		Usage: "longshore ship --endpoint <url> [flags] [file ...]",
		Examples: []cli.Example{
			{
				Description: "Ship a file as warnings",
				Command:     "longshore ship --endpoint https://api.example.com/logs/client --level warning app.log",
			},
			{
				Description: "Ship a stream with zstd compression and a config file",
				Command:     "tail -f app.log | longshore ship --config longshore.yaml --compression zstd",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ship", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringVar(&level, "level", "info",
				"level for shipped lines: debug, info, warning, error, or critical")
			flagSet.BoolVar(&echo, "echo", false, "mirror lines to the local console")
			flagSet.DurationVar(&drainTimeout, "drain-timeout", 10*time.Second,
				"how long to wait for the final flush on EOF")
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

			lineLevel, err := pipeline.ParseLevel(level)
			if err != nil {
				return fmt.Errorf("--level: %w", err)
			}
			if lineLevel == pipeline.LevelVerbose {
				return fmt.Errorf("--level: verbose entries are console-only; use debug or higher")
			}

			logger := cli.NewCommandLogger(verbose).With("command", "ship")
			opts.Diagnostics = logger
			if !echo {
				opts.ConsoleOut = io.Discard
				opts.ConsoleWarn = io.Discard
				opts.ConsoleErr = io.Discard
			}

			inputs, cleanup, err := openInputs(args)
			if err != nil {
				return err
			}
			defer cleanup()

			return runShip(opts, inputs, lineLevel, drainTimeout, logger)
		},
	}
}

// shipInput is one source of log lines.
type shipInput struct {
	name   string
	reader io.Reader
}

// openInputs resolves the positional arguments to line sources. No
// arguments means stdin.
func openInputs(args []string) ([]shipInput, func(), error) {
	if len(args) == 0 {
		return []shipInput{{name: "stdin", reader: os.Stdin}}, func() {}, nil
	}

	var inputs []shipInput
	var files []*os.File
	cleanup := func() {
		for _, file := range files {
			file.Close()
		}
	}
	for _, path := range args {
		file, err := os.Open(path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		files = append(files, file)
		inputs = append(inputs, shipInput{name: path, reader: file})
	}
	return inputs, cleanup, nil
}

// runShip pumps every input through the pipeline and drains it on EOF.
func runShip(opts pipeline.Options, inputs []shipInput, level pipeline.Level,
	drainTimeout time.Duration, logger *slog.Logger) error {
	l, err := pipeline.New(opts)
	if err != nil {
		return err
	}

	var lines int
	var readErr error
	for _, input := range inputs {
		n, err := shipLines(l, input.reader, level)
		lines += n
		if err != nil {
			readErr = fmt.Errorf("reading %s: %w", input.name, err)
			break
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := l.Close(ctx); err != nil {
		logger.Warn("drain timed out, queued entries dropped", "error", err)
	}

	stats := l.Stats()
	logger.Info("shipping finished",
		"lines", lines,
		"shipped", stats.EntriesShipped,
		"batches", stats.BatchesShipped,
		"evicted", stats.Evicted,
		"transport_failures", stats.TransportFailures,
		"breaker", stats.BreakerState)
	if dropped := stats.Enqueued - stats.EntriesShipped; dropped > 0 {
		logger.Warn("entries did not reach the collector", "count", dropped)
	}
	return readErr
}

// shipLines logs every non-empty line at the given level. Lines longer
// than 1 MiB abort the read.
func shipLines(l *pipeline.Logger, reader io.Reader, level pipeline.Level) (int, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		logAt(l, level, line)
		lines++
	}
	return lines, scanner.Err()
}

func logAt(l *pipeline.Logger, level pipeline.Level, message string) {
	switch level {
	case pipeline.LevelDebug:
		l.Debug(message)
	case pipeline.LevelWarning:
		l.Warning(message)
	case pipeline.LevelError:
		l.Error(message)
	case pipeline.LevelCritical:
		l.Critical(message)
	default:
		l.Info(message)
	}
}
