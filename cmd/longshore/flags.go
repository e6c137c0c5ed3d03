// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/longshore-foundation/longshore/pipeline"
)

// pipelineFlags binds the pipeline option surface to a flag set. Ship
// and probe share it so the two commands stay in sync. Flags override
// the config file, which overrides the built-in defaults; only flags
// the user actually set are applied, so a config file value survives
// an unset flag's default.
type pipelineFlags struct {
	configPath       string
	endpoint         string
	minimumLevel     string
	batchSize        int
	batchInterval    time.Duration
	queueSize        int
	retries          int
	breakerThreshold int
	breakerTimeout   time.Duration
	requestTimeout   time.Duration
	compression      string
	source           string
	userAgent        string
	correlationID    string

	set *pflag.FlagSet
}

func (f *pipelineFlags) register(flagSet *pflag.FlagSet) {
	defaults := pipeline.DefaultOptions()

	flagSet.StringVar(&f.configPath, "config", "", "path to a longshore options YAML file")
	flagSet.StringVar(&f.endpoint, "endpoint", "", "collector endpoint URL")
	flagSet.StringVar(&f.minimumLevel, "minimum-level", defaults.MinimumLevel.String(),
		"lowest level shipped to the collector")
	flagSet.IntVar(&f.batchSize, "batch-size", defaults.BatchSize, "entries per batch")
	flagSet.DurationVar(&f.batchInterval, "batch-interval", defaults.BatchInterval,
		"flush interval for partial batches")
	flagSet.IntVar(&f.queueSize, "queue-size", defaults.MaxQueueSize,
		"staging queue capacity; overflow drops the oldest entry")
	flagSet.IntVar(&f.retries, "retries", defaults.MaxRetryCount,
		"additional send attempts per batch")
	flagSet.IntVar(&f.breakerThreshold, "breaker-threshold", defaults.BreakerThreshold,
		"consecutive failures that open the circuit breaker")
	flagSet.DurationVar(&f.breakerTimeout, "breaker-timeout", defaults.BreakerTimeout,
		"how long the breaker stays open before probing")
	flagSet.DurationVar(&f.requestTimeout, "request-timeout", defaults.RequestTimeout,
		"timeout per HTTP attempt")
	flagSet.StringVar(&f.compression, "compression", defaults.Compression.String(),
		"request body encoding: none, gzip, or zstd")
	flagSet.StringVar(&f.source, "source", "", "sourceContext stamped into every record")
	flagSet.StringVar(&f.userAgent, "user-agent", "", "User-Agent header and record field")
	flagSet.StringVar(&f.correlationID, "correlation-id", "",
		"correlationId stamped into every record (default: generated per run)")

	f.set = flagSet
}

// options resolves defaults, config file, and changed flags into the
// final pipeline options. Validation happens in pipeline.New.
func (f *pipelineFlags) options() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if f.configPath != "" {
		loaded, err := pipeline.LoadOptions(f.configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	if f.set.Changed("endpoint") {
		opts.EndpointURL = f.endpoint
	}
	if f.set.Changed("minimum-level") {
		level, err := pipeline.ParseLevel(f.minimumLevel)
		if err != nil {
			return opts, fmt.Errorf("--minimum-level: %w", err)
		}
		opts.MinimumLevel = level
	}
	if f.set.Changed("batch-size") {
		opts.BatchSize = f.batchSize
	}
	if f.set.Changed("batch-interval") {
		opts.BatchInterval = f.batchInterval
	}
	if f.set.Changed("queue-size") {
		opts.MaxQueueSize = f.queueSize
	}
	if f.set.Changed("retries") {
		opts.MaxRetryCount = f.retries
	}
	if f.set.Changed("breaker-threshold") {
		opts.BreakerThreshold = f.breakerThreshold
	}
	if f.set.Changed("breaker-timeout") {
		opts.BreakerTimeout = f.breakerTimeout
	}
	if f.set.Changed("request-timeout") {
		opts.RequestTimeout = f.requestTimeout
	}
	if f.set.Changed("compression") {
		compression, err := pipeline.ParseCompression(f.compression)
		if err != nil {
			return opts, fmt.Errorf("--compression: %w", err)
		}
		opts.Compression = compression
	}
	if f.set.Changed("source") {
		opts.SourceContext = f.source
	}
	if f.set.Changed("user-agent") {
		opts.UserAgent = f.userAgent
	}
	if f.set.Changed("correlation-id") {
		opts.CorrelationID = f.correlationID
	}
	return opts, nil
}
