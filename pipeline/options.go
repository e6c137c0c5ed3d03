// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/longshore-foundation/longshore/lib/clock"
)

// Options configures a Logger. Options are immutable once New returns;
// there is no runtime reconfiguration surface. Start from
// DefaultOptions or LoadOptions and override what you need: New fills
// remaining zero fields with the defaults listed on DefaultOptions
// (MaxRetryCount excepted, where zero meaningfully disables retries)
// and validates the result.
type Options struct {
	// EnableRemote turns the shipping path on. When false the Logger
	// is console-only, though forced sends still attempt the network.
	EnableRemote bool

	// MinimumLevel is the lowest level admitted to the remote path.
	MinimumLevel Level

	// EndpointURL is the collector's client-log endpoint, e.g.
	// "https://api.example.com/logs/client". Required when
	// EnableRemote is set.
	EndpointURL string

	// BatchSize is both the flush size trigger and the maximum batch
	// length.
	BatchSize int

	// BatchInterval is the flush time trigger: a non-empty queue is
	// flushed this long after the last flush attempt.
	BatchInterval time.Duration

	// MaxQueueSize bounds the staging queue. Overflow silently evicts
	// the oldest entry.
	MaxQueueSize int

	// MaxRetryCount is the number of additional attempts per batch
	// after the first. Zero means a single attempt.
	MaxRetryCount int

	// BreakerThreshold is the consecutive-failure count that opens
	// the circuit breaker.
	BreakerThreshold int

	// BreakerTimeout is how long the breaker stays open before it
	// admits a probe.
	BreakerTimeout time.Duration

	// RequestTimeout bounds each HTTP attempt.
	RequestTimeout time.Duration

	// Compression selects the request body encoding.
	Compression Compression

	// ConsoleMinimumLevel filters console output, independent of the
	// remote path.
	ConsoleMinimumLevel Level

	// SourceContext, UserAgent, and CorrelationID are stamped into
	// every shipped record. UserAgent is also sent as the request
	// header.
	SourceContext string
	UserAgent     string
	CorrelationID string

	// Clock is the time source. Nil means the wall clock.
	Clock clock.Clock

	// HTTPClient performs the transport's requests. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client

	// Sender replaces the HTTP transport entirely. Primarily a test
	// seam; when set, EndpointURL, HTTPClient, Compression, and
	// RequestTimeout are unused.
	Sender BatchSender

	// ConsoleOut, ConsoleWarn, and ConsoleErr are the console sink's
	// writers. Nil means os.Stdout, os.Stderr, and os.Stderr.
	ConsoleOut  io.Writer
	ConsoleWarn io.Writer
	ConsoleErr  io.Writer

	// Diagnostics receives the pipeline's own structured logs:
	// breaker transitions, retry warnings, batch drops. Nil means
	// slog.Default().
	Diagnostics *slog.Logger
}

// DefaultOptions returns the baseline configuration: console-only
// logging at info level and, once EnableRemote and EndpointURL are
// set, batches of 20 flushed every 5 seconds through a 500-entry
// queue, two retries per batch, and a breaker that opens after 5
// consecutive failures for 30 seconds.
func DefaultOptions() Options {
	return Options{
		MinimumLevel:        LevelInfo,
		BatchSize:           20,
		BatchInterval:       5 * time.Second,
		MaxQueueSize:        500,
		MaxRetryCount:       2,
		BreakerThreshold:    5,
		BreakerTimeout:      30 * time.Second,
		RequestTimeout:      10 * time.Second,
		ConsoleMinimumLevel: LevelVerbose,
	}
}

// applyDefaults fills zero and nil fields in place. MaxRetryCount is
// left alone: zero is the documented way to disable retries.
func (o *Options) applyDefaults() {
	defaults := DefaultOptions()
	if o.MinimumLevel == 0 {
		o.MinimumLevel = defaults.MinimumLevel
	}
	if o.ConsoleMinimumLevel == 0 {
		o.ConsoleMinimumLevel = defaults.ConsoleMinimumLevel
	}
	if o.BatchSize == 0 {
		o.BatchSize = defaults.BatchSize
	}
	if o.BatchInterval == 0 {
		o.BatchInterval = defaults.BatchInterval
	}
	if o.MaxQueueSize == 0 {
		o.MaxQueueSize = defaults.MaxQueueSize
	}
	if o.BreakerThreshold == 0 {
		o.BreakerThreshold = defaults.BreakerThreshold
	}
	if o.BreakerTimeout == 0 {
		o.BreakerTimeout = defaults.BreakerTimeout
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = defaults.RequestTimeout
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.ConsoleOut == nil {
		o.ConsoleOut = os.Stdout
	}
	if o.ConsoleWarn == nil {
		o.ConsoleWarn = os.Stderr
	}
	if o.ConsoleErr == nil {
		o.ConsoleErr = os.Stderr
	}
	if o.Diagnostics == nil {
		o.Diagnostics = slog.Default()
	}
}

// Validate collects every violation rather than stopping at the first.
func (o *Options) Validate() error {
	var errs []error

	if o.EnableRemote && o.EndpointURL == "" {
		errs = append(errs, fmt.Errorf("endpoint_url is required when remote shipping is enabled"))
	}
	if o.EndpointURL != "" {
		parsed, err := url.Parse(o.EndpointURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("endpoint_url %q is not an absolute URL", o.EndpointURL))
		}
	}
	if o.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch_size must not be negative"))
	}
	if o.BatchInterval < 0 {
		errs = append(errs, fmt.Errorf("batch_interval must not be negative"))
	}
	if o.MaxQueueSize < 0 {
		errs = append(errs, fmt.Errorf("max_queue_size must not be negative"))
	}
	if o.MaxRetryCount < 0 {
		errs = append(errs, fmt.Errorf("max_retry_count must not be negative"))
	}
	if o.BreakerThreshold < 0 {
		errs = append(errs, fmt.Errorf("breaker_threshold must not be negative"))
	}
	if o.BreakerTimeout < 0 {
		errs = append(errs, fmt.Errorf("breaker_timeout must not be negative"))
	}
	if o.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative"))
	}
	if o.Compression > CompressionZstd {
		errs = append(errs, fmt.Errorf("unknown compression %d", o.Compression))
	}
	if o.MinimumLevel < 0 || o.MinimumLevel > LevelCritical {
		errs = append(errs, fmt.Errorf("minimum_level out of range"))
	}
	if o.ConsoleMinimumLevel < 0 || o.ConsoleMinimumLevel > LevelCritical {
		errs = append(errs, fmt.Errorf("console_minimum_level out of range"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("pipeline: invalid options: %w", errors.Join(errs...))
	}
	return nil
}

// optionsFile is the YAML form of Options. Fields are pointers so keys
// absent from the file keep their defaults. Durations, levels, and
// compression are strings in the file ("250ms", "warning", "zstd").
type optionsFile struct {
	EnableRemote        *bool   `yaml:"enable_remote"`
	MinimumLevel        *string `yaml:"minimum_level"`
	EndpointURL         *string `yaml:"endpoint_url"`
	BatchSize           *int    `yaml:"batch_size"`
	BatchInterval       *string `yaml:"batch_interval"`
	MaxQueueSize        *int    `yaml:"max_queue_size"`
	MaxRetryCount       *int    `yaml:"max_retry_count"`
	BreakerThreshold    *int    `yaml:"breaker_threshold"`
	BreakerTimeout      *string `yaml:"breaker_timeout"`
	RequestTimeout      *string `yaml:"request_timeout"`
	Compression         *string `yaml:"compression"`
	ConsoleMinimumLevel *string `yaml:"console_minimum_level"`
	SourceContext       *string `yaml:"source_context"`
	UserAgent           *string `yaml:"user_agent"`
	CorrelationID       *string `yaml:"correlation_id"`
}

// LoadOptions reads a YAML options file over DefaultOptions. The
// result has not been validated; New does that.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("pipeline: read options: %w", err)
	}
	var file optionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return opts, fmt.Errorf("pipeline: parse options %s: %w", path, err)
	}

	if file.EnableRemote != nil {
		opts.EnableRemote = *file.EnableRemote
	}
	if file.EndpointURL != nil {
		opts.EndpointURL = *file.EndpointURL
	}
	if file.BatchSize != nil {
		opts.BatchSize = *file.BatchSize
	}
	if file.MaxQueueSize != nil {
		opts.MaxQueueSize = *file.MaxQueueSize
	}
	if file.MaxRetryCount != nil {
		opts.MaxRetryCount = *file.MaxRetryCount
	}
	if file.BreakerThreshold != nil {
		opts.BreakerThreshold = *file.BreakerThreshold
	}
	if file.SourceContext != nil {
		opts.SourceContext = *file.SourceContext
	}
	if file.UserAgent != nil {
		opts.UserAgent = *file.UserAgent
	}
	if file.CorrelationID != nil {
		opts.CorrelationID = *file.CorrelationID
	}

	if file.MinimumLevel != nil {
		opts.MinimumLevel, err = ParseLevel(*file.MinimumLevel)
		if err != nil {
			return opts, fmt.Errorf("minimum_level: %w", err)
		}
	}
	if file.ConsoleMinimumLevel != nil {
		opts.ConsoleMinimumLevel, err = ParseLevel(*file.ConsoleMinimumLevel)
		if err != nil {
			return opts, fmt.Errorf("console_minimum_level: %w", err)
		}
	}
	if file.Compression != nil {
		opts.Compression, err = ParseCompression(*file.Compression)
		if err != nil {
			return opts, fmt.Errorf("compression: %w", err)
		}
	}
	if file.BatchInterval != nil {
		opts.BatchInterval, err = parseFileDuration("batch_interval", *file.BatchInterval)
		if err != nil {
			return opts, err
		}
	}
	if file.BreakerTimeout != nil {
		opts.BreakerTimeout, err = parseFileDuration("breaker_timeout", *file.BreakerTimeout)
		if err != nil {
			return opts, err
		}
	}
	if file.RequestTimeout != nil {
		opts.RequestTimeout, err = parseFileDuration("request_timeout", *file.RequestTimeout)
		if err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func parseFileDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("pipeline: %s: %w", key, err)
	}
	return d, nil
}
