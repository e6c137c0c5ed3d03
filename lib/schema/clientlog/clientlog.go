// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package clientlog

import (
	"fmt"
	"time"
)

// Wire names for the logLevel field, ordered least to most severe. The
// collector matches these strings case-sensitively.
const (
	LevelVerbose  = "Verbose"
	LevelDebug    = "Debug"
	LevelInfo     = "Information"
	LevelWarning  = "Warning"
	LevelError    = "Error"
	LevelCritical = "Critical"
)

var knownLevels = map[string]bool{
	LevelVerbose:  true,
	LevelDebug:    true,
	LevelInfo:     true,
	LevelWarning:  true,
	LevelError:    true,
	LevelCritical: true,
}

// Request is one client log record as the collector ingests it.
type Request struct {
	// LogLevel is the record's severity as a wire name (one of the
	// Level constants above).
	LogLevel string `json:"logLevel"`

	// Message is the log text. May be empty; the collector accepts
	// empty messages as-is.
	Message string `json:"message"`

	// ExceptionMessage carries the error text when the record was
	// logged with an error attached.
	ExceptionMessage string `json:"exceptionMessage,omitempty"`

	// StackTrace carries the error's stack or chain rendering, when
	// available.
	StackTrace string `json:"stackTrace,omitempty"`

	// SourceContext names the emitting component (a logger category,
	// binary name, or subsystem).
	SourceContext string `json:"sourceContext,omitempty"`

	// RequestURL, RequestMethod, and StatusCode describe the HTTP
	// request a record is about, when the record was logged from
	// request-handling code.
	RequestURL    string `json:"requestUrl,omitempty"`
	RequestMethod string `json:"requestMethod,omitempty"`
	StatusCode    int    `json:"statusCode,omitempty"`

	// UserAgent identifies the shipping client.
	UserAgent string `json:"userAgent,omitempty"`

	// ClientTimestamp is when the client captured the record, RFC 3339
	// with nanoseconds, UTC. The collector stamps its own receive time
	// separately, so clock skew degrades ordering but never rejects a
	// record.
	ClientTimestamp string `json:"clientTimestamp,omitempty"`

	// AdditionalContext holds the record's structured payload after
	// the dedicated fields above were extracted.
	AdditionalContext map[string]any `json:"additionalContext,omitempty"`

	// CorrelationID groups records from one client session or one
	// logical operation.
	CorrelationID string `json:"correlationId,omitempty"`
}

// Timestamp renders t in the contract's clientTimestamp encoding.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Validate checks the record against the contract. The pipeline
// constructs valid requests itself; this exists for consumers that
// build records by hand or ingest them from other producers.
func (r *Request) Validate() error {
	if r.LogLevel == "" {
		return fmt.Errorf("clientlog: missing logLevel")
	}
	if !knownLevels[r.LogLevel] {
		return fmt.Errorf("clientlog: unknown logLevel %q", r.LogLevel)
	}
	return nil
}
