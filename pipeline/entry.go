// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"time"
)

// Context keys the transport promotes into dedicated wire fields
// instead of shipping inside additionalContext. StatusCode accepts any
// integer type; the others expect strings.
const (
	FieldRequestURL    = "requestUrl"
	FieldRequestMethod = "requestMethod"
	FieldStatusCode    = "statusCode"
	FieldCorrelationID = "correlationId"
)

// Entry is one captured log record. Entries are immutable after
// capture: the facade stamps the time and sequence number and copies
// the caller's context map, so later mutation by the caller cannot
// reach the queue or the wire.
type Entry struct {
	Level   Level
	Message string

	// Time is the capture time from the injected clock.
	Time time.Time

	// Sequence is assigned at capture from a per-Logger monotonic
	// counter. It breaks ties between entries captured in the same
	// clock tick; it does not travel on the wire.
	Sequence uint64

	// Err is the error the entry was logged with, or nil.
	Err error

	// Context is the entry's structured payload. Keys matching the
	// Field constants above are promoted to dedicated wire fields.
	Context map[string]any
}

// cloneContext copies a caller-owned context map. Nil and empty maps
// come back nil so absent context stays absent on the wire.
func cloneContext(ctx map[string]any) map[string]any {
	if len(ctx) == 0 {
		return nil
	}
	clone := make(map[string]any, len(ctx))
	for key, value := range ctx {
		clone[key] = value
	}
	return clone
}

// contextFromKV pairs up slog-style variadic key/values into a context
// map. Non-string keys are stringified and a trailing key without a
// value is kept with a placeholder, because a logging call must never
// fail on malformed arguments.
func contextFromKV(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	ctx := make(map[string]any, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 < len(kv) {
			ctx[key] = kv[i+1]
		} else {
			ctx[key] = "(missing)"
		}
	}
	return ctx
}
