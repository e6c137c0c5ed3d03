// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "sync/atomic"

// counters are the pipeline's shared monotonic counters. The facade
// and the scheduler both write them; Stats reads them.
type counters struct {
	enqueued          atomic.Uint64
	batchesShipped    atomic.Uint64
	entriesShipped    atomic.Uint64
	transportFailures atomic.Uint64
	flushesSkipped    atomic.Uint64
	forcedSends       atomic.Uint64
	forcedFailures    atomic.Uint64
}

// Stats is a point-in-time snapshot of pipeline health. Counters are
// monotonic over the Logger's lifetime; QueueDepth and BreakerState
// are instantaneous.
type Stats struct {
	// QueueDepth is the number of entries waiting to be shipped.
	QueueDepth int

	// Enqueued counts entries admitted to the remote path.
	Enqueued uint64

	// Evicted counts entries dropped from a full queue to make room
	// for newer ones.
	Evicted uint64

	// BatchesShipped and EntriesShipped count successful deliveries.
	BatchesShipped uint64
	EntriesShipped uint64

	// TransportFailures counts batches dropped after exhausting
	// retries.
	TransportFailures uint64

	// FlushesSkipped counts flush attempts denied by the open
	// circuit breaker.
	FlushesSkipped uint64

	// ForcedSends counts forced send attempts; ForcedFailures counts
	// the ones the collector did not accept.
	ForcedSends    uint64
	ForcedFailures uint64

	// BreakerState is "closed", "open", or "half-open".
	BreakerState string
}
