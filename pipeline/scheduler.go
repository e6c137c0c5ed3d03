// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/longshore-foundation/longshore/lib/clock"
)

// drainTimeout bounds the final shipping pass during shutdown.
const drainTimeout = 5 * time.Second

// batchScheduler owns flush execution. It is a single goroutine, which
// is what guarantees at most one flush in flight: size and interval
// triggers can fire together and still produce sequential flushes.
// Entries arriving mid-flush accumulate in the queue for the next
// batch.
type batchScheduler struct {
	queue     *boundedQueue
	breaker   *circuitBreaker
	sender    BatchSender
	sink      *consoleSink
	clk       clock.Clock
	logger    *slog.Logger
	counters  *counters
	batchSize int
	interval  time.Duration

	// kick coalesces size-trigger signals from the facade. Capacity 1:
	// a kick that arrives while one is pending is redundant, the
	// pending wakeup will see the longer queue.
	kick chan struct{}

	// done closes when run returns.
	done chan struct{}
}

func newBatchScheduler(queue *boundedQueue, breaker *circuitBreaker, sender BatchSender,
	sink *consoleSink, clk clock.Clock, logger *slog.Logger, counters *counters,
	batchSize int, interval time.Duration) *batchScheduler {
	return &batchScheduler{
		queue:     queue,
		breaker:   breaker,
		sender:    sender,
		sink:      sink,
		clk:       clk,
		logger:    logger,
		counters:  counters,
		batchSize: batchSize,
		interval:  interval,
		kick:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// notify signals that the queue has reached a full batch. Non-blocking.
func (s *batchScheduler) notify() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// run is the scheduler goroutine. The ticker is reset after every
// wakeup so the interval trigger always measures from the last flush
// attempt, not from a fixed cadence. On cancellation it makes a final
// best-effort drain before exiting.
func (s *batchScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := s.clk.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case <-ticker.C:
		case <-s.kick:
		}
		s.flush(ctx)
		ticker.Reset(s.interval)
	}
}

type shipOutcome uint8

const (
	shipIdle    shipOutcome = iota // queue empty, nothing to do
	shipDenied                     // breaker open, queue left intact
	shipFailed                     // batch drained, sent, and dropped
	shipShipped                    // batch drained and delivered
)

// ship performs one flush attempt: admission, drain, send. A denied
// attempt leaves the queue untouched. A failed send drops the drained
// batch; retry already happened inside the sender.
func (s *batchScheduler) ship(ctx context.Context) shipOutcome {
	if s.queue.Len() == 0 {
		return shipIdle
	}
	if !s.breaker.Allow() {
		s.counters.flushesSkipped.Add(1)
		s.logger.Debug("flush denied, circuit open", "queued", s.queue.Len())
		return shipDenied
	}
	batch := s.queue.DrainUpTo(s.batchSize)
	if err := s.sender.SendBatch(ctx, batch); err != nil {
		s.breaker.OnFailure()
		s.counters.transportFailures.Add(1)
		s.sink.Diagnostic(LevelWarning,
			fmt.Sprintf("dropping %d log entries, shipment failed: %v", len(batch), err))
		s.logger.Warn("client log batch dropped",
			"entries", len(batch),
			"error", err)
		return shipFailed
	}
	s.breaker.OnSuccess()
	s.counters.batchesShipped.Add(1)
	s.counters.entriesShipped.Add(uint64(len(batch)))
	return shipShipped
}

// flush ships batches until the queue no longer holds a full one. The
// remainder waits for the interval trigger.
func (s *batchScheduler) flush(ctx context.Context) {
	for {
		if s.ship(ctx) != shipShipped {
			return
		}
		if s.queue.Len() < s.batchSize {
			return
		}
	}
}

// drain ships whatever the queue still holds at shutdown, stopping at
// the first denial or failure. Entries that cannot be shipped within
// drainTimeout are dropped; shutdown must not hang on a dead collector.
func (s *batchScheduler) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for s.ship(ctx) == shipShipped {
	}
}
