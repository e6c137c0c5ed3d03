// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Logger is the pipeline facade. Every method mirrors the entry to the
// console sink; entries that pass the remote filter are queued for
// batched shipment. No method panics or returns an error: a logging
// call must never become a fault in the host application.
//
// A Logger is safe for concurrent use.
type Logger struct {
	opts      Options
	sink      *consoleSink
	queue     *boundedQueue
	breaker   *circuitBreaker
	scheduler *batchScheduler
	sender    BatchSender
	logger    *slog.Logger
	counters  counters
	sequence  atomic.Uint64

	cancel  context.CancelFunc
	started bool

	closeMu    sync.Mutex
	closed     bool
	closedFast atomic.Bool
	force      sync.WaitGroup
}

// New builds a Logger from opts and, when remote shipping is enabled,
// starts the scheduler goroutine. The Logger is ready for concurrent
// use when New returns.
func New(opts Options) (*Logger, error) {
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		opts:   opts,
		sink:   newConsoleSink(opts.ConsoleOut, opts.ConsoleWarn, opts.ConsoleErr, opts.ConsoleMinimumLevel),
		logger: opts.Diagnostics,
	}
	l.sender = opts.Sender
	if l.sender == nil {
		l.sender = newHTTPSender(opts)
	}
	l.queue = newBoundedQueue(opts.MaxQueueSize)
	l.breaker = newCircuitBreaker(opts.Clock, opts.BreakerThreshold, opts.BreakerTimeout, opts.Diagnostics)
	l.scheduler = newBatchScheduler(l.queue, l.breaker, l.sender, l.sink,
		opts.Clock, opts.Diagnostics, &l.counters, opts.BatchSize, opts.BatchInterval)

	if opts.EnableRemote {
		ctx, cancel := context.WithCancel(context.Background())
		l.cancel = cancel
		l.started = true
		go l.scheduler.run(ctx)
	}
	return l, nil
}

// Debug logs at debug level. kv are alternating keys and values, slog
// style.
func (l *Logger) Debug(message string, kv ...any) {
	l.log(LevelDebug, message, contextFromKV(kv), nil)
}

// Info logs at info level.
func (l *Logger) Info(message string, kv ...any) {
	l.log(LevelInfo, message, contextFromKV(kv), nil)
}

// Warning logs at warning level.
func (l *Logger) Warning(message string, kv ...any) {
	l.log(LevelWarning, message, contextFromKV(kv), nil)
}

// Error logs at error level.
func (l *Logger) Error(message string, kv ...any) {
	l.log(LevelError, message, contextFromKV(kv), nil)
}

// Critical logs at critical level.
func (l *Logger) Critical(message string, kv ...any) {
	l.log(LevelCritical, message, contextFromKV(kv), nil)
}

// DebugCtx logs at debug level with an explicit context map and an
// optional error. The map is copied; keys matching the Field constants
// are promoted to dedicated wire fields.
func (l *Logger) DebugCtx(message string, ctx map[string]any, err error) {
	l.log(LevelDebug, message, cloneContext(ctx), err)
}

// InfoCtx logs at info level with an explicit context map and error.
func (l *Logger) InfoCtx(message string, ctx map[string]any, err error) {
	l.log(LevelInfo, message, cloneContext(ctx), err)
}

// WarningCtx logs at warning level with an explicit context map and error.
func (l *Logger) WarningCtx(message string, ctx map[string]any, err error) {
	l.log(LevelWarning, message, cloneContext(ctx), err)
}

// ErrorCtx logs at error level with an explicit context map and error.
func (l *Logger) ErrorCtx(message string, ctx map[string]any, err error) {
	l.log(LevelError, message, cloneContext(ctx), err)
}

// CriticalCtx logs at critical level with an explicit context map and error.
func (l *Logger) CriticalCtx(message string, ctx map[string]any, err error) {
	l.log(LevelCritical, message, cloneContext(ctx), err)
}

// log captures the entry, mirrors it, and hands it to the shipping
// path when admitted. The size trigger fires here: once the queue
// holds a full batch, the scheduler is kicked.
func (l *Logger) log(level Level, message string, ctx map[string]any, err error) {
	entry := Entry{
		Level:    level,
		Message:  message,
		Time:     l.opts.Clock.Now(),
		Sequence: l.sequence.Add(1),
		Err:      err,
		Context:  ctx,
	}
	l.sink.Write(entry)

	if !l.opts.EnableRemote || level < l.opts.MinimumLevel || l.closedFast.Load() {
		return
	}
	if l.queue.Enqueue(entry) {
		l.logger.Debug("log queue full, oldest entry evicted",
			"capacity", l.opts.MaxQueueSize)
	}
	l.counters.enqueued.Add(1)
	if l.queue.Len() >= l.opts.BatchSize {
		l.scheduler.notify()
	}
}

// Close shuts the pipeline down: the scheduler stops after a final
// best-effort drain of the queue, and in-flight forced sends are
// awaited. Close is idempotent. Logging after Close degrades to
// console-only. The error reports only a ctx expiry; the drain itself
// is best-effort and never fails Close.
func (l *Logger) Close(ctx context.Context) error {
	l.closeMu.Lock()
	if l.closed {
		l.closeMu.Unlock()
		return nil
	}
	l.closed = true
	l.closedFast.Store(true)
	l.closeMu.Unlock()

	if l.started {
		l.cancel()
		select {
		case <-l.scheduler.done:
		case <-ctx.Done():
			return fmt.Errorf("pipeline: close: %w", ctx.Err())
		}
	}

	forced := make(chan struct{})
	go func() {
		l.force.Wait()
		close(forced)
	}()
	select {
	case <-forced:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline: close: %w", ctx.Err())
	}
}

// Stats returns a snapshot of the pipeline's counters and state.
func (l *Logger) Stats() Stats {
	return Stats{
		QueueDepth:        l.queue.Len(),
		Enqueued:          l.counters.enqueued.Load(),
		Evicted:           l.queue.Evicted(),
		BatchesShipped:    l.counters.batchesShipped.Load(),
		EntriesShipped:    l.counters.entriesShipped.Load(),
		TransportFailures: l.counters.transportFailures.Load(),
		FlushesSkipped:    l.counters.flushesSkipped.Load(),
		ForcedSends:       l.counters.forcedSends.Load(),
		ForcedFailures:    l.counters.forcedFailures.Load(),
		BreakerState:      l.breaker.State(),
	}
}
