// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
)

// Forced sends are the escape hatch for diagnostics that must reach
// the collector now: they bypass the remote enablement switch, the
// minimum level, the queue, the scheduler, and the circuit breaker.
// Each call performs exactly one HTTP exchange on its own goroutine,
// so the caller never blocks on the network. Failures are absorbed
// like everywhere else.

// ForceDebug sends one debug entry immediately.
func (l *Logger) ForceDebug(message string, kv ...any) {
	l.forceSend(LevelDebug, message, contextFromKV(kv))
}

// ForceInfo sends one info entry immediately.
func (l *Logger) ForceInfo(message string, kv ...any) {
	l.forceSend(LevelInfo, message, contextFromKV(kv))
}

// ForceWarning sends one warning entry immediately.
func (l *Logger) ForceWarning(message string, kv ...any) {
	l.forceSend(LevelWarning, message, contextFromKV(kv))
}

// ForceError sends one error entry immediately.
func (l *Logger) ForceError(message string, kv ...any) {
	l.forceSend(LevelError, message, contextFromKV(kv))
}

// ForceCritical sends one critical entry immediately.
func (l *Logger) ForceCritical(message string, kv ...any) {
	l.forceSend(LevelCritical, message, contextFromKV(kv))
}

func (l *Logger) forceSend(level Level, message string, ctx map[string]any) {
	entry := Entry{
		Level:    level,
		Message:  message,
		Time:     l.opts.Clock.Now(),
		Sequence: l.sequence.Add(1),
		Context:  ctx,
	}
	l.sink.Write(entry)

	// Registration happens under closeMu so Close cannot start
	// waiting on the WaitGroup while a forced send is being added.
	l.closeMu.Lock()
	if l.closed {
		l.closeMu.Unlock()
		return
	}
	l.force.Add(1)
	l.closeMu.Unlock()

	l.counters.forcedSends.Add(1)
	go func() {
		defer l.force.Done()
		if err := l.sender.SendOne(context.Background(), entry); err != nil {
			l.counters.forcedFailures.Add(1)
			l.sink.Diagnostic(LevelWarning,
				fmt.Sprintf("forced log send failed: %v", err))
			l.logger.Warn("forced client log send failed", "error", err)
		}
	}()
}
