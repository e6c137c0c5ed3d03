// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/longshore-foundation/longshore/lib/clock"
)

type breakerState uint8

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// circuitBreaker gates the scheduler's access to the network. Closed
// grants every flush; threshold consecutive batch failures open it;
// while open, flushes are denied outright so a dead collector costs
// nothing but the denied check. Once the open window has elapsed, a
// single probe flush is admitted: its outcome decides between closing
// the breaker and restarting the window.
type circuitBreaker struct {
	clk       clock.Clock
	threshold int
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	state    breakerState
	failures int // consecutive, while closed
	openedAt time.Time
	probing  bool // half-open probe outstanding
}

func newCircuitBreaker(clk clock.Clock, threshold int, timeout time.Duration, logger *slog.Logger) *circuitBreaker {
	return &circuitBreaker{
		clk:       clk,
		threshold: threshold,
		timeout:   timeout,
		logger:    logger,
	}
}

// Allow reports whether a flush may touch the network right now. In
// the open state the first call after the timeout window flips to
// half-open and is granted as the probe; everyone else is denied until
// the probe reports through OnSuccess or OnFailure.
func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if b.clk.Now().Sub(b.openedAt) < b.timeout {
			return false
		}
		b.state = breakerHalfOpen
		b.probing = true
		b.logger.Info("circuit breaker half-open, probing collector")
		return true
	case breakerHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return false
	}
}

// OnSuccess records a successful batch. It resets the consecutive
// failure count and, after a successful probe, closes the breaker.
func (b *circuitBreaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.logger.Info("circuit breaker closed, collector recovered")
	}
	b.state = breakerClosed
	b.failures = 0
	b.probing = false
}

// OnFailure records a failed batch. Reaching the threshold while
// closed opens the breaker; a failed probe re-opens it with a fresh
// timeout window.
func (b *circuitBreaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.state = breakerOpen
			b.openedAt = b.clk.Now()
			b.logger.Warn("circuit breaker opened",
				"consecutive_failures", b.failures,
				"retry_after", b.timeout)
		}
	case breakerHalfOpen:
		b.state = breakerOpen
		b.openedAt = b.clk.Now()
		b.probing = false
		b.logger.Warn("circuit breaker re-opened, probe failed",
			"retry_after", b.timeout)
	case breakerOpen:
		// A failure reported after the breaker has already opened
		// must not move the window.
	}
}

// State returns the current state name for Stats.
func (b *circuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}
