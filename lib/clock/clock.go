// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source injected into every component with
// time-dependent behavior: batch interval ticks, breaker open windows,
// and retry backoff. Production code receives Real(); tests receive
// NewFake() and drive time explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. A non-positive d delivers immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks on C every d.
	// Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers periodic ticks on C. C has capacity 1: when the
// consumer falls behind, ticks are dropped, matching time.Ticker.
type Ticker struct {
	C <-chan time.Time

	stop  func()
	reset func(time.Duration)
}

// Stop turns the ticker off. C is not closed and receives no further
// ticks after Stop returns.
func (t *Ticker) Stop() { t.stop() }

// Reset restarts the tick cycle with interval d. The next tick arrives
// a full d after the call, discarding whatever remained of the previous
// interval.
func (t *Ticker) Reset(d time.Duration) { t.reset(d) }
