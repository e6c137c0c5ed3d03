// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// NewFake returns a FakeClock frozen at start. Time moves only through
// Advance; every After channel and Ticker registers a pending timer
// that fires when the clock passes its deadline.
//
// FakeClock is safe for concurrent use.
func NewFake(start time.Time) *FakeClock {
	c := &FakeClock{current: start}
	c.registered = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. The usual choreography
// is: start the goroutine under test, WaitForTimers until it has
// registered its timer, then Advance past the deadline.
type FakeClock struct {
	mu         sync.Mutex
	current    time.Time
	pending    []*pendingTimer
	registered *sync.Cond
}

// pendingTimer is one registered After channel or Ticker.
type pendingTimer struct {
	deadline time.Time
	ch       chan time.Time

	// interval is non-zero for tickers, which reschedule at
	// deadline+interval after each fire. One-shot timers are removed
	// once fired.
	interval time.Duration

	stopped bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel receiving the fire time once the clock has
// advanced by d. A non-positive d delivers immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}
	c.pending = append(c.pending, &pendingTimer{
		deadline: c.current.Add(d),
		ch:       ch,
	})
	c.registered.Broadcast()
	return ch
}

// NewTicker returns a Ticker firing every d of fake time. Panics if
// d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &pendingTimer{
		deadline: c.current.Add(d),
		ch:       make(chan time.Time, 1),
		interval: d,
	}
	c.pending = append(c.pending, timer)
	c.registered.Broadcast()

	return &Ticker{
		C: timer.ch,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			timer.stopped = true
		},
		reset: func(d time.Duration) {
			c.mu.Lock()
			defer c.mu.Unlock()
			timer.interval = d
			timer.deadline = c.current.Add(d)
			timer.stopped = false
			c.registered.Broadcast()
		},
	}
}

// Advance moves the clock forward by d and fires every timer whose
// deadline falls within the new time, in deadline order. Channel sends
// are non-blocking: a tick nobody has drained yet is dropped, matching
// time.Ticker. A ticker spanning several intervals fires once per
// interval.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		due := c.takeDue(target)
		if len(due) == 0 {
			return
		}
		slices.SortFunc(due, func(a, b *pendingTimer) int {
			return a.deadline.Compare(b.deadline)
		})
		for _, timer := range due {
			select {
			case timer.ch <- target:
			default:
			}
		}
	}
}

// takeDue removes due one-shot timers from the pending list,
// reschedules due tickers, and returns everything that should fire.
// Stopped tickers stay in the list so Reset can revive them.
func (c *FakeClock) takeDue(target time.Time) []*pendingTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due []*pendingTimer
	var keep []*pendingTimer
	for _, timer := range c.pending {
		if !timer.stopped && !timer.deadline.After(target) {
			due = append(due, timer)
			if timer.interval > 0 {
				timer.deadline = timer.deadline.Add(timer.interval)
				keep = append(keep, timer)
			}
			continue
		}
		keep = append(keep, timer)
	}
	c.pending = keep
	return due
}

// WaitForTimers blocks until at least n timers are pending. It closes
// the race between a goroutine registering its timer and the test
// advancing the clock.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.registered.Wait()
	}
}

// PendingCount returns the number of active pending timers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	n := 0
	for _, timer := range c.pending {
		if !timer.stopped {
			n++
		}
	}
	return n
}
