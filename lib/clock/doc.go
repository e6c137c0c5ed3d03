// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used throughout the
// shipping pipeline.
//
// Anything that would call time.Now, time.After, or time.NewTicker takes
// a Clock instead: the batch scheduler's interval ticker, the circuit
// breaker's open window, and the transport's retry backoff all run on
// it. Production wiring passes Real(); tests pass NewFake() and advance
// virtual time by hand, so interval and timeout behavior is asserted
// deterministically instead of with sleeps.
//
// The FakeClock choreography for code that registers timers from its own
// goroutine:
//
//	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	// ... start the goroutine under test ...
//	clk.WaitForTimers(1)            // it has registered its ticker
//	clk.Advance(5 * time.Second)    // the tick fires, deterministically
//
// WaitForTimers is the synchronization point: without it, Advance can
// run before the goroutine has registered anything and the tick is lost.
package clock
