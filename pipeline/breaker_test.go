// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"log/slog"
	"testing"
	"time"

	"github.com/longshore-foundation/longshore/lib/clock"
)

func newTestBreaker(clk clock.Clock, threshold int, timeout time.Duration) *circuitBreaker {
	return newCircuitBreaker(clk, threshold, timeout, slog.Default())
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 3, 30*time.Second)

	b.OnFailure()
	b.OnFailure()
	if !b.Allow() {
		t.Error("breaker denied a flush below the failure threshold")
	}
	if got := b.State(); got != "closed" {
		t.Errorf("state = %q, want closed", got)
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 3, 30*time.Second)

	for i := 0; i < 3; i++ {
		b.OnFailure()
	}
	if b.Allow() {
		t.Error("breaker granted a flush while open")
	}
	if got := b.State(); got != "open" {
		t.Errorf("state = %q, want open", got)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 3, 30*time.Second)

	b.OnFailure()
	b.OnFailure()
	b.OnSuccess()
	b.OnFailure()
	b.OnFailure()
	if !b.Allow() {
		t.Error("non-consecutive failures opened the breaker")
	}
}

func TestBreakerDeniesUntilWindowElapses(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 1, 30*time.Second)

	b.OnFailure()
	if b.Allow() {
		t.Fatal("breaker granted a flush immediately after opening")
	}
	clk.Advance(29 * time.Second)
	if b.Allow() {
		t.Fatal("breaker granted a flush before the window elapsed")
	}
	clk.Advance(time.Second)
	if !b.Allow() {
		t.Fatal("breaker denied the probe after the window elapsed")
	}
}

func TestBreakerSingleProbe(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 1, 30*time.Second)

	b.OnFailure()
	clk.Advance(30 * time.Second)

	if !b.Allow() {
		t.Fatal("probe denied")
	}
	if got := b.State(); got != "half-open" {
		t.Fatalf("state = %q, want half-open", got)
	}
	// The probe is outstanding; nobody else gets through.
	if b.Allow() {
		t.Error("second flush granted while probe outstanding")
	}
}

func TestBreakerProbeSuccessCloses(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 1, 30*time.Second)

	b.OnFailure()
	clk.Advance(30 * time.Second)
	b.Allow()
	b.OnSuccess()

	if got := b.State(); got != "closed" {
		t.Errorf("state after successful probe = %q, want closed", got)
	}
	if !b.Allow() {
		t.Error("closed breaker denied a flush")
	}
}

func TestBreakerProbeFailureRestartsWindow(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 1, 30*time.Second)

	b.OnFailure()
	clk.Advance(30 * time.Second)
	b.Allow()
	b.OnFailure()

	if got := b.State(); got != "open" {
		t.Fatalf("state after failed probe = %q, want open", got)
	}
	// The window restarts from the probe failure, not the first opening.
	clk.Advance(29 * time.Second)
	if b.Allow() {
		t.Error("breaker granted a flush inside the restarted window")
	}
	clk.Advance(time.Second)
	if !b.Allow() {
		t.Error("breaker denied the probe after the restarted window")
	}
}

func TestBreakerLateFailureWhileOpenKeepsWindow(t *testing.T) {
	clk := clock.NewFake(epoch)
	b := newTestBreaker(clk, 1, 30*time.Second)

	b.OnFailure()
	clk.Advance(20 * time.Second)
	// A failure reported while already open must not restart the window.
	b.OnFailure()
	clk.Advance(10 * time.Second)
	if !b.Allow() {
		t.Error("late failure while open moved the window")
	}
}
