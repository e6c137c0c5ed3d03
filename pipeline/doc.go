// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline is a resilient client-side log shipper. Programs log
// through a small facade; every entry is echoed to the local console
// and, independently, considered for remote shipment to a collector.
//
// The shipping path is built to absorb every failure mode a remote
// collector can present without ever surfacing one to the host
// application:
//
//	Logger ──► console sink              every admitted entry, always
//	   └────► level filter              enablement + minimum level
//	            └────► bounded queue    FIFO, drop-oldest on overflow
//	                     └────► scheduler   size or interval trigger
//	                              └────► circuit breaker
//	                                       └────► HTTP transport
//
// The scheduler is a single goroutine, so at most one flush is ever in
// flight; entries arriving during a flush accumulate for the next
// batch. Each attempt drains at most one batch from the queue and
// POSTs it as a JSON array, and a flush keeps attempting while the
// queue still holds a full batch. Transient failures are retried with
// exponential backoff before the batch is dropped. Consecutive batch
// failures open the circuit breaker, which silences the network path
// entirely until a timed half-open probe succeeds.
//
// Forced sends (Logger.ForceError and friends) are the escape hatch
// for must-ship diagnostics: they bypass the filter, queue, scheduler,
// and breaker, and perform exactly one immediate HTTP exchange each.
//
// No method on Logger panics or returns an error. Failures show up
// only as console diagnostics, structured logs on the injected
// slog.Logger, and Stats counters. Time is injected through lib/clock,
// so interval, breaker, and backoff behavior is testable against a
// fake clock.
package pipeline
