// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/longshore-foundation/longshore/lib/clock"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeSender records batch and forced sends and returns scripted
// errors. The batchCalled and singleCalled channels signal after every
// invocation so tests can synchronize without polling.
type fakeSender struct {
	mu          sync.Mutex
	batches     [][]Entry
	singles     []Entry
	batchErrs   []error // per-call script, nil after exhaustion
	singleErrs  []error
	inFlight    int
	maxInFlight int

	// When non-nil, SendBatch and SendOne block on the gate after
	// recording the call. Close the gate to release them all.
	gate chan struct{}

	batchCalled  chan struct{}
	singleCalled chan struct{}
}

func newFakeSender(batchErrs ...error) *fakeSender {
	return &fakeSender{
		batchErrs:    batchErrs,
		batchCalled:  make(chan struct{}, 64),
		singleCalled: make(chan struct{}, 64),
	}
}

func (f *fakeSender) SendBatch(ctx context.Context, entries []Entry) error {
	f.mu.Lock()
	batch := make([]Entry, len(entries))
	copy(batch, entries)
	f.batches = append(f.batches, batch)
	index := len(f.batches) - 1
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	gate := f.gate
	f.mu.Unlock()
	f.batchCalled <- struct{}{}

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if index < len(f.batchErrs) {
		return f.batchErrs[index]
	}
	return nil
}

func (f *fakeSender) SendOne(ctx context.Context, entry Entry) error {
	f.mu.Lock()
	f.singles = append(f.singles, entry)
	index := len(f.singles) - 1
	gate := f.gate
	f.mu.Unlock()
	f.singleCalled <- struct{}{}

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if index < len(f.singleErrs) {
		return f.singleErrs[index]
	}
	return nil
}

func (f *fakeSender) waitForBatches(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-f.batchCalled:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for batch send %d of %d", i+1, count)
		}
	}
}

func (f *fakeSender) waitForSingles(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-f.singleCalled:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for forced send %d of %d", i+1, count)
		}
	}
}

func (f *fakeSender) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeSender) batch(t *testing.T, index int) []Entry {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if index >= len(f.batches) {
		t.Fatalf("batch %d not sent, have %d", index, len(f.batches))
	}
	return f.batches[index]
}

func (f *fakeSender) single(t *testing.T, index int) Entry {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if index >= len(f.singles) {
		t.Fatalf("forced send %d not made, have %d", index, len(f.singles))
	}
	return f.singles[index]
}

func (f *fakeSender) maxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// syncBuffer is a bytes.Buffer safe for writes from the scheduler
// goroutine while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// consoleBuffers bundles the three console channels.
type consoleBuffers struct {
	out, warn, err syncBuffer
}

func testOptions(sender BatchSender, clk clock.Clock, console *consoleBuffers) Options {
	return Options{
		EnableRemote:        true,
		MinimumLevel:        LevelInfo,
		EndpointURL:         "http://collector.internal/logs",
		BatchSize:           5,
		BatchInterval:       time.Hour,
		MaxQueueSize:        100,
		BreakerThreshold:    5,
		BreakerTimeout:      30 * time.Second,
		RequestTimeout:      time.Minute,
		ConsoleMinimumLevel: LevelVerbose,
		Clock:               clk,
		Sender:              sender,
		ConsoleOut:          &console.out,
		ConsoleWarn:         &console.warn,
		ConsoleErr:          &console.err,
		Diagnostics:         slog.Default(),
	}
}

func mustClose(t *testing.T, l *Logger) {
	t.Helper()
	if err := l.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSizeTriggerShipsFullBatch(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	l, err := New(testOptions(sender, clock.NewFake(epoch), console))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		l.Info(fmt.Sprintf("entry-%d", i))
	}
	sender.waitForBatches(t, 1)
	mustClose(t, l)

	if got := sender.batchCount(); got != 1 {
		t.Fatalf("sent %d batches, want 1", got)
	}
	batch := sender.batch(t, 0)
	if len(batch) != 5 {
		t.Fatalf("batch carries %d entries, want 5", len(batch))
	}
	for i, entry := range batch {
		if want := fmt.Sprintf("entry-%d", i); entry.Message != want {
			t.Errorf("batch position %d holds %q, want %q", i, entry.Message, want)
		}
	}

	stats := l.Stats()
	if stats.Enqueued != 5 || stats.BatchesShipped != 1 || stats.EntriesShipped != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.QueueDepth != 0 {
		t.Errorf("queue depth = %d after full flush", stats.QueueDepth)
	}
}

func TestIntervalTriggerShipsPartialBatch(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	clk := clock.NewFake(epoch)
	opts := testOptions(sender, clk, console)
	opts.BatchSize = 10
	opts.BatchInterval = 5 * time.Second
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// The scheduler registers its ticker on startup; wait for it so
	// the Advance below cannot outrun the registration.
	clk.WaitForTimers(1)

	l.Info("one")
	l.Info("two")
	l.Info("three")
	clk.Advance(5 * time.Second)

	sender.waitForBatches(t, 1)
	mustClose(t, l)

	batch := sender.batch(t, 0)
	if len(batch) != 3 {
		t.Fatalf("interval flush carried %d entries, want 3", len(batch))
	}
	if batch[0].Message != "one" || batch[2].Message != "three" {
		t.Errorf("batch out of order: %v", batch)
	}
}

func TestEmptyTickSendsNothing(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	clk := clock.NewFake(epoch)
	opts := testOptions(sender, clk, console)
	opts.BatchInterval = 5 * time.Second
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clk.WaitForTimers(1)

	// Tick on an empty queue, then ship a real batch through the size
	// trigger. Only the real batch may arrive.
	clk.Advance(5 * time.Second)
	for i := 0; i < 5; i++ {
		l.Info("real")
	}
	sender.waitForBatches(t, 1)
	mustClose(t, l)

	if got := sender.batchCount(); got != 1 {
		t.Fatalf("sent %d batches, want 1", got)
	}
	if got := len(sender.batch(t, 0)); got != 5 {
		t.Errorf("batch carries %d entries, want 5", got)
	}
}

func TestEntriesDuringFlushGoToNextBatch(t *testing.T) {
	sender := newFakeSender()
	sender.gate = make(chan struct{})
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.BatchSize = 2
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("first-1")
	l.Info("first-2")
	// The flush is now blocked inside SendBatch on the gate.
	sender.waitForBatches(t, 1)

	l.Info("second-1")
	l.Info("second-2")
	close(sender.gate)

	sender.waitForBatches(t, 1)
	mustClose(t, l)

	if got := sender.batchCount(); got != 2 {
		t.Fatalf("sent %d batches, want 2", got)
	}
	first, second := sender.batch(t, 0), sender.batch(t, 1)
	if first[0].Message != "first-1" || first[1].Message != "first-2" {
		t.Errorf("first batch = %v", first)
	}
	if second[0].Message != "second-1" || second[1].Message != "second-2" {
		t.Errorf("second batch = %v", second)
	}
	if got := sender.maxConcurrent(); got != 1 {
		t.Errorf("max concurrent flushes = %d, want 1", got)
	}
}

func TestRemoteDisabledConsoleOnly(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.EnableRemote = false
	opts.EndpointURL = ""
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 10; i++ {
		l.Error("local only")
	}
	mustClose(t, l)

	if got := sender.batchCount(); got != 0 {
		t.Errorf("remote disabled but %d batches sent", got)
	}
	stats := l.Stats()
	if stats.Enqueued != 0 || stats.QueueDepth != 0 {
		t.Errorf("entries queued with remote disabled: %+v", stats)
	}
	if got := strings.Count(console.err.String(), "local only"); got != 10 {
		t.Errorf("console received %d lines, want 10", got)
	}
}

func TestMinimumLevelGatesRemoteNotConsole(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.MinimumLevel = LevelWarning
	opts.BatchSize = 1
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("chatter")
	l.Warning("kept")
	sender.waitForBatches(t, 1)
	mustClose(t, l)

	if got := sender.batchCount(); got != 1 {
		t.Fatalf("sent %d batches, want 1", got)
	}
	batch := sender.batch(t, 0)
	if len(batch) != 1 || batch[0].Message != "kept" {
		t.Errorf("batch = %v", batch)
	}
	if l.Stats().Enqueued != 1 {
		t.Errorf("enqueued = %d, want 1", l.Stats().Enqueued)
	}
	// The console mirrors everything regardless of the remote filter.
	if !strings.Contains(console.out.String(), "chatter") {
		t.Error("filtered entry missing from console")
	}
	if !strings.Contains(console.warn.String(), "kept") {
		t.Error("shipped entry missing from console")
	}
}

func TestOldestEvictedUnderPressure(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.MaxQueueSize = 2
	opts.BatchSize = 100
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("oldest")
	l.Info("middle")
	l.Info("newest")

	stats := l.Stats()
	if stats.QueueDepth != 2 {
		t.Errorf("queue depth = %d, want 2", stats.QueueDepth)
	}
	if stats.Evicted != 1 {
		t.Errorf("evicted = %d, want 1", stats.Evicted)
	}
	if stats.Enqueued != 3 {
		t.Errorf("enqueued = %d, want 3", stats.Enqueued)
	}

	// Close drains the survivors; the evicted entry must not be among
	// them.
	mustClose(t, l)
	batch := sender.batch(t, 0)
	if len(batch) != 2 || batch[0].Message != "middle" || batch[1].Message != "newest" {
		t.Errorf("drained batch = %v", batch)
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.BatchSize = 10
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("held-1")
	l.Info("held-2")
	l.Info("held-3")
	mustClose(t, l)

	if got := sender.batchCount(); got != 1 {
		t.Fatalf("drain sent %d batches, want 1", got)
	}
	batch := sender.batch(t, 0)
	if len(batch) != 3 {
		t.Fatalf("drained %d entries, want 3", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i].Sequence <= batch[i-1].Sequence {
			t.Errorf("sequence not increasing: %d then %d", batch[i-1].Sequence, batch[i].Sequence)
		}
	}
	if got := l.Stats().EntriesShipped; got != 3 {
		t.Errorf("entries shipped = %d, want 3", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	l, err := New(testOptions(sender, clock.NewFake(epoch), console))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustClose(t, l)
	mustClose(t, l)
}

func TestLoggingAfterCloseIsConsoleOnly(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	l, err := New(testOptions(sender, clock.NewFake(epoch), console))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustClose(t, l)

	l.Info("after close")
	if got := l.Stats().Enqueued; got != 0 {
		t.Errorf("entry enqueued after close: %d", got)
	}
	if !strings.Contains(console.out.String(), "after close") {
		t.Error("console line missing after close")
	}
}

func TestFailedBatchDroppedWithDiagnostic(t *testing.T) {
	sender := newFakeSender(errors.New("collector melted"))
	console := &consoleBuffers{}
	l, err := New(testOptions(sender, clock.NewFake(epoch), console))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		l.Info("doomed")
	}
	sender.waitForBatches(t, 1)
	mustClose(t, l)

	stats := l.Stats()
	if stats.TransportFailures != 1 {
		t.Errorf("transport failures = %d, want 1", stats.TransportFailures)
	}
	if stats.QueueDepth != 0 {
		t.Errorf("failed batch re-queued: depth %d", stats.QueueDepth)
	}
	if stats.EntriesShipped != 0 {
		t.Errorf("entries shipped = %d, want 0", stats.EntriesShipped)
	}
	want := "dropping 5 log entries, shipment failed: collector melted"
	if !strings.Contains(console.warn.String(), want) {
		t.Errorf("missing diagnostic %q in %q", want, console.warn.String())
	}
}

func TestForceBypassesFilterAndRemoteSwitch(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.EnableRemote = false
	opts.EndpointURL = ""
	opts.MinimumLevel = LevelCritical
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Debug is below the minimum and remote is off; a forced send goes
	// out anyway.
	l.ForceDebug("get this out", "stage", "shutdown")
	sender.waitForSingles(t, 1)
	mustClose(t, l)

	entry := sender.single(t, 0)
	if entry.Level != LevelDebug || entry.Message != "get this out" {
		t.Errorf("forced entry = %+v", entry)
	}
	if entry.Context["stage"] != "shutdown" {
		t.Errorf("forced context = %v", entry.Context)
	}
	if got := sender.batchCount(); got != 0 {
		t.Errorf("forced send used the batch path: %d batches", got)
	}
	stats := l.Stats()
	if stats.ForcedSends != 1 || stats.Enqueued != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestForcedFailureAbsorbed(t *testing.T) {
	sender := newFakeSender()
	sender.singleErrs = []error{errors.New("dial tcp: timeout")}
	console := &consoleBuffers{}
	l, err := New(testOptions(sender, clock.NewFake(epoch), console))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.ForceError("must arrive")
	// Close waits for the forced goroutine, so its failure accounting
	// is visible afterwards.
	mustClose(t, l)

	stats := l.Stats()
	if stats.ForcedSends != 1 || stats.ForcedFailures != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !strings.Contains(console.warn.String(), "forced log send failed: dial tcp: timeout") {
		t.Errorf("missing forced-failure diagnostic: %q", console.warn.String())
	}
}

func TestCloseWaitsForForcedSends(t *testing.T) {
	sender := newFakeSender()
	sender.gate = make(chan struct{})
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.EnableRemote = false
	opts.EndpointURL = ""
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.ForceInfo("in flight")
	sender.waitForSingles(t, 1)

	closed := make(chan error, 1)
	go func() {
		closed <- l.Close(context.Background())
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a forced send was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(sender.gate)
	if err := <-closed; err != nil {
		t.Fatalf("Close after release: %v", err)
	}
}

func TestCloseHonorsContext(t *testing.T) {
	sender := newFakeSender()
	sender.gate = make(chan struct{})
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.EnableRemote = false
	opts.EndpointURL = ""
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.ForceInfo("straggler")
	sender.waitForSingles(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Close(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Close error = %v, want context.Canceled in chain", err)
	}
	close(sender.gate)
}

func TestForcedSendAfterCloseDropsToConsole(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.EnableRemote = false
	opts.EndpointURL = ""
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustClose(t, l)

	l.ForceCritical("too late")
	if got := l.Stats().ForcedSends; got != 0 {
		t.Errorf("forced send counted after close: %d", got)
	}
	if !strings.Contains(console.err.String(), "too late") {
		t.Error("console line missing for post-close forced send")
	}
}

func TestCtxVariantsCarryContextAndError(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.BatchSize = 1
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cause := errors.New("row not found")
	l.ErrorCtx("lookup failed", map[string]any{
		FieldRequestURL: "/api/users/7",
		"table":         "users",
	}, cause)
	sender.waitForBatches(t, 1)
	mustClose(t, l)

	batch := sender.batch(t, 0)
	entry := batch[0]
	if entry.Err != cause {
		t.Errorf("entry error = %v", entry.Err)
	}
	if entry.Context[FieldRequestURL] != "/api/users/7" || entry.Context["table"] != "users" {
		t.Errorf("entry context = %v", entry.Context)
	}
}

func TestCtxMapIsCopied(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.BatchSize = 10
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := map[string]any{"state": "before"}
	l.InfoCtx("captured", ctx, nil)
	ctx["state"] = "after"
	mustClose(t, l)

	batch := sender.batch(t, 0)
	if batch[0].Context["state"] != "before" {
		t.Errorf("context mutated after capture: %v", batch[0].Context)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	console := &consoleBuffers{}
	opts := testOptions(newFakeSender(), clock.NewFake(epoch), console)
	opts.EndpointURL = ""
	if _, err := New(opts); err == nil {
		t.Fatal("New accepted remote shipping without an endpoint")
	}
}

func TestConcurrentLoggingIsSafe(t *testing.T) {
	sender := newFakeSender()
	console := &consoleBuffers{}
	opts := testOptions(sender, clock.NewFake(epoch), console)
	opts.BatchSize = 10
	opts.MaxQueueSize = 1000
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				l.Info("concurrent", "worker", worker)
			}
		}(w)
	}
	wg.Wait()
	mustClose(t, l)

	stats := l.Stats()
	if stats.Enqueued != 200 {
		t.Errorf("enqueued = %d, want 200", stats.Enqueued)
	}
	if stats.EntriesShipped+uint64(stats.QueueDepth) != 200 {
		t.Errorf("shipped %d + depth %d != 200", stats.EntriesShipped, stats.QueueDepth)
	}
}
