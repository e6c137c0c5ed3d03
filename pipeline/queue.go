// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "sync"

// boundedQueue is the FIFO staging area between the facade and the
// scheduler. It holds at most max entries; enqueueing into a full
// queue silently evicts the oldest entry, keeping the newest telemetry
// when the collector cannot keep up. Enqueue never blocks and never
// fails.
type boundedQueue struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	evicted uint64
}

// newBoundedQueue panics on a non-positive capacity: that is a
// construction bug, not a runtime condition.
func newBoundedQueue(max int) *boundedQueue {
	if max <= 0 {
		panic("pipeline: non-positive queue capacity")
	}
	return &boundedQueue{max: max}
}

// Enqueue appends the entry, evicting the oldest entry first when the
// queue is full. Reports whether an eviction happened.
func (q *boundedQueue) Enqueue(entry Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	evicted := false
	if len(q.entries) >= q.max {
		// Clear the slot so the backing array does not pin the
		// evicted entry's context and error.
		q.entries[0] = Entry{}
		q.entries = q.entries[1:]
		q.evicted++
		evicted = true
	}
	q.entries = append(q.entries, entry)
	return evicted
}

// DrainUpTo removes and returns up to n oldest entries in FIFO order.
// Returns nil when the queue is empty.
func (q *boundedQueue) DrainUpTo(n int) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 || n <= 0 {
		return nil
	}
	if n > len(q.entries) {
		n = len(q.entries)
	}
	batch := make([]Entry, n)
	copy(batch, q.entries[:n])
	for i := 0; i < n; i++ {
		q.entries[i] = Entry{}
	}
	q.entries = q.entries[n:]
	return batch
}

// Len returns the current queue depth.
func (q *boundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Evicted returns the total number of entries dropped to make room.
func (q *boundedQueue) Evicted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.evicted
}
