// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "context"

// BatchSender is the seam between the pipeline and the network. The
// scheduler ships drained batches through SendBatch; forced sends go
// through SendOne. The production implementation is the HTTP transport
// constructed from Options; tests substitute fakes via Options.Sender.
//
// SendBatch owns its own retry policy. When it returns an error the
// batch is gone: the scheduler drops it and reports the failure to the
// circuit breaker. SendOne must perform exactly one exchange.
type BatchSender interface {
	SendBatch(ctx context.Context, entries []Entry) error
	SendOne(ctx context.Context, entry Entry) error
}
