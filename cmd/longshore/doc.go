// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

// The longshore command ships client log lines to a collector over
// HTTP. It wraps the pipeline package in a small CLI: "ship" pumps
// stdin or files through the batching pipeline, "probe" delivers a
// single forced entry to verify connectivity, and "version" prints
// build information.
package main
