// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

// Package clientlog defines the wire contract between shipping clients
// and the collector's client-log endpoint.
//
// A batch submission is a JSON array of Request objects POSTed in a
// single HTTP exchange; a forced (immediate) submission is a single
// Request object. The JSON field names are fixed by the collector and
// shared across client implementations on other platforms, so they are
// part of the public contract: renaming a field here is a breaking
// protocol change.
package clientlog
