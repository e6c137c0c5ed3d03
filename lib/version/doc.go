// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the longshore
// binary.
//
// Release builds inject the package-level variables via -ldflags -X:
//
//	go build -ldflags "-X github.com/longshore-foundation/longshore/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Variables left empty fall back to the VCS settings Go embeds in the
// binary (vcs.revision, vcs.modified, vcs.time), so development builds
// made with a plain `go build` still report their commit. When neither
// source has a value the field renders as "unknown".
//
// Formatting functions produce human-readable version strings:
//
//   - [Info] -- "0.1.0-dev (abc1234, 2026-02-10T...)"
//   - [Full] -- Info plus Go version and GOOS/GOARCH
//   - [Short] -- just the version number
package version
