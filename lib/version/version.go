// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at release build time. Fields left empty fall back
// to the VCS stamps Go embeds in the binary, so a plain `go build`
// still reports its commit.
var (
	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"

	// GitCommit is the short git SHA of the build.
	GitCommit = ""

	// GitDirty is "true" when the build had uncommitted changes.
	GitDirty = ""

	// BuildTime is the UTC timestamp of the build.
	BuildTime = ""
)

// Info returns the one-line version string.
func Info() string {
	commit, dirty, buildTime := buildStamps()
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, buildTime)
}

// Full returns Info plus the Go toolchain and target platform, for
// "longshore version" output.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the semantic version.
func Short() string {
	return Version
}

// buildStamps resolves commit, dirty flag, and build time from the
// ldflags overrides first, then from the binary's embedded VCS
// settings.
func buildStamps() (commit string, dirty bool, buildTime string) {
	commit, dirty, buildTime = GitCommit, GitDirty == "true", BuildTime
	if commit != "" && buildTime != "" {
		return commit, dirty, buildTime
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if commit == "" {
					commit = setting.Value
					if len(commit) > 12 {
						commit = commit[:12]
					}
				}
			case "vcs.modified":
				if GitDirty == "" {
					dirty = setting.Value == "true"
				}
			case "vcs.time":
				if buildTime == "" {
					buildTime = setting.Value
				}
			}
		}
	}
	return orUnknown(commit), dirty, orUnknown(buildTime)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
