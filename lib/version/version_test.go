// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

// setStamps overrides the ldflags variables for one test and restores
// them afterward.
func setStamps(t *testing.T, version, commit, dirty, buildTime string) {
	t.Helper()
	savedVersion, savedCommit := Version, GitCommit
	savedDirty, savedTime := GitDirty, BuildTime
	t.Cleanup(func() {
		Version, GitCommit = savedVersion, savedCommit
		GitDirty, BuildTime = savedDirty, savedTime
	})
	Version, GitCommit, GitDirty, BuildTime = version, commit, dirty, buildTime
}

func TestInfoUsesInjectedStamps(t *testing.T) {
	setStamps(t, "1.2.3", "abc1234", "false", "2026-02-10T08:00:00Z")
	want := "1.2.3 (abc1234, 2026-02-10T08:00:00Z)"
	if got := Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestInfoDirtySuffix(t *testing.T) {
	setStamps(t, "1.2.3", "abc1234", "true", "2026-02-10T08:00:00Z")
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, missing -dirty suffix", got)
	}

	GitDirty = "false"
	if got := Info(); strings.Contains(got, "-dirty") {
		t.Errorf("Info() = %q, unexpected -dirty suffix", got)
	}
}

// Without injected stamps Info must not render empty fields; the
// buildinfo fallback or "unknown" fills them.
func TestInfoFallbackNeverEmpty(t *testing.T) {
	setStamps(t, "0.1.0-dev", "", "", "")
	info := Info()
	if strings.Contains(info, "(,") || strings.Contains(info, ", )") {
		t.Errorf("Info() = %q, has empty stamp fields", info)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	full := Full()
	for _, want := range []string{"Go:", "Platform:"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() = %q, missing %q", full, want)
		}
	}
}

func TestShort(t *testing.T) {
	setStamps(t, "2.0.0", "abc1234", "false", "2026-02-10T08:00:00Z")
	if got := Short(); got != "2.0.0" {
		t.Errorf("Short() = %q, want 2.0.0", got)
	}
}
