// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"testing"
)

func TestContextFromKV(t *testing.T) {
	got := contextFromKV([]any{"path", "/api/users", "attempt", 3})
	if len(got) != 2 {
		t.Fatalf("expected 2 context keys, got %d: %v", len(got), got)
	}
	if got["path"] != "/api/users" {
		t.Errorf("path = %v", got["path"])
	}
	if got["attempt"] != 3 {
		t.Errorf("attempt = %v", got["attempt"])
	}
}

func TestContextFromKVEmpty(t *testing.T) {
	if got := contextFromKV(nil); got != nil {
		t.Errorf("expected nil context for no pairs, got %v", got)
	}
}

func TestContextFromKVTrailingKey(t *testing.T) {
	got := contextFromKV([]any{"orphan"})
	if got["orphan"] != "(missing)" {
		t.Errorf("trailing key value = %v, want (missing)", got["orphan"])
	}
}

func TestContextFromKVNonStringKey(t *testing.T) {
	got := contextFromKV([]any{42, "answer"})
	if got["42"] != "answer" {
		t.Errorf("non-string key not stringified: %v", got)
	}
}

func TestCloneContextIsolation(t *testing.T) {
	original := map[string]any{"requestUrl": "/health"}
	cloned := cloneContext(original)
	original["requestUrl"] = "/mutated"
	if cloned["requestUrl"] != "/health" {
		t.Errorf("clone shares storage with the original: %v", cloned)
	}
}

func TestCloneContextEmpty(t *testing.T) {
	if cloneContext(nil) != nil {
		t.Error("expected nil clone for nil context")
	}
	if cloneContext(map[string]any{}) != nil {
		t.Error("expected nil clone for empty context")
	}
}
