// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// consoleSink mirrors entries to local writers. It is the one output
// that always happens: remote enablement, queue pressure, and breaker
// state have no influence here. Write errors from the destination
// writers are swallowed; a broken stdout must not take the host
// application down with it.
type consoleSink struct {
	out  io.Writer // verbose, debug, info
	warn io.Writer // warning
	err  io.Writer // error, critical
	min  Level
}

func newConsoleSink(out, warn, err io.Writer, min Level) *consoleSink {
	return &consoleSink{out: out, warn: warn, err: err, min: min}
}

// Write formats the entry and writes it to the channel for its level.
// Entries below the sink's minimum level are skipped.
func (s *consoleSink) Write(entry Entry) {
	if entry.Level < s.min {
		return
	}
	var b strings.Builder
	b.WriteString(entry.Time.UTC().Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	for _, key := range sortedKeys(entry.Context) {
		fmt.Fprintf(&b, " %s=%v", key, entry.Context[key])
	}
	if entry.Err != nil {
		fmt.Fprintf(&b, " error=%q", entry.Err.Error())
	}
	b.WriteByte('\n')
	io.WriteString(s.writerFor(entry.Level), b.String())
}

// Diagnostic writes a pipeline-internal line (batch drops, forced-send
// failures) on the channel for the given level. Diagnostics carry a
// fixed prefix, no timestamp from the entry stream, and are never
// shipped.
func (s *consoleSink) Diagnostic(level Level, message string) {
	fmt.Fprintf(s.writerFor(level), "%s longshore: %s\n",
		strings.ToUpper(level.String()), message)
}

func (s *consoleSink) writerFor(level Level) io.Writer {
	switch {
	case level >= LevelError:
		return s.err
	case level == LevelWarning:
		return s.warn
	default:
		return s.out
	}
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
