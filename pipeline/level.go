// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"strings"

	"github.com/longshore-foundation/longshore/lib/schema/clientlog"
)

// Level is the severity of a log entry. Levels are totally ordered and
// compare as integers. The zero value means "unset"; option defaulting
// replaces it at construction time.
type Level int

const (
	LevelVerbose Level = iota + 1
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// String returns the canonical lowercase name.
func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// WireName returns the collector's logLevel string for this level.
// Levels outside the known range fall back to Information so a
// malformed entry still ships rather than failing serialization.
func (l Level) WireName() string {
	switch l {
	case LevelVerbose:
		return clientlog.LevelVerbose
	case LevelDebug:
		return clientlog.LevelDebug
	case LevelInfo:
		return clientlog.LevelInfo
	case LevelWarning:
		return clientlog.LevelWarning
	case LevelError:
		return clientlog.LevelError
	case LevelCritical:
		return clientlog.LevelCritical
	default:
		return clientlog.LevelInfo
	}
}

// ParseLevel maps a name to its Level, case-insensitively. Accepts the
// canonical names plus the aliases "information" (info), "warn"
// (warning), and "fatal" (critical).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	case "info", "information":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("pipeline: unknown level %q", s)
	}
}
