// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without an extra error line.
// When a command returns an ExitError, main exits with the given code
// and prints nothing; the command has already written its own output.
//
// Used where a non-zero exit is a valid outcome rather than a fault,
// like "longshore probe" reporting an unreachable collector.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the exit code. Main checks for this interface on
// returned errors to tell a handled non-zero exit from an unexpected
// error.
func (e *ExitError) ExitCode() int {
	return e.Code
}
