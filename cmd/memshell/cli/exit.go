// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError carries a process exit status out of the console. The exit
// verb returns one when given a status; main exits with Code without
// printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this method to tell
// a requested exit from a startup failure.
func (e *ExitError) ExitCode() int {
	return e.Code
}
