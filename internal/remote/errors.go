// SPDX-License-Identifier: MPL-2.0

package remote

import "fmt"

// CommandError reports a pre/main/post step that exited non-zero. Execution
// stops at the first failure; steps after it never ran.
type CommandError struct {
	// Phase is "pre", "main" or "post".
	Phase string
	// Index is the zero-based position within the phase list.
	Index int
	// Command is the substituted command text that failed.
	Command string
	// ExitCode is the remote exit status.
	ExitCode int
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s step %d (%q) exited with status %d", e.Phase, e.Index+1, e.Command, e.ExitCode)
}
