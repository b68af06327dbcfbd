package toolchain

import (
	"fmt"
	"strings"
)

// CommandError represents a subprocess that could not be started or exited
// with a non-zero status.
type CommandError struct {
	// Command is the executable that was invoked
	Command string
	// Args are the arguments passed to the command
	Args []string
	// ExitCode is the process exit code (-1 if it never started)
	ExitCode int
	// Stderr is the captured error output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	if e.Err != nil {
		return fmt.Sprintf("command %q failed (exit code %d): %v", cmdline, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %q failed (exit code %d): %s", cmdline, e.ExitCode, strings.TrimSpace(e.Stderr))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a subprocess killed after exceeding its timeout.
type TimeoutError struct {
	// Command is the executable that timed out
	Command string
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s", e.Command, e.Timeout)
}

// NotFoundError reports that a discovery source did not yield an executable.
type NotFoundError struct {
	// Source is the discovery source name
	Source string
	// Detail explains why the source came up empty
	Detail string
	// Underlying error if any
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Detail)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
