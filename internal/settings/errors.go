package settings

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is returned when writing a key that is not in KnownKeys.
var ErrUnknownKey = errors.New("unknown setting")

// ErrNoWorkspace is returned for workspace-scoped writes when the store has
// no workspace file.
var ErrNoWorkspace = errors.New("no workspace directory configured")

// ScopeError reports a failure reading or writing one scope's file.
type ScopeError struct {
	Scope Scope
	Path  string
	// Underlying error if any
	Err error
}

func (e *ScopeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s settings: %v", e.Scope, e.Err)
	}
	return fmt.Sprintf("%s settings (%s): %v", e.Scope, e.Path, e.Err)
}

func (e *ScopeError) Unwrap() error {
	return e.Err
}
