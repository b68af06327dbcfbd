package debugconfig

import "fmt"

// LaunchFileError reports a failure reading, merging or writing a launch
// document.
type LaunchFileError struct {
	// Path is the launch.json location, empty for in-memory merges
	Path string
	// Op is the failed step: read, parse, patch, format, lock, write
	Op string
	// Underlying error if any
	Err error
}

func (e *LaunchFileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("launch document %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("launch document %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *LaunchFileError) Unwrap() error {
	return e.Err
}
