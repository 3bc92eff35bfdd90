// SPDX-License-Identifier: MIT

package hook

import (
	"errors"
	"fmt"
)

// ErrNoProcess is returned for operations on a handle without an underlying
// process.
var ErrNoProcess = errors.New("no underlying process")

// SpawnError wraps a process-creation failure with the OS-level error code,
// if one could be determined.
type SpawnError struct {
	OSCode int
	Err    error
}

// Error implements the [error] interface.
func (e *SpawnError) Error() string {
	if e.OSCode != 0 {
		return fmt.Sprintf("spawn failed (os code %d): %v", e.OSCode, e.Err)
	}

	return "spawn failed: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*SpawnError) Is(other error) bool {
	_, ok := other.(*SpawnError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SpawnError) Unwrap() error {
	return e.Err
}
