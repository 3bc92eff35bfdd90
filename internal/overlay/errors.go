// SPDX-License-Identifier: MIT

package overlay

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyLinked is returned if a destination already has a direct
	// redirect and strict linking was requested.
	ErrAlreadyLinked = errors.New("destination already linked")

	// ErrMissingVirtualAncestor is returned if an ancestor of the
	// destination exists neither virtually nor physically and strict
	// linking was requested.
	ErrMissingVirtualAncestor = errors.New("destination ancestor does not exist")

	// ErrSkippedEntryRejected is returned if an entry was omitted by a skip
	// rule and the link operation asked to fail on skips.
	ErrSkippedEntryRejected = errors.New("entry rejected by skip rule")

	// ErrInvalidDestination is returned for destinations that cannot be
	// expressed as a virtual path, like an empty path for a file link.
	ErrInvalidDestination = errors.New("invalid destination path")
)

// LinkError wraps a link failure with the destination it was aimed at, so
// overlay definitions can be fixed without engine-level debugging. Entry
// names the offending directory entry for skip rejections.
type LinkError struct {
	Destination string
	Entry       string
	Err         error
}

// Error implements the [error] interface.
func (e *LinkError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("link %s: entry %s: %v", e.Destination, e.Entry, e.Err)
	}

	return fmt.Sprintf("link %s: %v", e.Destination, e.Err)
}

// Is implements the [errors.Is] interface.
func (*LinkError) Is(other error) bool {
	_, ok := other.(*LinkError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *LinkError) Unwrap() error {
	return e.Err
}
