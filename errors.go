// SPDX-License-Identifier: MIT

package veilfs

import (
	"errors"

	"github.com/veilfs/veilfs/internal/hook"
	"github.com/veilfs/veilfs/internal/overlay"
)

var (
	// ErrAlreadyLinked is returned if a destination already has a direct
	// redirect and FlagFailIfExists was set.
	ErrAlreadyLinked = overlay.ErrAlreadyLinked

	// ErrMissingVirtualAncestor is returned if an ancestor of the
	// destination exists neither virtually nor physically and
	// FlagFailIfExists was set.
	ErrMissingVirtualAncestor = overlay.ErrMissingVirtualAncestor

	// ErrSkippedEntryRejected is returned if an entry was omitted by a
	// skip rule and FlagFailIfSkipped was set.
	ErrSkippedEntryRejected = overlay.ErrSkippedEntryRejected

	// ErrInvalidDestination is returned for destinations that cannot be
	// expressed as a virtual path.
	ErrInvalidDestination = overlay.ErrInvalidDestination

	// ErrNotConnected is returned for operations on a session that has
	// been disconnected or never activated.
	ErrNotConnected = errors.New("session not connected")

	// ErrInstanceNotFound is returned by connect if no instance with the
	// requested name exists.
	ErrInstanceNotFound = errors.New("vfs instance not found")
)

// LinkError identifies the destination and rule violated by a failed link
// operation.
type LinkError = overlay.LinkError

// SpawnError carries the OS-level code of a failed process creation.
type SpawnError = hook.SpawnError

// ConfigError describes an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the [error] interface.
func (e *ConfigError) Error() string {
	return "configuration: " + e.Field + ": " + e.Reason
}

// Is implements the [errors.Is] interface.
func (*ConfigError) Is(other error) bool {
	_, ok := other.(*ConfigError)
	return ok
}

// SessionError wraps a failed session activation. The session state stays
// untouched when it occurs.
type SessionError struct {
	Op  string
	Err error
}

// Error implements the [error] interface.
func (e *SessionError) Error() string {
	return "session " + e.Op + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*SessionError) Is(other error) bool {
	_, ok := other.(*SessionError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// DumpError wraps an engine-internal dump failure.
type DumpError struct {
	Err error
}

// Error implements the [error] interface.
func (e *DumpError) Error() string {
	return "dump: " + e.Err.Error()
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *DumpError) Unwrap() error {
	return e.Err
}
