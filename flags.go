// SPDX-License-Identifier: MIT

package veilfs

import (
	"github.com/veilfs/veilfs/internal/hook"
	"github.com/veilfs/veilfs/internal/overlay"
)

// LinkFlags is the combinable bit-field controlling link operations.
type LinkFlags = overlay.LinkFlags

// Link flag values. They are part of the engine boundary and must not
// change.
const (
	FlagFailIfExists   = overlay.FlagFailIfExists
	FlagMonitorChanges = overlay.FlagMonitorChanges
	FlagCreateTarget   = overlay.FlagCreateTarget
	FlagRecursive      = overlay.FlagRecursive
	FlagFailIfSkipped  = overlay.FlagFailIfSkipped
)

// ProcessSpec defines the parameters for spawning one hooked process.
type ProcessSpec = hook.Spec

// ProcessHandle represents one process attached to the session.
type ProcessHandle = hook.Handle

// ProcessStatus describes the hook-injection state of a tracked process.
type ProcessStatus = hook.Status

// Process status values.
const (
	StatusPending  = hook.StatusPending
	StatusAttached = hook.StatusAttached
	StatusDetached = hook.StatusDetached
	StatusUnhooked = hook.StatusUnhooked
)
