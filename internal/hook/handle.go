// SPDX-License-Identifier: MIT

package hook

import (
	"os"
	"sync"
)

// Status describes the hook-injection state of a tracked process.
type Status int

const (
	// StatusPending means injection has not completed yet.
	StatusPending Status = iota

	// StatusAttached means the process observes the overlay.
	StatusAttached

	// StatusDetached means hooks were removed again.
	StatusDetached

	// StatusUnhooked means the process was deliberately spawned without
	// hooks, the blacklist escape hatch.
	StatusUnhooked
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAttached:
		return "attached"
	case StatusDetached:
		return "detached"
	case StatusUnhooked:
		return "not attached"
	default:
		return "invalid"
	}
}

// Handle represents one process attached to the session. Handles are
// independently lifecycled, a process exiting does not affect the session.
type Handle struct {
	mu      sync.Mutex
	pid     int
	status  Status
	spawned bool
	proc    *os.Process
}

// PID returns the operating system process identifier.
func (h *Handle) PID() int {
	return h.pid
}

// Status returns the current hook-injection status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.status
}

// Spawned reports whether the controller created the process, as opposed to
// the controlling process itself.
func (h *Handle) Spawned() bool {
	return h.spawned
}

// Wait blocks until the process exits and returns its exit code. Waiting on
// the controlling process's own handle returns [ErrNoProcess].
func (h *Handle) Wait() (int, error) {
	if h.proc == nil {
		return -1, ErrNoProcess
	}

	state, err := h.proc.Wait()
	if err != nil {
		return -1, err
	}

	return state.ExitCode(), nil
}

func (h *Handle) setStatus(status Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status = status
}
