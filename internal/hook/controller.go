// SPDX-License-Identifier: MIT

// Package hook implements the hooked-process controller: it spawns child
// processes that observe the overlay, or registers the controlling process
// itself, and tracks which processes are part of the VFS session.
package hook

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Environment variables pushed into hooked children. The instance marker
// tells the hook library which VFS instance to attach to, the preload list
// is how the hook and any forced libraries enter the process before its own
// code runs.
const (
	InstanceEnv = "VEILFS_INSTANCE"
	PreloadEnv  = "LD_PRELOAD"
)

// Rules is the registry view the controller consults during spawning.
type Rules interface {
	Blacklisted(executable string) bool
	ForcedLibraries(process string) []string
}

// Controller spawns hooked processes for one VFS instance and tracks their
// handles.
type Controller struct {
	mu       sync.Mutex
	instance string
	rules    Rules
	logger   *logrus.Logger
	handles  []*Handle
}

// NewController creates a [Controller] for the named instance.
func NewController(instance string, rules Rules, logger *logrus.Logger) *Controller {
	return &Controller{
		instance: instance,
		rules:    rules,
		logger:   logger,
	}
}

// Spawn creates a new process according to spec. The child starts paused
// and is resumed only after the hook state is in place, so no unhooked
// filesystem access can occur. Blacklisted executables spawn successfully
// but run unhooked. Spawn is not cancellable once issued and has no
// timeout, a caller-level timeout must be layered on top if required.
func (c *Controller) Spawn(spec Spec) (*Handle, error) {
	args, err := spec.args()
	if err != nil {
		return nil, &SpawnError{Err: err}
	}

	hooked := !c.rules.Blacklisted(filepath.Base(spec.Path))

	cmd := &exec.Cmd{
		Path:        spec.Path,
		Args:        args,
		Dir:         spec.Dir,
		Env:         spec.Env,
		Stdin:       spec.Stdin,
		Stdout:      spec.Stdout,
		Stderr:      spec.Stderr,
		ExtraFiles:  spec.InheritFiles,
		SysProcAttr: spec.Attributes,
	}

	if hooked {
		cmd.Env = c.hookEnviron(spec.Env, filepath.Base(spec.Path))

		if err := c.startHooked(cmd, spec.Delay); err != nil {
			return nil, spawnError(err)
		}
	} else if err := cmd.Start(); err != nil {
		return nil, spawnError(err)
	}

	handle := &Handle{
		pid:     cmd.Process.Pid,
		spawned: true,
		proc:    cmd.Process,
		status:  StatusUnhooked,
	}
	if hooked {
		handle.status = StatusAttached
	}

	c.track(handle)
	c.logger.Infof("spawned pid %d (%s): %s", handle.pid, handle.Status(), spec.Path)

	return handle, nil
}

// startHooked runs the paused-start sequence. All trace operations on the
// child must come from the same OS thread, so the goroutine is pinned for
// the duration.
func (c *Controller) startHooked(cmd *exec.Cmd, delay time.Duration) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := startPaused(cmd); err != nil {
		return err
	}

	// The process delay is a deliberate stall while the child is still
	// paused, giving external tooling a window to attach.
	if delay > 0 {
		time.Sleep(delay)
	}

	if err := resume(cmd.Process.Pid); err != nil {
		c.logger.Warnf("resume pid %d: %v", cmd.Process.Pid, err)
	}

	return nil
}

// HookCurrent registers the controlling process itself as part of the
// session.
func (c *Controller) HookCurrent() *Handle {
	handle := &Handle{
		pid:    os.Getpid(),
		status: StatusAttached,
	}

	c.track(handle)
	c.logger.Infof("hooked own process pid %d", handle.pid)

	return handle
}

// Processes returns the handles of all processes tracked so far.
func (c *Controller) Processes() []*Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	handles := make([]*Handle, len(c.handles))
	copy(handles, c.handles)

	return handles
}

// Detach marks all tracked processes as detached. Called on session
// disconnect.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, handle := range c.handles {
		if handle.Status() == StatusAttached {
			handle.setStatus(StatusDetached)
		}
	}
}

func (c *Controller) track(handle *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handles = append(c.handles, handle)
}

// hookEnviron builds the child environment: the instance marker plus all
// forced libraries merged into the preload list. A nil base inherits the
// parent environment.
func (c *Controller) hookEnviron(base []string, process string) []string {
	if base == nil {
		base = os.Environ()
	}

	preload := c.rules.ForcedLibraries(process)

	env := make([]string, 0, len(base)+2)

	for _, kv := range base {
		if name, value, found := strings.Cut(kv, "="); found && name == PreloadEnv {
			if value != "" {
				preload = append(preload, strings.Split(value, ":")...)
			}

			continue
		}

		env = append(env, kv)
	}

	env = append(env, InstanceEnv+"="+c.instance)

	if len(preload) > 0 {
		env = append(env, PreloadEnv+"="+strings.Join(preload, ":"))
	}

	return env
}

func spawnError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &SpawnError{OSCode: int(errno), Err: err}
	}

	return &SpawnError{Err: err}
}
