// SPDX-License-Identifier: MIT

package hook

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// startPaused starts the command stopped at its first instruction after
// exec, so hook state can be put in place before any of the child's own
// code runs.
func startPaused(cmd *exec.Cmd) error {
	attr := &syscall.SysProcAttr{}
	if cmd.SysProcAttr != nil {
		// Do not mutate the caller's attributes.
		copied := *cmd.SysProcAttr
		attr = &copied
	}

	attr.Ptrace = true
	cmd.SysProcAttr = attr

	if err := cmd.Start(); err != nil {
		return err
	}

	// The child stops with SIGTRAP once it reaches its entry point. Reap
	// the stop event so resume finds it in trace-stop.
	var status unix.WaitStatus

	if _, err := unix.Wait4(cmd.Process.Pid, &status, 0, nil); err != nil {
		// The child is already running but cannot be managed. Do not
		// leave it behind in trace-stop.
		_ = unix.PtraceDetach(cmd.Process.Pid)
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return err
	}

	return nil
}

// resume detaches from the paused child, letting it run freely.
func resume(pid int) error {
	return unix.PtraceDetach(pid)
}
