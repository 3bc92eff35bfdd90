// SPDX-License-Identifier: MIT

//go:build !linux

package hook

import "os/exec"

// Pausing at exec needs ptrace. On other platforms the child starts running
// right away, after the hook environment has been prepared.
func startPaused(cmd *exec.Cmd) error {
	return cmd.Start()
}

func resume(int) error {
	return nil
}
