// SPDX-License-Identifier: MIT

package hook

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
)

// Spec defines the parameters for spawning one hooked process. The shape
// mirrors the platform's native process-creation call, since that is the
// contract external tooling expects.
type Spec struct {
	// Path to the application to run.
	Path string

	// CommandLine is the full command line including the program name. If
	// empty, the process runs with Path as its only argument.
	CommandLine string

	// Dir is the working directory. Empty inherits the parent's.
	Dir string

	// Env is the environment for the new process. A nil slice inherits the
	// parent environment.
	Env []string

	// InheritFiles are additional open files passed to the child,
	// corresponding to an inherit-handles flag at the native boundary.
	InheritFiles []*os.File

	// Stdin, Stdout and Stderr of the new process. Nil means the parent's.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Attributes carries process and primary-thread creation attributes,
	// the platform analog of the native security descriptors.
	Attributes *syscall.SysProcAttr

	// Delay is a deliberate synchronous stall before the process begins
	// executing its own code, giving external tooling a window to attach.
	Delay time.Duration
}

// args splits the command line into an argument vector.
func (s *Spec) args() ([]string, error) {
	if s.CommandLine == "" {
		return []string{s.Path}, nil
	}

	return shellquote.Split(s.CommandLine)
}
