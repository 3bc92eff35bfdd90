// SPDX-License-Identifier: MIT

package overlay

// Record preserves the intent of one link operation: what was linked where,
// with which flags, in which order. Records drive dumps and the re-scans
// that keep monitored links in sync.
type Record struct {
	// Source is the real filesystem path the link redirects to.
	Source string

	// Destination is the virtual path the link was created at.
	Destination string

	// Flags of the original operation.
	Flags LinkFlags

	// Directory reports whether the link was a directory link.
	Directory bool

	// Order is the creation sequence number, starting at 0.
	Order int
}
