// SPDX-License-Identifier: MIT

package overlay

import "strings"

// LinkFlags is the combinable bit-field controlling link operations. The
// values are part of the engine boundary and must not change.
type LinkFlags uint32

const (
	// FlagFailIfExists makes linking fail if a direct redirect already
	// exists at the exact destination.
	FlagFailIfExists LinkFlags = 0x1

	// FlagMonitorChanges keeps a static directory link in sync with later
	// changes to the source directory. Best-effort, applied on re-scan.
	FlagMonitorChanges LinkFlags = 0x2

	// FlagCreateTarget redirects file creation below the destination to the
	// source. Only one create target is active per destination, a new one
	// replaces the previous. The inner-most create target along a path
	// wins.
	FlagCreateTarget LinkFlags = 0x4

	// FlagRecursive links directories recursively.
	FlagRecursive LinkFlags = 0x8

	// FlagFailIfSkipped makes linking fail if a file or directory is
	// omitted by a skip rule.
	FlagFailIfSkipped LinkFlags = 0x10
)

var flagNames = []struct {
	flag LinkFlags
	name string
}{
	{FlagFailIfExists, "failifexists"},
	{FlagMonitorChanges, "monitorchanges"},
	{FlagCreateTarget, "createtarget"},
	{FlagRecursive, "recursive"},
	{FlagFailIfSkipped, "failifskipped"},
}

// Has reports whether all bits of flag are set.
func (f LinkFlags) Has(flag LinkFlags) bool {
	return f&flag == flag
}

// String returns the set flag names joined by "|", or "none".
func (f LinkFlags) String() string {
	names := make([]string, 0, len(flagNames))

	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}
