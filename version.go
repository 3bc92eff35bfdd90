// SPDX-License-Identifier: MIT

package veilfs

// Set on build.
var version = "dev"

// Version returns the engine version. Release builds set the value at link
// time, development builds report "dev".
func Version() string {
	return version
}
