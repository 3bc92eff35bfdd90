// SPDX-License-Identifier: MIT

// Package veilfs implements a user-space virtual filesystem overlay with a
// hooked-process controller.
//
// An overlay maps virtual paths to real filesystem locations without
// touching the real filesystem layout. A caller builds a [Config], opens a
// session through a [Hub], populates the mapping store with link
// operations and then spawns processes that observe the overlay instead of
// the real filesystem.
//
// The [Engine] holds the shared state of all named VFS instances. One
// engine stands in for the shared memory of the native engine: a session
// created through one hub can be connected to from another. Each [Hub] is
// one controlling process's view; at most one session per hub is active at
// a time, creating or connecting a new one silently disconnects the
// previous one.
//
// The boundary subpackage preserves the engine's native calling convention
// (boolean success codes, null-terminated UTF-16 strings, two-phase
// size-probe calls) for external tooling that expects it.
package veilfs
