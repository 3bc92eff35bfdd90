// SPDX-License-Identifier: MIT

// Package registry keeps the mutable filter state consulted during virtual
// linking and process spawning: skip file suffixes, skip directory names,
// blacklisted executables and forced library loads.
package registry

import (
	"strings"
	"sync"
)

// Registry holds the filter state of one VFS instance. All matching is
// case-insensitive. Entries persist until explicitly cleared or the owning
// instance is torn down.
//
// The zero value is not usable, use [New].
type Registry struct {
	mu           sync.RWMutex
	skipSuffixes map[string]struct{}
	skipDirs     map[string]struct{}
	blacklist    map[string]struct{}
	forceLoads   map[string][]string
}

// New creates an empty [Registry].
func New() *Registry {
	return &Registry{
		skipSuffixes: make(map[string]struct{}),
		skipDirs:     make(map[string]struct{}),
		blacklist:    make(map[string]struct{}),
		forceLoads:   make(map[string][]string),
	}
}

// AddSkipSuffix registers a file suffix to omit during recursive linking.
func (r *Registry) AddSkipSuffix(suffix string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipSuffixes[fold(suffix)] = struct{}{}
}

// ClearSkipSuffixes removes all registered file suffixes.
func (r *Registry) ClearSkipSuffixes() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.skipSuffixes)
}

// AddSkipDirectory registers a bare directory name (not a path) to omit
// during recursive linking.
func (r *Registry) AddSkipDirectory(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipDirs[fold(name)] = struct{}{}
}

// ClearSkipDirectories removes all registered directory names.
func (r *Registry) ClearSkipDirectories() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.skipDirs)
}

// AddBlacklistedExecutable registers an executable name that must never be
// hooked.
func (r *Registry) AddBlacklistedExecutable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blacklist[fold(name)] = struct{}{}
}

// ClearBlacklist removes all blacklisted executables.
func (r *Registry) ClearBlacklist() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.blacklist)
}

// AddForceLoad registers a library to load into processes with the given
// name right after hook injection. Multiple libraries may be registered for
// the same process name.
func (r *Registry) AddForceLoad(process, library string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fold(process)
	r.forceLoads[key] = append(r.forceLoads[key], library)
}

// ClearForceLoads removes all forced library loads.
func (r *Registry) ClearForceLoads() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.forceLoads)
}

// SkipEntry reports whether a directory entry encountered during recursive
// linking must be omitted. Directories match by bare name, files by suffix.
func (r *Registry) SkipEntry(name string, dir bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	folded := fold(name)

	if dir {
		_, skip := r.skipDirs[folded]
		return skip
	}

	for suffix := range r.skipSuffixes {
		if strings.HasSuffix(folded, suffix) {
			return true
		}
	}

	return false
}

// Blacklisted reports whether the executable name is blacklisted. Matching
// uses the bare name, so callers pass the base of the application path.
func (r *Registry) Blacklisted(executable string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, found := r.blacklist[fold(executable)]

	return found
}

// ForcedLibraries returns the libraries registered for the given process
// name. Order among them is unspecified.
func (r *Registry) ForcedLibraries(process string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	libraries := r.forceLoads[fold(process)]
	if len(libraries) == 0 {
		return nil
	}

	out := make([]string, len(libraries))
	copy(out, libraries)

	return out
}

func fold(s string) string {
	return strings.ToLower(s)
}
