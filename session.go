// SPDX-License-Identifier: MIT

package veilfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/veilfs/veilfs/internal/archive"
)

// SessionState is the lifecycle state of a [Session].
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateCreated
	StateConnected
	StateDisconnected
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreated:
		return "created"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "invalid"
	}
}

// Hub is one controlling process's command interface into the engine. At
// most one session per hub is active at a time: creating or connecting a
// new one silently disconnects the previous one.
type Hub struct {
	engine *Engine
	mu     sync.Mutex
	active *Session
}

// Create opens a new session, making or replacing the named instance. The
// mapping store is guaranteed to be empty afterwards, regardless of its
// state before the call. Hooks are considered installed in the calling
// process.
func (h *Hub) Create(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &SessionError{Op: "create", Err: err}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.disconnectLocked()

	session := &Session{
		hub:    h,
		inst:   h.engine.create(cfg),
		state:  StateCreated,
		hooked: true,
	}
	session.inst.logger.Infof("instance %s created", cfg.InstanceName)

	h.active = session

	return session, nil
}

// Connect attaches to an existing instance, created through another hub,
// without resetting its mapping store and without installing hooks in the
// calling process. Connecting to a missing instance fails with
// [ErrInstanceNotFound].
func (h *Hub) Connect(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &SessionError{Op: "connect", Err: err}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	inst, found := h.engine.lookup(cfg.InstanceName)
	if !found {
		return nil, &SessionError{Op: "connect", Err: ErrInstanceNotFound}
	}

	h.disconnectLocked()

	session := &Session{
		hub:   h,
		inst:  inst,
		state: StateConnected,
	}
	inst.logger.Infof("instance %s connected", cfg.InstanceName)

	h.active = session

	return session, nil
}

// Disconnect tears down the active session, if any. Always safe to call.
func (h *Hub) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.disconnectLocked()
}

// Current returns the active session, or nil.
func (h *Hub) Current() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.active
}

func (h *Hub) disconnectLocked() {
	if h.active == nil {
		return
	}

	h.active.teardown()
	h.active = nil
}

// Session is an active view of one VFS instance. All methods are safe for
// concurrent use; mutating operations serialize on the instance.
type Session struct {
	hub    *Hub
	inst   *instance
	hooked bool

	mu    sync.Mutex
	state SessionState
}

// Name returns the instance name.
func (s *Session) Name() string {
	return s.inst.name
}

// State returns the lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Config returns a copy of the instance configuration.
func (s *Session) Config() Config {
	return s.inst.cfg
}

// Disconnect invalidates the session. Hooks are removed if they were
// installed, the instance's mapping data stays intact for other sessions.
// Disconnect is idempotent and never an error.
func (s *Session) Disconnect() {
	s.hub.mu.Lock()
	if s.hub.active == s {
		s.hub.active = nil
	}
	s.hub.mu.Unlock()

	s.teardown()
}

func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisconnected {
		return
	}

	if s.hooked {
		s.inst.procs.Detach()
	}

	s.inst.logger.Infof("instance %s disconnected", s.inst.name)
	s.state = StateDisconnected
}

func (s *Session) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated && s.state != StateConnected {
		return ErrNotConnected
	}

	return nil
}

// LinkFile maps a single virtual file to a real one.
func (s *Session) LinkFile(source, destination string, flags LinkFlags) error {
	return s.link(source, destination, flags, false)
}

// LinkDirectory maps a virtual directory to a real one. With
// [FlagRecursive] the source's contents are snapshotted into the tree,
// consulting the skip rules for every entry.
func (s *Session) LinkDirectory(source, destination string, flags LinkFlags) error {
	return s.link(source, destination, flags, true)
}

func (s *Session) link(source, destination string, flags LinkFlags, dir bool) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	err := s.inst.tree.Insert(source, destination, flags, dir, s.inst.rules)
	if err != nil {
		s.inst.logger.Errorf("link %s -> %s: %v", destination, source, err)
		return err
	}

	s.inst.logger.Debugf("linked %s -> %s (%s)", destination, source, flags)

	return nil
}

// ClearMappings resets the mapping store to empty.
func (s *Session) ClearMappings() error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	s.inst.tree.Clear()
	s.inst.logger.Debug("mappings cleared")

	return nil
}

// Resolve returns the effective real path for the given virtual path. A
// path without any matching redirect resolves to itself.
func (s *Session) Resolve(path string) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}

	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	return s.inst.tree.Resolve(path), nil
}

// Rescan re-applies all recorded links with fresh directory scans, picking
// up source changes of monitor-changes links.
func (s *Session) Rescan() error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	return s.inst.tree.Rescan(s.inst.rules)
}

// Monitor re-scans periodically until the context ends. Change monitoring
// is best-effort: resolution never waits for a re-scan.
func (s *Session) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Rescan(); err != nil {
				s.inst.logger.Warnf("monitor rescan: %v", err)
			}
		}
	}
}

// Dump returns a human-readable representation of the current tree. The
// two-call size-probe protocol of the native boundary is hidden here, the
// buffer grows as needed.
func (s *Session) Dump() ([]byte, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	buf := &bytes.Buffer{}
	if err := s.inst.tree.Dump(buf); err != nil {
		return nil, &DumpError{Err: err}
	}

	return buf.Bytes(), nil
}

// DebugInfo returns a one-line state summary for diagnostics.
func (s *Session) DebugInfo() string {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	return fmt.Sprintf(
		"instance=%s state=%s generation=%d links=%d processes=%d queued=%d",
		s.inst.name,
		s.State(),
		s.inst.tree.Generation(),
		len(s.inst.tree.Records()),
		len(s.inst.procs.Processes()),
		s.inst.queue.Len(),
	)
}

// PrintDebugInfo pushes the [Session.DebugInfo] summary onto the log
// channel.
func (s *Session) PrintDebugInfo() {
	s.inst.logger.Info(s.DebugInfo())
}

// ExportArchive writes the virtual layout as a cpio archive, optionally
// zstd-compressed.
func (s *Session) ExportArchive(w io.Writer, compress bool) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()

	return archive.NewExporter(s.inst.fsys).Export(w, s.inst.tree, compress)
}

// LogMessage retrieves the oldest pending engine log message. Non-blocking
// calls return immediately with ok false when the channel is empty,
// blocking calls suspend until a message arrives or the instance is torn
// down.
func (s *Session) LogMessage(blocking bool) (string, bool, error) {
	if err := s.guard(); err != nil {
		return "", false, err
	}

	msg, ok := s.inst.queue.Pull(blocking)

	return msg, ok, nil
}

// Spawn creates a new process that observes the overlay. See
// [ProcessSpec] for the parameters and the blacklist escape hatch.
func (s *Session) Spawn(spec ProcessSpec) (*ProcessHandle, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if spec.Delay == 0 && s.inst.cfg.ProcessDelayMs > 0 {
		spec.Delay = time.Duration(s.inst.cfg.ProcessDelayMs) * time.Millisecond
	}

	return s.inst.procs.Spawn(spec)
}

// HookCurrent registers the controlling process itself as part of the
// session.
func (s *Session) HookCurrent() (*ProcessHandle, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	return s.inst.procs.HookCurrent(), nil
}

// Processes returns the handles of all processes attached to the session.
func (s *Session) Processes() ([]*ProcessHandle, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	return s.inst.procs.Processes(), nil
}

// AddSkipSuffix registers a file suffix to omit during recursive linking.
func (s *Session) AddSkipSuffix(suffix string) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.AddSkipSuffix(suffix)

	return nil
}

// ClearSkipSuffixes removes all registered file suffixes.
func (s *Session) ClearSkipSuffixes() error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.ClearSkipSuffixes()

	return nil
}

// AddSkipDirectory registers a bare directory name to omit during
// recursive linking.
func (s *Session) AddSkipDirectory(name string) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.AddSkipDirectory(name)

	return nil
}

// ClearSkipDirectories removes all registered directory names.
func (s *Session) ClearSkipDirectories() error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.ClearSkipDirectories()

	return nil
}

// BlacklistExecutable registers an executable name that must never be
// hooked. Spawning it still succeeds, but unhooked.
func (s *Session) BlacklistExecutable(name string) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.AddBlacklistedExecutable(name)

	return nil
}

// ClearBlacklist removes all blacklisted executables.
func (s *Session) ClearBlacklist() error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.ClearBlacklist()

	return nil
}

// ForceLoadLibrary registers a library to load into processes with the
// given name right after hook injection.
func (s *Session) ForceLoadLibrary(process, library string) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.AddForceLoad(process, library)

	return nil
}

// ClearForceLoads removes all forced library loads.
func (s *Session) ClearForceLoads() error {
	if err := s.guard(); err != nil {
		return err
	}

	s.inst.rules.ClearForceLoads()

	return nil
}
