// SPDX-License-Identifier: MIT

// Package boundary exposes the engine through its native calling
// convention: boolean success codes, null-terminated UTF-16 path
// arguments and two-phase size-probe calls for dump and log retrieval.
// Callers inside this module should use the veilfs package directly, the
// boundary surface exists for hosts that speak the original protocol.
package boundary

import (
	"sync"

	"github.com/veilfs/veilfs"
	"github.com/veilfs/veilfs/internal/wide"
)

// Surface is one controlling process's boundary view. All methods are
// safe for concurrent use.
type Surface struct {
	hub *veilfs.Hub

	mu          sync.Mutex
	pendingLogs [][]byte
	pendingDump []byte
}

// New creates a [Surface] over the given engine.
func New(engine *veilfs.Engine) *Surface {
	return &Surface{hub: engine.NewHub()}
}

// CreateVFS creates a new VFS instance, resetting any instance of the
// same name and silently disconnecting a prior session of this surface.
func (s *Surface) CreateVFS(p *Parameters) bool {
	_, err := s.hub.Create(p.Config())
	return err == nil
}

// ConnectVFS attaches to an existing instance without resetting it.
func (s *Surface) ConnectVFS(p *Parameters) bool {
	_, err := s.hub.Connect(p.Config())
	return err == nil
}

// DisconnectVFS tears down the active session. Always safe to call.
func (s *Surface) DisconnectVFS() {
	s.hub.Disconnect()
}

// GetCurrentVFSName copies the active instance name, null-terminated,
// into buf. Without an active session buf starts with a null byte.
func (s *Surface) GetCurrentVFSName(buf []byte) {
	name := ""
	if session := s.hub.Current(); session != nil {
		name = session.Name()
	}

	n := copy(buf, name)
	if n < len(buf) {
		buf[n] = 0x00
	}
}

// ClearVirtualMappings resets the mapping store of the active session.
func (s *Surface) ClearVirtualMappings() {
	if session := s.hub.Current(); session != nil {
		_ = session.ClearMappings()
	}
}

// VirtualLinkFile maps a single virtual file to a real one. Source and
// destination are null-terminated UTF-16 sequences.
func (s *Surface) VirtualLinkFile(source, destination []byte, flags uint32) bool {
	return s.link(source, destination, flags, false)
}

// VirtualLinkDirectoryStatic maps a virtual directory to a real one.
func (s *Surface) VirtualLinkDirectoryStatic(source, destination []byte, flags uint32) bool {
	return s.link(source, destination, flags, true)
}

func (s *Surface) link(source, destination []byte, flags uint32, dir bool) bool {
	session := s.hub.Current()
	if session == nil {
		return false
	}

	src, err := wide.Decode(source)
	if err != nil {
		return false
	}

	dst, err := wide.Decode(destination)
	if err != nil {
		return false
	}

	if dir {
		return session.LinkDirectory(src, dst, veilfs.LinkFlags(flags)) == nil
	}

	return session.LinkFile(src, dst, veilfs.LinkFlags(flags)) == nil
}

// CreateVFSDump serializes the current tree. Two-phase: when buf is too
// small for the dump, the required byte count is stored in size and the
// call returns false; a second call with a buffer of at least that size
// returns the dump.
func (s *Surface) CreateVFSDump(buf []byte, size *int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingDump == nil {
		session := s.hub.Current()
		if session == nil {
			return false
		}

		dump, err := session.Dump()
		if err != nil {
			return false
		}

		s.pendingDump = dump
	}

	if len(buf) < len(s.pendingDump) {
		*size = len(s.pendingDump)
		return false
	}

	*size = copy(buf, s.pendingDump)
	s.pendingDump = nil

	return true
}

// GetLogMessage retrieves the oldest pending log message into buf. Each
// message is delivered at most once, a message that did not fit is kept
// for the next call with the required byte count stored in size. The
// surface stays usable while a blocking call waits for a message.
func (s *Surface) GetLogMessage(buf []byte, size *int, blocking bool) bool {
	s.mu.Lock()

	var msg []byte

	if len(s.pendingLogs) > 0 {
		msg = s.pendingLogs[0]
		s.pendingLogs = s.pendingLogs[1:]
	}

	// The pull may block indefinitely, it must not happen under the
	// surface mutex.
	s.mu.Unlock()

	if msg == nil {
		session := s.hub.Current()
		if session == nil {
			return false
		}

		pulled, ok, err := session.LogMessage(blocking)
		if err != nil || !ok {
			return false
		}

		msg = []byte(pulled)
	}

	if len(buf) < len(msg) {
		*size = len(msg)

		s.mu.Lock()
		s.pendingLogs = append([][]byte{msg}, s.pendingLogs...)
		s.mu.Unlock()

		return false
	}

	*size = copy(buf, msg)

	return true
}

// CreateProcessHooked spawns a process that observes the overlay.
// Application name and command line are null-terminated UTF-16 sequences.
// The process id is stored in pid on success.
func (s *Surface) CreateProcessHooked(applicationName, commandLine []byte, pid *uint32) bool {
	session := s.hub.Current()
	if session == nil {
		return false
	}

	path, err := wide.Decode(applicationName)
	if err != nil {
		return false
	}

	cmdline, err := wide.Decode(commandLine)
	if err != nil {
		return false
	}

	handle, err := session.Spawn(veilfs.ProcessSpec{
		Path:        path,
		CommandLine: cmdline,
	})
	if err != nil {
		return false
	}

	if pid != nil {
		*pid = uint32(handle.PID())
	}

	return true
}

// GetVFSProcessList stores the process ids attached to the session. The
// count is always updated; pids is only filled when it is large enough,
// otherwise the call reports false so the caller can retry with count
// entries.
func (s *Surface) GetVFSProcessList(count *int, pids []uint32) bool {
	session := s.hub.Current()
	if session == nil {
		return false
	}

	handles, err := session.Processes()
	if err != nil {
		return false
	}

	*count = len(handles)

	if len(pids) < len(handles) {
		return false
	}

	for idx, handle := range handles {
		pids[idx] = uint32(handle.PID())
	}

	return true
}

// BlacklistExecutable registers an executable name, as a null-terminated
// UTF-16 sequence, that must never be hooked.
func (s *Surface) BlacklistExecutable(executableName []byte) {
	s.registry(executableName, func(session *veilfs.Session, value string) {
		_ = session.BlacklistExecutable(value)
	})
}

// ClearExecutableBlacklist removes all blacklisted executables.
func (s *Surface) ClearExecutableBlacklist() {
	if session := s.hub.Current(); session != nil {
		_ = session.ClearBlacklist()
	}
}

// AddSkipFileSuffix registers a file suffix, as a null-terminated UTF-16
// sequence, to omit during recursive linking.
func (s *Surface) AddSkipFileSuffix(fileSuffix []byte) {
	s.registry(fileSuffix, func(session *veilfs.Session, value string) {
		_ = session.AddSkipSuffix(value)
	})
}

// ClearSkipFileSuffixes removes all registered file suffixes.
func (s *Surface) ClearSkipFileSuffixes() {
	if session := s.hub.Current(); session != nil {
		_ = session.ClearSkipSuffixes()
	}
}

// AddSkipDirectory registers a directory name, as a null-terminated
// UTF-16 sequence, to omit during recursive linking.
func (s *Surface) AddSkipDirectory(directory []byte) {
	s.registry(directory, func(session *veilfs.Session, value string) {
		_ = session.AddSkipDirectory(value)
	})
}

// ClearSkipDirectories removes all registered directory names.
func (s *Surface) ClearSkipDirectories() {
	if session := s.hub.Current(); session != nil {
		_ = session.ClearSkipDirectories()
	}
}

// ForceLoadLibrary registers a library, as null-terminated UTF-16
// sequences, to load into processes with the given name.
func (s *Surface) ForceLoadLibrary(processName, libraryPath []byte) {
	session := s.hub.Current()
	if session == nil {
		return
	}

	process, err := wide.Decode(processName)
	if err != nil {
		return
	}

	library, err := wide.Decode(libraryPath)
	if err != nil {
		return
	}

	_ = session.ForceLoadLibrary(process, library)
}

// ClearLibraryForceLoads removes all forced library loads.
func (s *Surface) ClearLibraryForceLoads() {
	if session := s.hub.Current(); session != nil {
		_ = session.ClearForceLoads()
	}
}

// PrintDebugInfo pushes a state summary onto the log channel.
func (s *Surface) PrintDebugInfo() {
	if session := s.hub.Current(); session != nil {
		session.PrintDebugInfo()
	}
}

// InitLogging is retained for protocol compatibility. Log messages always
// collect in the instance's log channel, toLocal has no effect.
func (s *Surface) InitLogging(toLocal bool) {
	_ = toLocal
}

// VersionString returns the engine version.
func (s *Surface) VersionString() string {
	return veilfs.Version()
}

func (s *Surface) registry(value []byte, fn func(*veilfs.Session, string)) {
	session := s.hub.Current()
	if session == nil {
		return
	}

	decoded, err := wide.Decode(value)
	if err != nil {
		return
	}

	fn(session, decoded)
}
