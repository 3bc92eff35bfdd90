// SPDX-License-Identifier: MIT

package boundary

import "github.com/veilfs/veilfs"

// Parameters is the mutable configuration object of the boundary. It is
// built through the setter calls and passed into [Surface.CreateVFS] or
// [Surface.ConnectVFS].
type Parameters struct {
	config veilfs.Config
}

// NewParameters creates an empty [Parameters].
func NewParameters() *Parameters {
	return &Parameters{}
}

// Dupe returns an independent copy.
func (p *Parameters) Dupe() *Parameters {
	return &Parameters{config: p.config}
}

// Copy overwrites p with the values of source.
func (p *Parameters) Copy(source *Parameters) {
	p.config = source.config
}

// SetInstanceName sets the instance name from a null-terminated byte
// string.
func (p *Parameters) SetInstanceName(name []byte) {
	p.config.InstanceName = cstring(name)
}

// SetDebugMode toggles debug mode.
func (p *Parameters) SetDebugMode(debugMode bool) {
	p.config.DebugMode = debugMode
}

// SetLogLevel sets the log channel level.
func (p *Parameters) SetLogLevel(level veilfs.LogLevel) {
	p.config.LogLevel = level
}

// SetCrashDumpType selects the crash dump contents.
func (p *Parameters) SetCrashDumpType(dumpType veilfs.CrashDumpType) {
	p.config.CrashDumpType = dumpType
}

// SetCrashDumpPath sets the crash dump directory from a null-terminated
// byte string.
func (p *Parameters) SetCrashDumpPath(path []byte) {
	p.config.CrashDumpPath = cstring(path)
}

// SetProcessDelay sets the spawn delay in milliseconds.
func (p *Parameters) SetProcessDelay(milliseconds int) {
	p.config.ProcessDelayMs = int64(milliseconds)
}

// Config returns the accumulated configuration.
func (p *Parameters) Config() veilfs.Config {
	return p.config
}

func cstring(b []byte) string {
	for idx, c := range b {
		if c == 0x00 {
			return string(b[:idx])
		}
	}

	return string(b)
}
