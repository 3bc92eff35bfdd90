// SPDX-License-Identifier: MIT

package veilfs_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cavaliergopher/cpio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilfs/veilfs"
)

func newTestEngine(t *testing.T) (*veilfs.Engine, afero.Fs) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	engine := veilfs.NewEngine(veilfs.WithFs(fsys))

	return engine, fsys
}

func writeFiles(t *testing.T, fsys afero.Fs, paths ...string) {
	t.Helper()

	for _, path := range paths {
		if strings.HasSuffix(path, "/") {
			require.NoError(t, fsys.MkdirAll(strings.TrimSuffix(path, "/"), 0o755))
			continue
		}

		require.NoError(t, afero.WriteFile(fsys, path, []byte(path), 0o644))
	}
}

func TestHubCreateResetsMappings(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/a.txt")

	hub := engine.NewHub()

	session, err := hub.Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)
	assert.Equal(t, veilfs.StateCreated, session.State())

	require.NoError(t, session.LinkFile("/real/a.txt", "/virtual/a.txt", 0))

	resolved, err := session.Resolve("/virtual/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/real/a.txt", resolved)

	// Creating the same instance again resets its mapping store and
	// silently disconnects the previous session.
	replacement, err := hub.Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	assert.Equal(t, veilfs.StateDisconnected, session.State())

	resolved, err = replacement.Resolve("/virtual/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/virtual/a.txt", resolved)
}

func TestHubCreateResetsSharedInstance(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/a.txt")

	creator := engine.NewHub()

	first, err := creator.Create(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)
	require.NoError(t, first.LinkFile("/real/a.txt", "/virtual/a.txt", 0))
	require.NoError(t, first.AddSkipSuffix(".tmp"))

	connected, err := engine.NewHub().Connect(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)

	// Re-creating the instance resets it in place. Sessions connected
	// through other hubs stay bound and observe the emptied state.
	_, err = engine.NewHub().Create(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)

	resolved, err := connected.Resolve("/virtual/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/virtual/a.txt", resolved)

	// The log channel survives the reset.
	var messages []string

	for {
		msg, ok, err := connected.LogMessage(false)
		require.NoError(t, err)

		if !ok {
			break
		}

		messages = append(messages, msg)
	}

	assert.Contains(t, strings.Join(messages, "\n"), "instance shared created")
}

func TestHubCreateInvalidConfig(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.NewHub().Create(veilfs.Config{})
	require.ErrorIs(t, err, &veilfs.SessionError{})
	require.ErrorIs(t, err, &veilfs.ConfigError{})
}

func TestHubConnect(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/a.txt")

	creator := engine.NewHub()

	created, err := creator.Create(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)
	require.NoError(t, created.LinkFile("/real/a.txt", "/virtual/a.txt", 0))

	// Connecting from another hub sees the existing mappings.
	connected, err := engine.NewHub().Connect(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)
	assert.Equal(t, veilfs.StateConnected, connected.State())

	resolved, err := connected.Resolve("/virtual/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/real/a.txt", resolved)
}

func TestHubConnectMissingInstance(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.NewHub().Connect(veilfs.Config{InstanceName: "absent"})
	require.ErrorIs(t, err, veilfs.ErrInstanceNotFound)
}

func TestHubCurrent(t *testing.T) {
	engine, _ := newTestEngine(t)
	hub := engine.NewHub()

	assert.Nil(t, hub.Current())

	session, err := hub.Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)
	assert.Same(t, session, hub.Current())

	hub.Disconnect()
	assert.Nil(t, hub.Current())
	assert.Equal(t, veilfs.StateDisconnected, session.State())
}

func TestSessionDisconnectIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t)

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	session.Disconnect()
	session.Disconnect()

	assert.Equal(t, veilfs.StateDisconnected, session.State())
}

func TestSessionOpsAfterDisconnect(t *testing.T) {
	engine, _ := newTestEngine(t)

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	session.Disconnect()

	err = session.LinkFile("/real/a.txt", "/virtual/a.txt", 0)
	require.ErrorIs(t, err, veilfs.ErrNotConnected)

	_, err = session.Resolve("/virtual/a.txt")
	require.ErrorIs(t, err, veilfs.ErrNotConnected)

	err = session.ClearMappings()
	require.ErrorIs(t, err, veilfs.ErrNotConnected)

	_, err = session.Spawn(veilfs.ProcessSpec{Path: "/bin/true"})
	require.ErrorIs(t, err, veilfs.ErrNotConnected)

	_, _, err = session.LogMessage(false)
	require.ErrorIs(t, err, veilfs.ErrNotConnected)
}

func TestSessionDisconnectKeepsInstance(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/a.txt")

	creator := engine.NewHub()

	created, err := creator.Create(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)
	require.NoError(t, created.LinkFile("/real/a.txt", "/virtual/a.txt", 0))

	created.Disconnect()

	// The instance and its mappings survive the session.
	connected, err := engine.NewHub().Connect(veilfs.Config{InstanceName: "shared"})
	require.NoError(t, err)

	resolved, err := connected.Resolve("/virtual/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/real/a.txt", resolved)
}

func TestSessionRecursiveScenario(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys,
		"/real/mods/weapons/sword.esp",
		"/real/mods/weapons/textures/steel.dds",
		"/real/mods/readme.tmp",
		"/real/mods/.git/",
		"/real/overwrite/",
	)

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	require.NoError(t, session.AddSkipSuffix(".tmp"))
	require.NoError(t, session.AddSkipDirectory(".git"))

	err = session.LinkDirectory("/real/mods", "/game/data", veilfs.FlagRecursive)
	require.NoError(t, err)

	err = session.LinkDirectory("/real/overwrite", "/game/data", veilfs.FlagCreateTarget)
	require.NoError(t, err)

	tests := []struct {
		path     string
		expected string
	}{
		{
			path:     "/game/data/weapons/sword.esp",
			expected: "/real/mods/weapons/sword.esp",
		},
		{
			path:     "/game/data/weapons/textures/steel.dds",
			expected: "/real/mods/weapons/textures/steel.dds",
		},
		{
			// Skipped by suffix, resolves to itself.
			path:     "/game/data/readme.tmp",
			expected: "/game/data/readme.tmp",
		},
		{
			// Skipped directory stays invisible.
			path:     "/game/data/.git/config",
			expected: "/game/data/.git/config",
		},
		{
			// New files land in the create target.
			path:     "/game/data/new.esp",
			expected: "/real/overwrite/new.esp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resolved, err := session.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved)
		})
	}

	dump, err := session.Dump()
	require.NoError(t, err)
	assert.Contains(t, string(dump), "weapons/")
	assert.Contains(t, string(dump), "link operations")

	info := session.DebugInfo()
	assert.Contains(t, info, "instance=test")
	assert.Contains(t, info, "links=2")
}

func TestSessionRescanPicksUpNewFiles(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/mods/sword.esp")

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	err = session.LinkDirectory("/real/mods", "/game/data",
		veilfs.FlagRecursive|veilfs.FlagMonitorChanges)
	require.NoError(t, err)

	writeFiles(t, fsys, "/real/mods/shield.esp")

	resolved, err := session.Resolve("/game/data/shield.esp")
	require.NoError(t, err)
	assert.Equal(t, "/game/data/shield.esp", resolved)

	require.NoError(t, session.Rescan())

	resolved, err = session.Resolve("/game/data/shield.esp")
	require.NoError(t, err)
	assert.Equal(t, "/real/mods/shield.esp", resolved)
}

func TestSessionMonitor(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/mods/sword.esp")

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	err = session.LinkDirectory("/real/mods", "/game/data",
		veilfs.FlagRecursive|veilfs.FlagMonitorChanges)
	require.NoError(t, err)

	writeFiles(t, fsys, "/real/mods/shield.esp")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		defer close(done)
		session.Monitor(ctx, 5*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		resolved, err := session.Resolve("/game/data/shield.esp")
		return err == nil && resolved == "/real/mods/shield.esp"
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSessionLogMessage(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/a.txt")

	session, err := engine.NewHub().Create(veilfs.Config{
		InstanceName: "test",
		DebugMode:    true,
	})
	require.NoError(t, err)

	require.NoError(t, session.LinkFile("/real/a.txt", "/virtual/a.txt", 0))

	var messages []string

	for {
		msg, ok, err := session.LogMessage(false)
		require.NoError(t, err)

		if !ok {
			break
		}

		messages = append(messages, msg)
	}

	require.NotEmpty(t, messages)
	assert.Contains(t, strings.Join(messages, "\n"), "linked /virtual/a.txt")
}

func TestSessionLogMessageBlocking(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/a.txt")

	session, err := engine.NewHub().Create(veilfs.Config{
		InstanceName: "test",
		DebugMode:    true,
	})
	require.NoError(t, err)

	// Drain the creation message.
	for {
		_, ok, err := session.LogMessage(false)
		require.NoError(t, err)

		if !ok {
			break
		}
	}

	result := make(chan string, 1)

	go func() {
		msg, ok, err := session.LogMessage(true)
		if err == nil && ok {
			result <- msg
		}

		close(result)
	}()

	require.NoError(t, session.LinkFile("/real/a.txt", "/virtual/a.txt", 0))

	select {
	case msg := <-result:
		assert.Contains(t, msg, "linked /virtual/a.txt")
	case <-time.After(time.Second):
		t.Fatal("blocking pull did not return")
	}
}

func TestSessionExportArchive(t *testing.T) {
	engine, fsys := newTestEngine(t)
	writeFiles(t, fsys, "/real/mods/sword.esp")

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	err = session.LinkDirectory("/real/mods", "/game/data", veilfs.FlagRecursive)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, session.ExportArchive(buf, false))

	var names []string

	reader := cpio.NewReader(buf)

	for {
		hdr, err := reader.Next()
		if err != nil {
			break
		}

		names = append(names, hdr.Name)
	}

	assert.Contains(t, names, "game/data/sword.esp")
}

func TestSessionHookCurrent(t *testing.T) {
	engine, _ := newTestEngine(t)

	session, err := engine.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	handle, err := session.HookCurrent()
	require.NoError(t, err)
	assert.Equal(t, veilfs.StatusAttached, handle.Status())

	processes, err := session.Processes()
	require.NoError(t, err)
	assert.Len(t, processes, 1)
}

func TestEngineIsolation(t *testing.T) {
	engineA, _ := newTestEngine(t)
	engineB, _ := newTestEngine(t)

	_, err := engineA.NewHub().Create(veilfs.Config{InstanceName: "test"})
	require.NoError(t, err)

	_, err = engineB.NewHub().Connect(veilfs.Config{InstanceName: "test"})
	require.ErrorIs(t, err, veilfs.ErrInstanceNotFound)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev", veilfs.Version())
}
