// SPDX-License-Identifier: MIT

package veilfs

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/veilfs/veilfs/internal/hook"
	"github.com/veilfs/veilfs/internal/logq"
	"github.com/veilfs/veilfs/internal/overlay"
	"github.com/veilfs/veilfs/internal/registry"
)

// Engine holds the shared state of all named VFS instances. It is the
// in-process stand-in for the native engine's shared memory: instances
// created through one [Hub] are reachable from every other hub of the same
// engine. Tests construct independent engines in isolation.
type Engine struct {
	mu        sync.Mutex
	fsys      afero.Fs
	instances map[string]*instance
}

// Option configures an [Engine].
type Option func(*Engine)

// WithFs makes the engine scan link sources and read redirect targets
// through the given filesystem instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(e *Engine) {
		e.fsys = fsys
	}
}

// NewEngine creates an [Engine] with no instances.
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		fsys:      afero.NewOsFs(),
		instances: make(map[string]*instance),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// NewHub returns a fresh controlling-process view of the engine.
func (e *Engine) NewHub() *Hub {
	return &Hub{engine: e}
}

// create makes a new instance for the config. An existing instance of the
// same name is reset in place rather than replaced: sessions connected to
// it through other hubs stay bound and observe the emptied state. The
// mapping store of the returned instance is always empty.
func (e *Engine) create(cfg Config) *instance {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, found := e.instances[cfg.InstanceName]; found {
		prev.reset(cfg)
		return prev
	}

	inst := newInstance(cfg, e.fsys)
	e.instances[cfg.InstanceName] = inst

	return inst
}

// lookup finds an existing instance by name.
func (e *Engine) lookup(name string) (*instance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, found := e.instances[name]

	return inst, found
}

// instance is one named VFS overlay: the mapping store, the filter
// registry, the process controller and the log channel, all owned
// together. The mutex is the single mutual-exclusion domain for every
// mutating operation on the instance.
type instance struct {
	name string
	cfg  Config
	fsys afero.Fs

	mu     sync.Mutex
	tree   *overlay.Tree
	rules  *registry.Registry
	queue  *logq.Queue
	logger *logrus.Logger
	procs  *hook.Controller
}

func newInstance(cfg Config, fsys afero.Fs) *instance {
	fillCrashDumpPath(&cfg)

	queue := logq.New(0)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(logq.NewHook(queue))

	level := cfg.LogLevel.logrusLevel()
	if cfg.DebugMode {
		level = logrus.DebugLevel
	}

	logger.SetLevel(level)

	rules := registry.New()

	return &instance{
		name:   cfg.InstanceName,
		cfg:    cfg,
		fsys:   fsys,
		tree:   overlay.New(fsys),
		rules:  rules,
		queue:  queue,
		logger: logger,
		procs:  hook.NewController(cfg.InstanceName, rules, logger),
	}
}

// reset applies a fresh configuration to an existing instance, emptying its
// mapping store and filter registry. The log queue stays open so attached
// sessions keep receiving messages across the reset.
func (inst *instance) reset(cfg Config) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	fillCrashDumpPath(&cfg)
	inst.cfg = cfg

	inst.tree.Clear()
	inst.rules.ClearSkipSuffixes()
	inst.rules.ClearSkipDirectories()
	inst.rules.ClearBlacklist()
	inst.rules.ClearForceLoads()

	level := cfg.LogLevel.logrusLevel()
	if cfg.DebugMode {
		level = logrus.DebugLevel
	}

	inst.logger.SetLevel(level)
}

func fillCrashDumpPath(cfg *Config) {
	if cfg.CrashDumpPath != "" {
		return
	}

	if cwd, err := os.Getwd(); err == nil {
		cfg.CrashDumpPath = cwd
	}
}
