// Package memory provides an in-memory engine for scripthost. It keeps every
// piece of state it is handed (import table, argument vector, search path,
// builtin stash) in plain Go structures, which makes it useful for tests and
// local development. It deliberately implements only the legacy split form of
// argument installation, so hosts exercise the search-path compensation.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/scripthost/scripthost/engine"
)

// EngineName is the name used to register this engine.
const EngineName = "memory"

// cwdPathEntry is what the legacy argv form prepends to the search path.
const cwdPathEntry = "."

func init() {
	engine.RegisterWithCapabilities(EngineName, Build, engine.MemoryCapabilities)
}

// Build creates a new in-memory engine.
func Build(ctx context.Context, cfg engine.Config, logger engine.Logger) (engine.Engine, error) {
	return New(), nil
}

type staticModule struct {
	name string
	init engine.ModuleInit
}

// Engine is the in-memory engine. The zero value is not usable; construct
// with New.
type Engine struct {
	mu         sync.Mutex
	running    bool
	table      []staticModule
	loaded     map[string]*Module
	argv       []string
	searchPath []string
	builtins   map[string]engine.Capsule
	hooks      []func(ctx context.Context) error
}

// New creates a stopped in-memory engine.
func New() *Engine {
	return &Engine{}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return EngineName }

// Capabilities returns the capabilities of this engine.
func (e *Engine) Capabilities() engine.Capabilities {
	return engine.MemoryCapabilities
}

// StartCore implements engine.Engine. Each start is a fresh core: the import
// table, arguments, search path, and builtin stash from any previous run are
// discarded.
func (e *Engine) StartCore(ctx context.Context, opts engine.StartOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("memory: core is already started")
	}

	e.table = nil
	e.loaded = make(map[string]*Module)
	e.argv = nil
	e.searchPath = nil
	e.builtins = make(map[string]engine.Capsule)
	e.running = true
	return nil
}

// StopCore implements engine.Engine. Registered shutdown hooks run first, in
// registration order; the engine reports itself not running afterwards even
// when hooks fail.
func (e *Engine) StopCore(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return fmt.Errorf("memory: core is not started")
	}
	hooks := e.hooks
	e.mu.Unlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	e.mu.Lock()
	e.running = false
	e.hooks = nil
	e.mu.Unlock()

	return errors.Join(errs...)
}

// Running implements engine.Engine.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// AppendStaticModule implements engine.Engine. Duplicate names are the
// conflict this engine surfaces when the table is applied.
func (e *Engine) AppendStaticModule(name string, init engine.ModuleInit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return fmt.Errorf("memory: core is not started")
	}
	if name == "" {
		return fmt.Errorf("memory: module name is required")
	}
	for _, entry := range e.table {
		if entry.name == name {
			return fmt.Errorf("memory: module %q already in import table", name)
		}
	}

	e.table = append(e.table, staticModule{name: name, init: init})
	return nil
}

// Import loads a module from the import table by name, running its
// initializer on first use. Later imports return the cached module object.
func (e *Engine) Import(name string) (*Module, error) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("memory: core is not started")
	}
	if mod, ok := e.loaded[name]; ok {
		e.mu.Unlock()
		return mod, nil
	}
	var init engine.ModuleInit
	for _, entry := range e.table {
		if entry.name == name {
			init = entry.init
			break
		}
	}
	e.mu.Unlock()

	if init == nil {
		return nil, fmt.Errorf("memory: no module named %q", name)
	}

	mod := &Module{name: name, values: make(map[string]any)}
	if err := init(mod); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.loaded[name] = mod
	e.mu.Unlock()
	return mod, nil
}

// ImportTable returns the names in the import table, in append order.
func (e *Engine) ImportTable() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.table))
	for _, entry := range e.table {
		names = append(names, entry.name)
	}
	return names
}

// SetArgv implements engine.LegacyArgvInstaller: the split form, which
// always prepends the cwd entry to the search path.
func (e *Engine) SetArgv(ctx context.Context, args []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return fmt.Errorf("memory: core is not started")
	}

	e.argv = append([]string(nil), args...)
	e.searchPath = append([]string{cwdPathEntry}, e.searchPath...)
	return nil
}

// RemoveFirstSearchPath implements engine.SearchPathEditor.
func (e *Engine) RemoveFirstSearchPath(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return fmt.Errorf("memory: core is not started")
	}
	if len(e.searchPath) == 0 {
		return fmt.Errorf("memory: search path is empty")
	}

	e.searchPath = e.searchPath[1:]
	return nil
}

// Argv returns the installed argument vector.
func (e *Engine) Argv() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.argv...)
}

// SearchPath returns the module search path.
func (e *Engine) SearchPath() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.searchPath...)
}

// StashBuiltin implements engine.BuiltinStash.
func (e *Engine) StashBuiltin(name string, c engine.Capsule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return fmt.Errorf("memory: core is not started")
	}

	e.builtins[name] = c
	return nil
}

// LookupBuiltin implements engine.BuiltinStash.
func (e *Engine) LookupBuiltin(name string) (engine.Capsule, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return engine.Capsule{}, false
	}

	c, ok := e.builtins[name]
	return c, ok
}

// OnShutdown implements engine.ShutdownHooker. Hooks run during StopCore,
// before the core is marked stopped, and are dropped afterwards.
func (e *Engine) OnShutdown(hook func(ctx context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// Module is the in-memory module object.
type Module struct {
	mu     sync.Mutex
	name   string
	values map[string]any
}

// Name implements engine.Module.
func (m *Module) Name() string { return m.name }

// Set implements engine.Module. The memory engine accepts any value.
func (m *Module) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("memory: module value key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Value returns a value previously bound with Set.
func (m *Module) Value(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
