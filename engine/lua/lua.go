// Package lua provides a gopher-lua engine for scripthost. It wraps a single
// lua.LState: StartCore creates it, StopCore closes it, and static modules
// are preloaded into package.preload so require finds them without touching
// the filesystem.
package lua

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	lua "github.com/yuin/gopher-lua"

	"github.com/scripthost/scripthost/engine"
)

// EngineName is the name used to register this engine.
const EngineName = "lua"

func init() {
	engine.RegisterWithCapabilities(EngineName, Build, engine.LuaCapabilities)
}

// Options tunes the lua state created at StartCore.
type Options struct {
	// SkipStdLibs starts the state without opening the Lua standard
	// libraries.
	SkipStdLibs bool
	// RegistrySize is the initial registry size. Zero uses the gopher-lua default.
	RegistrySize int
	// CallStackSize is the call stack size. Zero uses the gopher-lua default.
	CallStackSize int
	// ScriptPath is the directory the cwd search-path entry points at.
	// Empty means the process working directory.
	ScriptPath string
	// Logger receives engine-side diagnostics. Nil discards them.
	Logger engine.Logger
}

// Build creates a new lua engine from config.
func Build(ctx context.Context, cfg engine.Config, logger engine.Logger) (engine.Engine, error) {
	return New(Options{
		SkipStdLibs:   cfg.GetLuaSkipStdLibs(),
		RegistrySize:  cfg.GetLuaRegistrySize(),
		CallStackSize: cfg.GetLuaCallStackSize(),
		ScriptPath:    cfg.GetScriptPath(),
		Logger:        logger,
	}), nil
}

// Engine is the gopher-lua engine.
type Engine struct {
	mu        sync.Mutex
	opts      Options
	state     *lua.LState
	cancel    context.CancelFunc
	sigCh     chan os.Signal
	preloaded map[string]bool
	hooks     []func(ctx context.Context) error
}

// New creates a stopped lua engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return EngineName }

// Capabilities returns the capabilities of this engine.
func (e *Engine) Capabilities() engine.Capabilities {
	return engine.LuaCapabilities
}

// State exposes the underlying lua state for callers that evaluate code.
// Returns nil when the core is not started.
func (e *Engine) State() *lua.LState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// StartCore implements engine.Engine. With signal handlers enabled, SIGINT
// and SIGTERM cancel the state's context, which interrupts a running script.
func (e *Engine) StartCore(ctx context.Context, opts engine.StartOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != nil {
		return fmt.Errorf("lua: core is already started")
	}

	lopts := lua.Options{SkipOpenLibs: e.opts.SkipStdLibs}
	if e.opts.RegistrySize > 0 {
		lopts.RegistrySize = e.opts.RegistrySize
	}
	if e.opts.CallStackSize > 0 {
		lopts.CallStackSize = e.opts.CallStackSize
	}
	state := lua.NewState(lopts)

	if opts.InstallSignalHandlers {
		runCtx, cancel := context.WithCancel(context.Background())
		state.SetContext(runCtx)
		e.cancel = cancel
		e.sigCh = make(chan os.Signal, 1)
		signal.Notify(e.sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func(ch chan os.Signal, cancel context.CancelFunc) {
			if _, ok := <-ch; ok {
				cancel()
			}
		}(e.sigCh, cancel)
	}

	e.state = state
	e.preloaded = make(map[string]bool)
	return nil
}

// StopCore implements engine.Engine. Shutdown hooks run while the state is
// still alive; the state is closed regardless of hook errors.
func (e *Engine) StopCore(ctx context.Context) error {
	e.mu.Lock()
	if e.state == nil {
		e.mu.Unlock()
		return fmt.Errorf("lua: core is not started")
	}
	hooks := e.hooks
	state := e.state
	e.mu.Unlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	e.mu.Lock()
	if e.sigCh != nil {
		signal.Stop(e.sigCh)
		close(e.sigCh)
		e.sigCh = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	state.Close()
	e.state = nil
	e.preloaded = nil
	e.hooks = nil
	e.mu.Unlock()

	return errors.Join(errs...)
}

// Running implements engine.Engine.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil
}

// AppendStaticModule implements engine.Engine. The module becomes available
// to require(name); its initializer runs on first require, inside a loader
// that converts any initializer error into a lua import error rather than
// letting a Go error unwind through the interpreter's frames.
func (e *Engine) AppendStaticModule(name string, init engine.ModuleInit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return fmt.Errorf("lua: core is not started")
	}
	if name == "" {
		return fmt.Errorf("lua: module name is required")
	}
	if e.preloaded[name] {
		return fmt.Errorf("lua: module %q already in import table", name)
	}

	e.state.PreloadModule(name, func(L *lua.LState) int {
		mod := &Module{name: name, state: L, table: L.NewTable()}
		if err := init(mod); err != nil {
			L.RaiseError("module '%s' failed to load: %s", name, err)
			return 0
		}
		L.Push(mod.table)
		return 1
	})

	e.preloaded[name] = true
	return nil
}

// InstallArgv implements engine.ArgvInstaller, the combined form: the
// argument vector lands in the global arg table and the search-path entry is
// added in the same call, only when asked for.
func (e *Engine) InstallArgv(ctx context.Context, args []string, addCwdToPath bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return fmt.Errorf("lua: core is not started")
	}

	argTable := e.state.NewTable()
	for i, arg := range args {
		// arg[0] is the script name slot, matching the standalone
		// interpreter's convention.
		argTable.RawSetInt(i, lua.LString(arg))
	}
	e.state.SetGlobal("arg", argTable)

	if addCwdToPath {
		e.prependSearchPath(e.cwdPathEntry())
	}
	return nil
}

func (e *Engine) cwdPathEntry() string {
	dir := e.opts.ScriptPath
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "?.lua")
}

// prependSearchPath puts entry at the front of package.path. A state started
// without the standard libraries has no package table; nothing to do then.
func (e *Engine) prependSearchPath(entry string) {
	pkg, ok := e.state.GetGlobal("package").(*lua.LTable)
	if !ok {
		if e.opts.Logger != nil {
			e.opts.Logger.Debug("No package table, skipping search path entry", map[string]any{"entry": entry})
		}
		return
	}
	path := lua.LVAsString(e.state.GetField(pkg, "path"))
	e.state.SetField(pkg, "path", lua.LString(entry+";"+path))
}

// StashBuiltin implements engine.BuiltinStash. The capsule rides in a
// userdata bound to a global, which is as close to a builtin namespace as
// lua has.
func (e *Engine) StashBuiltin(name string, c engine.Capsule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return fmt.Errorf("lua: core is not started")
	}

	ud := e.state.NewUserData()
	ud.Value = c
	e.state.SetGlobal(name, ud)
	return nil
}

// LookupBuiltin implements engine.BuiltinStash. Globals holding anything
// other than a capsule-carrying userdata are reported as absent.
func (e *Engine) LookupBuiltin(name string) (engine.Capsule, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return engine.Capsule{}, false
	}

	ud, ok := e.state.GetGlobal(name).(*lua.LUserData)
	if !ok {
		return engine.Capsule{}, false
	}
	c, ok := ud.Value.(engine.Capsule)
	return c, ok
}

// OnShutdown implements engine.ShutdownHooker.
func (e *Engine) OnShutdown(hook func(ctx context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// Module projects engine.Module onto a lua table.
type Module struct {
	name  string
	state *lua.LState
	table *lua.LTable
}

// Name implements engine.Module.
func (m *Module) Name() string { return m.name }

// Set implements engine.Module, converting Go values into lua values.
// Functions must be lua.LGFunction-compatible.
func (m *Module) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("lua: module value key is required")
	}
	lv, err := toLValue(m.state, value)
	if err != nil {
		return err
	}
	m.state.SetField(m.table, key, lv)
	return nil
}

// Table returns the underlying lua table.
func (m *Module) Table() *lua.LTable { return m.table }

func toLValue(L *lua.LState, value any) (lua.LValue, error) {
	switch v := value.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return v, nil
	case lua.LGFunction:
		return L.NewFunction(v), nil
	case func(*lua.LState) int:
		return L.NewFunction(v), nil
	case string:
		return lua.LString(v), nil
	case []byte:
		return lua.LString(v), nil
	case bool:
		return lua.LBool(v), nil
	case int:
		return lua.LNumber(v), nil
	case int32:
		return lua.LNumber(v), nil
	case int64:
		return lua.LNumber(v), nil
	case float32:
		return lua.LNumber(v), nil
	case float64:
		return lua.LNumber(v), nil
	default:
		return nil, fmt.Errorf("lua: unsupported module value type %T", value)
	}
}
