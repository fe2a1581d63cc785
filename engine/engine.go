// Package engine defines the core interfaces and types for scripthost engines.
// Each engine implementation (lua, memory, etc.) should be in its own
// sub-package and register itself with the engine registry.
package engine

import (
	"context"
)

// StartOptions controls how an engine brings its core up.
type StartOptions struct {
	// InstallSignalHandlers lets the engine wire its own signal handling
	// (for example interrupting a running script on SIGINT). Hosts that
	// manage signals themselves should leave this false.
	InstallSignalHandlers bool
}

// Module is a named module object handed to module initializers. The engine
// decides how Set values are projected into its own object model.
type Module interface {
	Name() string
	// Set binds a value under the given key inside the module. Engines
	// reject values they cannot represent.
	Set(key string, value any) error
}

// ModuleInit populates a freshly created module object. A non-nil error marks
// the import as failed; engines translate it into their native import-failure
// signal.
type ModuleInit func(m Module) error

// Engine is the narrow boundary between the host lifecycle and an embedded
// scripting runtime. Implementations own the runtime's state; the host only
// observes it.
type Engine interface {
	// Name returns the engine identifier used for registration and config.
	Name() string

	// StartCore starts the embedded runtime. Calling StartCore on a
	// running engine is an error.
	StartCore(ctx context.Context, opts StartOptions) error

	// StopCore shuts the embedded runtime down, running any engine-side
	// shutdown hooks first. The engine reports itself not running
	// afterwards regardless of hook errors.
	StopCore(ctx context.Context) error

	// Running reports whether the embedded runtime is currently up.
	Running() bool

	// AppendStaticModule makes a compiled-in module importable by name
	// without touching the filesystem. The engine surfaces name conflicts
	// here, when the table is applied.
	AppendStaticModule(name string, init ModuleInit) error
}

// Builder is the function signature for creating an engine from config.
// Each engine package should provide a Builder function that can be registered.
type Builder func(ctx context.Context, cfg Config, logger Logger) (Engine, error)

// Config provides the configuration values needed by engines. This interface
// allows engines to access only the config they need without depending on the
// full config package.
type Config interface {
	// GetEngine returns the engine type name.
	GetEngine() string

	// Lua
	GetLuaSkipStdLibs() bool
	GetLuaRegistrySize() int
	GetLuaCallStackSize() int

	// GetScriptPath returns the path scripts resolve relative imports from.
	GetScriptPath() string
}

// Logger is the minimal logging contract engines receive from the host.
type Logger interface {
	With(fields map[string]any) Logger
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
}

// ArgvInstaller is implemented by engines that support the combined form of
// argument installation: arguments and the optional cwd search-path entry are
// applied in one call.
type ArgvInstaller interface {
	InstallArgv(ctx context.Context, args []string, addCwdToPath bool) error
}

// LegacyArgvInstaller is implemented by engines that only support the older
// split form, which always prepends the cwd entry to the module search path.
// Hosts compensate via SearchPathEditor when the entry is unwanted.
type LegacyArgvInstaller interface {
	SetArgv(ctx context.Context, args []string) error
}

// SearchPathEditor is implemented by engines whose module search path can be
// edited after argument installation.
type SearchPathEditor interface {
	RemoveFirstSearchPath(ctx context.Context) error
}

// Capsule is an opaque-pointer-carrying value exchangeable through an
// engine's object model. Engines store it without interpreting Value.
type Capsule struct {
	ID    string
	Value any
}

// BuiltinStash is implemented by engines that can hold capsule values in
// their builtin namespace under a fixed identifier.
type BuiltinStash interface {
	StashBuiltin(name string, c Capsule) error
	// LookupBuiltin returns the capsule stored under name. The second
	// return is false when nothing is stored there or the stored value is
	// not a capsule.
	LookupBuiltin(name string) (Capsule, bool)
}

// ShutdownHooker is implemented by engines that run host-supplied callbacks
// during StopCore, before the runtime is torn down.
type ShutdownHooker interface {
	OnShutdown(hook func(ctx context.Context) error)
}
