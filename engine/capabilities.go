package engine

// Capabilities describes the features supported by an engine backend.
// Use this to introspect what operations are available at runtime.
type Capabilities struct {
	// SupportsCombinedArgv indicates the engine implements ArgvInstaller,
	// the single-call form of argument/search-path installation.
	SupportsCombinedArgv bool

	// SupportsLegacyArgv indicates the engine implements
	// LegacyArgvInstaller, the split form that always adds the cwd entry.
	SupportsLegacyArgv bool

	// SupportsSearchPathEdit indicates the engine's module search path can
	// be edited after startup.
	SupportsSearchPathEdit bool

	// SupportsBuiltinStash indicates capsule values can be stored in the
	// engine's builtin namespace.
	SupportsBuiltinStash bool

	// SupportsSignalHandlers indicates the engine can install its own
	// signal handling during StartCore.
	SupportsSignalHandlers bool

	// SupportsShutdownHooks indicates the engine runs host callbacks
	// during StopCore.
	SupportsShutdownHooks bool

	// Name is the human-readable name of the engine.
	Name string

	// Version is the engine/runtime version.
	Version string
}

// RequiresArgvCompat returns true if the host must remove the cwd search-path
// entry after installing arguments because the engine only supports the
// legacy split form.
func (c Capabilities) RequiresArgvCompat() bool {
	return !c.SupportsCombinedArgv && c.SupportsLegacyArgv
}

// SupportsArgv returns true if arguments can be installed at all.
func (c Capabilities) SupportsArgv() bool {
	return c.SupportsCombinedArgv || c.SupportsLegacyArgv
}

// Predefined capability sets for common engines.
var (
	// LuaCapabilities for the gopher-lua engine.
	LuaCapabilities = Capabilities{
		Name:                   "lua",
		SupportsCombinedArgv:   true,
		SupportsLegacyArgv:     false,
		SupportsSearchPathEdit: false,
		SupportsBuiltinStash:   true,
		SupportsSignalHandlers: true,
		SupportsShutdownHooks:  true,
	}

	// MemoryCapabilities for the in-memory engine.
	MemoryCapabilities = Capabilities{
		Name:                   "memory",
		SupportsCombinedArgv:   false,
		SupportsLegacyArgv:     true,
		SupportsSearchPathEdit: true,
		SupportsBuiltinStash:   true,
		SupportsSignalHandlers: false,
		SupportsShutdownHooks:  true,
	}
)

// GetCapabilities returns the capabilities for an engine by name.
// Uses the registry to look up capabilities registered by each engine package.
// Returns a zero Capabilities struct if the engine is unknown.
func GetCapabilities(engineName string) Capabilities {
	return DefaultRegistry.GetCapabilities(engineName)
}

// CapabilitiesProvider is implemented by engines that can report their
// capabilities directly.
type CapabilitiesProvider interface {
	Capabilities() Capabilities
}
