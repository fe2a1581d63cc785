package config

import (
	"errors"
	"fmt"
	"time"
)

// Config groups the settings required to initialise a Host. Each engine only
// uses the keys that are relevant to it.
type Config struct {
	// Engine selects the embedded scripting runtime. Supported values come
	// from the engine registry (for example "lua" or "memory"). Leave
	// empty to auto-select when exactly one engine is registered.
	Engine string

	// Lua configuration.
	// LuaSkipStdLibs starts the interpreter without opening the Lua
	// standard libraries.
	LuaSkipStdLibs bool
	// LuaRegistrySize is the initial registry size. Zero uses the engine default.
	LuaRegistrySize int
	// LuaCallStackSize is the call stack size. Zero uses the engine default.
	LuaCallStackSize int

	// ScriptPath is the directory scripts resolve relative imports from.
	// Empty means the process working directory.
	ScriptPath string

	// ArgvEncoding names the IANA charset used to decode raw process
	// arguments before they are handed to the engine. Empty derives the
	// charset from LC_ALL/LC_CTYPE/LANG, falling back to UTF-8.
	ArgvEncoding string

	// DisableArgvPathCompat skips the search-path compensation applied
	// after the legacy split argv form, for engines known not to prepend
	// the cwd entry.
	DisableArgvPathCompat bool

	// MaxModules caps the module registry size. Zero means unbounded.
	MaxModules int

	// ShutdownTimeout bounds engine core shutdown. Zero falls back to 30s.
	ShutdownTimeout time.Duration

	// Metrics configuration.
	MetricsEnabled bool
	// MetricsAddr is the listen address for the Prometheus endpoint
	// (for example ":2112"). Empty disables the endpoint even when
	// MetricsEnabled is set.
	MetricsAddr string
}

// DefaultShutdownTimeout is applied when Config.ShutdownTimeout is zero.
const DefaultShutdownTimeout = 30 * time.Second

// Getter methods to implement the engine.Config interface.
func (c *Config) GetEngine() string        { return c.Engine }
func (c *Config) GetLuaSkipStdLibs() bool  { return c.LuaSkipStdLibs }
func (c *Config) GetLuaRegistrySize() int  { return c.LuaRegistrySize }
func (c *Config) GetLuaCallStackSize() int { return c.LuaCallStackSize }
func (c *Config) GetScriptPath() string    { return c.ScriptPath }

// GetShutdownTimeout returns the configured shutdown timeout or the default.
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return DefaultShutdownTimeout
	}
	return c.ShutdownTimeout
}

// DefaultConfig returns a Config with library defaults. The engine is left
// empty so a single registered engine is picked up automatically.
func DefaultConfig() *Config {
	return &Config{
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Validate checks that the configuration is internally consistent.
// Returns an error describing any invalid configuration.
// Note: validation of engine names is lenient to allow custom registries.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateLua()...)
	errs = append(errs, c.validateLimits()...)

	return errors.Join(errs...)
}

// validateLua checks lua-specific tuning values.
func (c *Config) validateLua() []error {
	var errs []error
	if c.LuaRegistrySize < 0 {
		errs = append(errs, fmt.Errorf("lua: registry size cannot be negative, got %d", c.LuaRegistrySize))
	}
	if c.LuaCallStackSize < 0 {
		errs = append(errs, fmt.Errorf("lua: call stack size cannot be negative, got %d", c.LuaCallStackSize))
	}
	return errs
}

// validateLimits checks registry and shutdown limits.
func (c *Config) validateLimits() []error {
	var errs []error
	if c.MaxModules < 0 {
		errs = append(errs, fmt.Errorf("modules: max modules cannot be negative, got %d", c.MaxModules))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("shutdown: timeout cannot be negative"))
	}
	if c.MetricsEnabled && c.MetricsAddr == "" {
		errs = append(errs, errors.New("metrics: address is required when metrics are enabled"))
	}
	return errs
}

// ValidateConfig is a convenience wrapper for callers holding a *Config.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errors.New("config is required")
	}
	return c.Validate()
}
