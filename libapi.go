package scripthost

import (
	enginepkg "github.com/scripthost/scripthost/engine"
	runtimepkg "github.com/scripthost/scripthost/internal/runtime"
	configpkg "github.com/scripthost/scripthost/internal/runtime/config"
	errspkg "github.com/scripthost/scripthost/internal/runtime/errors"
	idspkg "github.com/scripthost/scripthost/internal/runtime/ids"
	jsoncodec "github.com/scripthost/scripthost/internal/runtime/jsoncodec"
	loggingpkg "github.com/scripthost/scripthost/internal/runtime/logging"
)

type (
	Config           = configpkg.Config
	Host             = runtimepkg.Host
	HostDependencies = runtimepkg.HostDependencies
	InitOptions      = runtimepkg.InitOptions
	Guard            = runtimepkg.Guard

	ModuleRegistry     = runtimepkg.ModuleRegistry
	ModuleRegistration = runtimepkg.ModuleRegistration

	// Engine boundary
	Engine       = enginepkg.Engine
	Module       = enginepkg.Module
	ModuleInit   = enginepkg.ModuleInit
	Capsule      = enginepkg.Capsule
	Capabilities = enginepkg.Capabilities
	EngineConfig = enginepkg.Config

	// Lifecycle hooks
	LifecycleContext = runtimepkg.LifecycleContext
	LifecycleHooks   = runtimepkg.LifecycleHooks

	// Interpreter metrics
	InterpreterMetrics = runtimepkg.InterpreterMetrics
	MetricsSnapshot    = runtimepkg.MetricsSnapshot

	// Introspection
	RuntimeSnapshot = runtimepkg.RuntimeSnapshot
	ModuleInfo      = runtimepkg.ModuleInfo

	LogFields                 = loggingpkg.LogFields
	ServiceLogger             = loggingpkg.ServiceLogger
	EntryLoggerAdapter[T any] = loggingpkg.EntryLoggerAdapter[T]

	ImportError           = errspkg.ImportError
	ConfigValidationError = errspkg.ConfigValidationError
)

var (
	NewHost        = runtimepkg.NewHost
	TryNewHost     = runtimepkg.TryNewHost
	NewGuard       = runtimepkg.NewGuard
	DefaultConfig  = configpkg.DefaultConfig
	ValidateConfig = configpkg.ValidateConfig

	// Module registration (call from package init, before Initialize)
	RegisterModule     = runtimepkg.RegisterModule
	MustRegisterModule = runtimepkg.MustRegisterModule
	NewModuleRegistry  = runtimepkg.NewModuleRegistry
	DefaultModules     = runtimepkg.DefaultModules

	// Default host lifecycle
	Initialize = runtimepkg.Initialize
	Finalize   = runtimepkg.Finalize
	Running    = runtimepkg.Running
	Default    = runtimepkg.Default
	SetDefault = runtimepkg.SetDefault

	// Argument helpers
	Argv = runtimepkg.Argv

	// Lifecycle hooks
	LoggingHooks  = runtimepkg.LoggingHooks
	AlertingHooks = runtimepkg.AlertingHooks

	// Interpreter metrics
	NewInterpreterMetrics = runtimepkg.NewInterpreterMetrics

	// Logging
	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewNopLogger         = loggingpkg.NewNopLogger

	// Engine registry
	DefaultEngineRegistry          = enginepkg.DefaultRegistry
	NewEngineRegistry              = enginepkg.NewRegistry
	RegisterEngine                 = enginepkg.Register
	RegisterEngineWithCapabilities = enginepkg.RegisterWithCapabilities
	GetEngineCapabilities          = enginepkg.GetCapabilities

	// IDs
	CreateULID = idspkg.CreateULID

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	ErrAlreadyRunning     = errspkg.ErrAlreadyRunning
	ErrNotRunning         = errspkg.ErrNotRunning
	ErrRegisterAfterInit  = errspkg.ErrRegisterAfterInit
	ErrRegistryFull       = errspkg.ErrRegistryFull
	ErrModuleNameRequired = errspkg.ErrModuleNameRequired
	ErrModuleInitRequired = errspkg.ErrModuleInitRequired
	ErrEngineRequired     = errspkg.ErrEngineRequired
	ErrConfigRequired     = errspkg.ErrConfigRequired
	ErrHostRequired       = errspkg.ErrHostRequired
)

// NewEntryServiceLogger wraps an entry-style logger (for example a
// logrus.Entry) so it can be supplied to NewHost. Generic functions cannot be
// aliased in a var block, so this thin wrapper forwards explicitly.
func NewEntryServiceLogger[T loggingpkg.EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}
