package runtime

import (
	"time"
)

// LifecycleContext provides information about an interpreter lifecycle event
// to hooks.
type LifecycleContext struct {
	// InstanceID identifies the interpreter instance (one per Initialize).
	InstanceID string
	// Engine is the name of the engine backing the interpreter.
	Engine string
	// Modules is the number of static modules applied to the import table.
	Modules int
	// StartedAt is when the transition began.
	StartedAt time.Time
	// Duration is how long the transition took.
	Duration time.Duration
}

// LifecycleHooks defines callbacks for interpreter lifecycle events.
// All hooks are optional - nil hooks are simply not called.
type LifecycleHooks struct {
	// OnInitialized is called after a successful Initialize, once the
	// import table and arguments have been applied.
	OnInitialized func(ctx LifecycleContext)

	// OnFinalized is called after Finalize has shut the engine core down
	// and reconciled the internals singleton.
	OnFinalized func(ctx LifecycleContext)

	// OnModuleInstalled is called for each static module appended to the
	// engine's import table during Initialize.
	OnModuleInstalled func(ctx LifecycleContext, module string)

	// OnImportError is called when a module initializer fails or panics
	// at import time. The error is always an *errors.ImportError.
	OnImportError func(module string, err error)
}

// Merge combines two LifecycleHooks, creating a new LifecycleHooks that calls
// both. The hooks from 'other' are called after the hooks from 'h'.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnInitialized:     chainLifecycleHooks(h.OnInitialized, other.OnInitialized),
		OnFinalized:       chainLifecycleHooks(h.OnFinalized, other.OnFinalized),
		OnModuleInstalled: chainModuleHooks(h.OnModuleInstalled, other.OnModuleInstalled),
		OnImportError:     chainImportErrorHooks(h.OnImportError, other.OnImportError),
	}
}

func chainLifecycleHooks(a, b func(LifecycleContext)) func(LifecycleContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx LifecycleContext) {
		a(ctx)
		b(ctx)
	}
}

func chainModuleHooks(a, b func(LifecycleContext, string)) func(LifecycleContext, string) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx LifecycleContext, module string) {
		a(ctx, module)
		b(ctx, module)
	}
}

func chainImportErrorHooks(a, b func(string, error)) func(string, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(module string, err error) {
		a(module, err)
		b(module, err)
	}
}

// LoggingHooks returns pre-built hooks that log lifecycle events.
func LoggingHooks(logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
}) LifecycleHooks {
	return LifecycleHooks{
		OnInitialized: func(ctx LifecycleContext) {
			logger.Info("Interpreter initialized", map[string]any{
				"instance_id": ctx.InstanceID,
				"engine":      ctx.Engine,
				"modules":     ctx.Modules,
				"duration_ms": ctx.Duration.Milliseconds(),
			})
		},
		OnFinalized: func(ctx LifecycleContext) {
			logger.Info("Interpreter finalized", map[string]any{
				"instance_id": ctx.InstanceID,
				"engine":      ctx.Engine,
				"duration_ms": ctx.Duration.Milliseconds(),
			})
		},
		OnImportError: func(module string, err error) {
			logger.Error("Module import failed", err, map[string]any{
				"module": module,
			})
		},
	}
}

// AlertingHooks returns pre-built hooks that trigger alerts on import errors.
func AlertingHooks(alertFunc func(module string, err error)) LifecycleHooks {
	return LifecycleHooks{
		OnImportError: alertFunc,
	}
}
