package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scripthost/scripthost/engine"
	configpkg "github.com/scripthost/scripthost/internal/runtime/config"
	errspkg "github.com/scripthost/scripthost/internal/runtime/errors"
	"github.com/scripthost/scripthost/internal/runtime/ids"
	loggingpkg "github.com/scripthost/scripthost/internal/runtime/logging"
)

const tracerName = "scripthost-lifecycle"

// HostDependencies holds the optional collaborators a Host can use.
// Leave fields nil to get the library defaults.
type HostDependencies struct {
	// Modules overrides the module registry consulted at startup.
	// Defaults to DefaultModules.
	Modules *ModuleRegistry
	// Hooks receive lifecycle callbacks.
	Hooks LifecycleHooks
	// Metrics overrides the metrics collector.
	Metrics *InterpreterMetrics
	// Registry overrides the engine registry used to build the engine.
	Registry *engine.Registry
	// Engine bypasses the registry entirely and uses the given engine.
	Engine engine.Engine
	// Registerer is where Prometheus collectors are registered.
	// Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Host owns the one-shot startup/shutdown sequence of an embedded scripting
// runtime: it brings the engine core up, applies the static module table,
// installs process arguments, and reconciles the internals singleton on the
// way down. A Host can be re-initialized after a clean Finalize; each cycle
// behaves as a fresh startup.
//
// Hosts are not safe for concurrent Initialize/Finalize: the embedded
// runtimes they wrap are non-reentrant across those transitions, so exactly
// one goroutine must drive the lifecycle.
type Host struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	engine  engine.Engine
	modules *ModuleRegistry
	hooks   LifecycleHooks
	metrics *InterpreterMetrics

	running       bool
	instanceID    string
	initializedAt time.Time

	metricsServer *http.Server
}

// InitOptions parameterizes Initialize. The zero value keeps the defaults:
// signal handlers installed, a synthetic single empty argument, and the cwd
// entry added to the module search path.
type InitOptions struct {
	// DisableSignalHandlers suppresses the engine's own signal-handler
	// installation.
	DisableSignalHandlers bool
	// Args is the raw byte-string argument vector. Empty installs exactly
	// one empty argument.
	Args [][]byte
	// SkipCwdPath leaves the cwd entry off the module search path.
	SkipCwdPath bool
}

// NewHost constructs a Host for the supplied configuration. Construction
// builds the engine but does not start it; call Initialize for that.
// Panics when construction fails; use TryNewHost for an error return.
func NewHost(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps HostDependencies) *Host {
	h, err := TryNewHost(conf, log, ctx, deps)
	if err != nil {
		panic(err)
	}
	return h
}

// TryNewHost is NewHost with an error return instead of a panic.
func TryNewHost(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps HostDependencies) (*Host, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		log = loggingpkg.NewNopLogger()
	}
	if err := conf.Validate(); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}

	log.Info("Creating interpreter host", loggingpkg.LogFields{
		"engine": conf.Engine,
	})

	eng := deps.Engine
	if eng == nil {
		registry := deps.Registry
		if registry == nil {
			registry = engine.DefaultRegistry
		}
		built, err := registry.Build(ctx, conf, loggingpkg.NewEngineAdapter(log))
		if err != nil {
			return nil, fmt.Errorf("scripthost: building engine: %w", err)
		}
		eng = built
	}

	modules := deps.Modules
	if modules == nil {
		modules = DefaultModules
	}
	if conf.MaxModules > 0 {
		modules.SetMaxModules(conf.MaxModules)
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewInterpreterMetrics(deps.Registerer)
	}
	if err := metrics.Register(); err != nil {
		return nil, fmt.Errorf("scripthost: registering metrics: %w", err)
	}

	return &Host{
		Conf:    conf,
		Logger:  log,
		engine:  eng,
		modules: modules,
		hooks:   deps.Hooks,
		metrics: metrics,
	}, nil
}

// Engine returns the engine backing this host.
func (h *Host) Engine() engine.Engine { return h.engine }

// Running reports whether the interpreter is currently initialized.
func (h *Host) Running() bool { return h.running }

// InstanceID returns the identity of the current interpreter instance, or
// empty when not running. A fresh ID is minted on every Initialize.
func (h *Host) InstanceID() string { return h.instanceID }

// Hooks returns a copy of the host's lifecycle hooks merged with extra.
func (h *Host) Hooks() LifecycleHooks { return h.hooks }

// Initialize starts the embedded runtime: engine core first, then the static
// module table, then the argument vector. Calling Initialize while already
// running is a misuse error and never double-starts the runtime.
//
// An engine whose core startup panics is not recovered here - that is the
// engine's own fatal path, and converting it into an error would hide a
// runtime already wedged half-started.
func (h *Host) Initialize(ctx context.Context, opts InitOptions) error {
	if h.running || h.engine.Running() {
		return errspkg.ErrAlreadyRunning
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "InitializeInterpreter")
	defer span.End()

	startedAt := time.Now()
	instanceID := ids.CreateULID()
	span.SetAttributes(
		attribute.String("interp.engine", h.engine.Name()),
		attribute.String("interp.instance_id", instanceID),
	)

	if err := h.engine.StartCore(ctx, engine.StartOptions{
		InstallSignalHandlers: !opts.DisableSignalHandlers,
	}); err != nil {
		h.metrics.RecordInitFailure(h.engine.Name())
		return fmt.Errorf("scripthost: engine core startup: %w", err)
	}

	// The registry is bound before the table is applied so a registration
	// racing startup can never slip in half-applied.
	h.modules.bind()

	lctx := LifecycleContext{
		InstanceID: instanceID,
		Engine:     h.engine.Name(),
		StartedAt:  startedAt,
	}

	for _, entry := range h.modules.Entries() {
		if err := h.engine.AppendStaticModule(entry.Name, h.wrapInit(entry.Name, entry.Init)); err != nil {
			h.abortStartup(ctx)
			h.metrics.RecordInitFailure(h.engine.Name())
			return fmt.Errorf("scripthost: appending module %q to import table: %w", entry.Name, err)
		}
		h.metrics.RecordModuleInstalled(h.engine.Name())
		if h.hooks.OnModuleInstalled != nil {
			h.hooks.OnModuleInstalled(lctx, entry.Name)
		}
	}

	// Create the internals block up front and mirror its slot into the
	// engine's builtin namespace, so the binding layer finds shared
	// metadata no matter which side asks first.
	getInternals(h.engine, instanceID)

	h.installArgv(ctx, opts.Args, !opts.SkipCwdPath)

	h.running = true
	h.instanceID = instanceID
	h.initializedAt = startedAt

	h.startMetricsServer()

	lctx.Modules = h.modules.Len()
	lctx.Duration = time.Since(startedAt)
	h.metrics.RecordInitialized(h.engine.Name(), lctx.Duration)
	if h.hooks.OnInitialized != nil {
		h.hooks.OnInitialized(lctx)
	}

	h.Logger.Info("Interpreter initialized", loggingpkg.LogFields{
		"engine":      h.engine.Name(),
		"instance_id": instanceID,
		"modules":     lctx.Modules,
	})
	return nil
}

// abortStartup unwinds a partially started engine after a fatal
// initialization error. Best effort.
func (h *Host) abortStartup(ctx context.Context) {
	h.modules.release()
	if err := h.engine.StopCore(ctx); err != nil {
		h.Logger.Error("Failed to stop engine core after startup error", err, loggingpkg.LogFields{
			"engine": h.engine.Name(),
		})
	}
}

// Finalize shuts the interpreter down and destroys the internals singleton.
// The singleton slot is located before engine shutdown but read only after
// it completes: destructors running during teardown may recreate the block,
// and the final value is the one that must be destroyed.
func (h *Host) Finalize(ctx context.Context) error {
	if !h.running {
		return errspkg.ErrNotRunning
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "FinalizeInterpreter")
	defer span.End()

	startedAt := time.Now()
	span.SetAttributes(
		attribute.String("interp.engine", h.engine.Name()),
		attribute.String("interp.instance_id", h.instanceID),
	)

	slot := locateInternalsSlot(h.engine)
	observed := *slot

	stopCtx, cancel := context.WithTimeout(ctx, h.Conf.GetShutdownTimeout())
	defer cancel()
	stopErr := h.engine.StopCore(stopCtx)

	// Re-read after shutdown: this must be the slot's final value.
	if block := *slot; block != nil {
		if block != observed {
			h.metrics.RecordInternalsRecreated(h.engine.Name())
			h.Logger.Debug("Internals singleton recreated during teardown", loggingpkg.LogFields{
				"engine": h.engine.Name(),
			})
		}
		*slot = nil
	}

	h.stopMetricsServer(ctx)
	h.modules.release()

	lctx := LifecycleContext{
		InstanceID: h.instanceID,
		Engine:     h.engine.Name(),
		Modules:    h.modules.Len(),
		StartedAt:  startedAt,
		Duration:   time.Since(startedAt),
	}

	h.running = false
	h.instanceID = ""
	h.initializedAt = time.Time{}

	h.metrics.RecordFinalized(h.engine.Name(), lctx.Duration)
	if h.hooks.OnFinalized != nil {
		h.hooks.OnFinalized(lctx)
	}

	h.Logger.Info("Interpreter finalized", loggingpkg.LogFields{
		"engine":      h.engine.Name(),
		"instance_id": lctx.InstanceID,
	})

	if stopErr != nil {
		return fmt.Errorf("scripthost: engine core shutdown: %w", stopErr)
	}
	return nil
}

// wrapInit guards a module initializer with the mandatory catch-and-convert
// boundary: initializer errors and panics both come out as an ImportError,
// which the engine translates into its native import-failure signal. A Go
// panic never unwinds through the engine's call frames.
func (h *Host) wrapInit(name string, init engine.ModuleInit) engine.ModuleInit {
	return func(m engine.Module) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &errspkg.ImportError{Module: name, Err: fmt.Errorf("initializer panic: %v", r)}
			}
			if err != nil {
				h.metrics.RecordModuleInitFailure(h.engine.Name(), name)
				if h.hooks.OnImportError != nil {
					h.hooks.OnImportError(name, err)
				}
			}
		}()

		if initErr := init(m); initErr != nil {
			return errspkg.NewImportError(name, initErr)
		}
		return nil
	}
}

func (h *Host) startMetricsServer() {
	if !h.Conf.MetricsEnabled || h.Conf.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: h.Conf.MetricsAddr, Handler: mux}
	h.metricsServer = srv

	h.Logger.Info("Starting metrics server", loggingpkg.LogFields{"address": h.Conf.MetricsAddr})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.Logger.Error("Metrics server failed", err, loggingpkg.LogFields{"address": srv.Addr})
		}
	}()
}

func (h *Host) stopMetricsServer(ctx context.Context) {
	if h.metricsServer == nil {
		return
	}
	if err := h.metricsServer.Shutdown(ctx); err != nil {
		h.Logger.Error("Metrics server shutdown failed", err, loggingpkg.LogFields{"address": h.metricsServer.Addr})
	}
	h.metricsServer = nil
}
