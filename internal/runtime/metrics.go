package runtime

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InterpreterMetrics tracks interpreter lifecycle statistics.
type InterpreterMetrics struct {
	mu sync.RWMutex

	// Plain counters mirrored into snapshots
	counts MetricsSnapshot

	// Prometheus collectors
	initializationsTotal    *prometheus.CounterVec
	initFailuresTotal       *prometheus.CounterVec
	finalizationsTotal      *prometheus.CounterVec
	modulesInstalledTotal   *prometheus.CounterVec
	moduleInitFailuresTotal *prometheus.CounterVec
	argvSkippedTotal        *prometheus.CounterVec
	internalsRecreatedTotal *prometheus.CounterVec
	startupSecondsHist      *prometheus.HistogramVec
	shutdownSecondsHist     *prometheus.HistogramVec

	registerer prometheus.Registerer
	registered bool
}

// MetricsSnapshot provides a point-in-time view of interpreter metrics.
type MetricsSnapshot struct {
	Initializations    uint64    `json:"initializations"`
	InitFailures       uint64    `json:"init_failures"`
	Finalizations      uint64    `json:"finalizations"`
	ModulesInstalled   uint64    `json:"modules_installed"`
	ModuleInitFailures uint64    `json:"module_init_failures"`
	ArgvSkipped        uint64    `json:"argv_skipped"`
	InternalsRecreated uint64    `json:"internals_recreated"`
	CollectedAt        time.Time `json:"collected_at"`
}

// newInterpCounterVec creates a new counter vec with the standard
// scripthost/interp namespace.
func newInterpCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scripthost",
			Subsystem: "interp",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// newInterpHistogramVec creates a new histogram vec with the standard
// scripthost/interp namespace.
func newInterpHistogramVec(name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scripthost",
			Subsystem: "interp",
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// NewInterpreterMetrics creates a new interpreter metrics collector.
func NewInterpreterMetrics(registerer prometheus.Registerer) *InterpreterMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	durationBuckets := []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

	return &InterpreterMetrics{
		registerer:              registerer,
		initializationsTotal:    newInterpCounterVec("initializations_total", "Total number of successful interpreter initializations", []string{"engine"}),
		initFailuresTotal:       newInterpCounterVec("init_failures_total", "Total number of failed interpreter initializations", []string{"engine"}),
		finalizationsTotal:      newInterpCounterVec("finalizations_total", "Total number of interpreter finalizations", []string{"engine"}),
		modulesInstalledTotal:   newInterpCounterVec("modules_installed_total", "Total number of static modules applied to import tables", []string{"engine"}),
		moduleInitFailuresTotal: newInterpCounterVec("module_init_failures_total", "Total number of module initializer failures at import time", []string{"engine", "module"}),
		argvSkippedTotal:        newInterpCounterVec("argv_skipped_total", "Total number of argument installations skipped due to decode failures", []string{"engine"}),
		internalsRecreatedTotal: newInterpCounterVec("internals_recreated_total", "Total number of internals singletons found recreated after engine shutdown", []string{"engine"}),
		startupSecondsHist:      newInterpHistogramVec("startup_duration_seconds", "Duration of interpreter startup", durationBuckets, []string{"engine"}),
		shutdownSecondsHist:     newInterpHistogramVec("shutdown_duration_seconds", "Duration of interpreter shutdown", durationBuckets, []string{"engine"}),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *InterpreterMetrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.initializationsTotal,
		m.initFailuresTotal,
		m.finalizationsTotal,
		m.modulesInstalledTotal,
		m.moduleInitFailuresTotal,
		m.argvSkippedTotal,
		m.internalsRecreatedTotal,
		m.startupSecondsHist,
		m.shutdownSecondsHist,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			// Check if it's already registered (not an error)
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

// RecordInitialized records a successful interpreter startup.
func (m *InterpreterMetrics) RecordInitialized(engine string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.Initializations++
	m.initializationsTotal.WithLabelValues(engine).Inc()
	m.startupSecondsHist.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordInitFailure records a failed interpreter startup.
func (m *InterpreterMetrics) RecordInitFailure(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.InitFailures++
	m.initFailuresTotal.WithLabelValues(engine).Inc()
}

// RecordFinalized records an interpreter shutdown.
func (m *InterpreterMetrics) RecordFinalized(engine string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.Finalizations++
	m.finalizationsTotal.WithLabelValues(engine).Inc()
	m.shutdownSecondsHist.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordModuleInstalled records a static module applied to an import table.
func (m *InterpreterMetrics) RecordModuleInstalled(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.ModulesInstalled++
	m.modulesInstalledTotal.WithLabelValues(engine).Inc()
}

// RecordModuleInitFailure records a module initializer failing at import time.
func (m *InterpreterMetrics) RecordModuleInitFailure(engine, module string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.ModuleInitFailures++
	m.moduleInitFailuresTotal.WithLabelValues(engine, module).Inc()
}

// RecordArgvSkipped records an argument installation skipped after a decode
// failure.
func (m *InterpreterMetrics) RecordArgvSkipped(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.ArgvSkipped++
	m.argvSkippedTotal.WithLabelValues(engine).Inc()
}

// RecordInternalsRecreated records an internals singleton observed recreated
// or relocated after engine shutdown.
func (m *InterpreterMetrics) RecordInternalsRecreated(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts.InternalsRecreated++
	m.internalsRecreatedTotal.WithLabelValues(engine).Inc()
}

// Snapshot returns a point-in-time snapshot of all interpreter metrics.
func (m *InterpreterMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := m.counts
	snapshot.CollectedAt = time.Now()
	return snapshot
}

// Reset resets all metrics (useful for testing).
func (m *InterpreterMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts = MetricsSnapshot{}
	m.initializationsTotal.Reset()
	m.initFailuresTotal.Reset()
	m.finalizationsTotal.Reset()
	m.modulesInstalledTotal.Reset()
	m.moduleInitFailuresTotal.Reset()
	m.argvSkippedTotal.Reset()
	m.internalsRecreatedTotal.Reset()
	m.startupSecondsHist.Reset()
	m.shutdownSecondsHist.Reset()
}
