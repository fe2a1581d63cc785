package runtime

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreterMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInterpreterMetrics(reg)

	require.NoError(t, m.Register())
	// Safe to call multiple times.
	require.NoError(t, m.Register())
}

func TestInterpreterMetricsRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewInterpreterMetrics(reg)
	require.NoError(t, first.Register())

	// A second collector on the same registry collides with different
	// collector instances.
	second := NewInterpreterMetrics(reg)
	assert.Error(t, second.Register())
}

func TestInterpreterMetricsRecordAndSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInterpreterMetrics(reg)
	require.NoError(t, m.Register())

	m.RecordInitialized("memory", 5*time.Millisecond)
	m.RecordInitialized("memory", 3*time.Millisecond)
	m.RecordInitFailure("memory")
	m.RecordFinalized("memory", time.Millisecond)
	m.RecordModuleInstalled("memory")
	m.RecordModuleInitFailure("memory", "demo")
	m.RecordArgvSkipped("memory")
	m.RecordInternalsRecreated("memory")

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Initializations)
	assert.Equal(t, uint64(1), snap.InitFailures)
	assert.Equal(t, uint64(1), snap.Finalizations)
	assert.Equal(t, uint64(1), snap.ModulesInstalled)
	assert.Equal(t, uint64(1), snap.ModuleInitFailures)
	assert.Equal(t, uint64(1), snap.ArgvSkipped)
	assert.Equal(t, uint64(1), snap.InternalsRecreated)
	assert.False(t, snap.CollectedAt.IsZero())

	assert.Equal(t, float64(2), testutil.ToFloat64(m.initializationsTotal.WithLabelValues("memory")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.moduleInitFailuresTotal.WithLabelValues("memory", "demo")))
}

func TestInterpreterMetricsReset(t *testing.T) {
	m := NewInterpreterMetrics(prometheus.NewRegistry())
	require.NoError(t, m.Register())

	m.RecordInitialized("memory", time.Millisecond)
	m.RecordArgvSkipped("memory")
	require.NotZero(t, m.Snapshot().Initializations)

	m.Reset()

	snap := m.Snapshot()
	assert.Zero(t, snap.Initializations)
	assert.Zero(t, snap.ArgvSkipped)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.initializationsTotal.WithLabelValues("memory")))
}

func TestNewInterpreterMetricsNilRegisterer(t *testing.T) {
	m := NewInterpreterMetrics(nil)
	assert.NotNil(t, m)
	assert.Equal(t, prometheus.DefaultRegisterer, m.registerer)
}
