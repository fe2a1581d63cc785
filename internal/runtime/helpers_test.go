package runtime

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/scripthost/scripthost/engine"
	"github.com/scripthost/scripthost/engine/memory"
	configpkg "github.com/scripthost/scripthost/internal/runtime/config"
	loggingpkg "github.com/scripthost/scripthost/internal/runtime/logging"
)

// newTestHost builds a host around a fresh memory engine, an isolated module
// registry, and an isolated Prometheus registry. The internals slot is reset
// after the test so state never leaks across tests.
func newTestHost(t *testing.T, cfg *configpkg.Config, deps HostDependencies) (*Host, *memory.Engine) {
	t.Helper()

	mem := memory.New()
	if deps.Engine == nil {
		deps.Engine = mem
	} else {
		mem, _ = deps.Engine.(*memory.Engine)
	}
	if deps.Modules == nil {
		deps.Modules = NewModuleRegistry(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = NewInterpreterMetrics(prometheus.NewRegistry())
	}
	if cfg == nil {
		cfg = configpkg.DefaultConfig()
		cfg.Engine = memory.EngineName
	}

	host, err := TryNewHost(cfg, loggingpkg.NewNopLogger(), context.Background(), deps)
	require.NoError(t, err)

	resetInternals(t)
	return host, mem
}

func newTestRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func resetInternals(t *testing.T) {
	t.Helper()
	internalsPtr = nil
	t.Cleanup(func() { internalsPtr = nil })
}

// combinedArgvEngine wraps the memory engine with the combined argv form so
// tests can exercise both installation branches.
type combinedArgvEngine struct {
	*memory.Engine
	argv       []string
	addCwd     bool
	installs   int
	installErr error
}

func (c *combinedArgvEngine) InstallArgv(ctx context.Context, args []string, addCwdToPath bool) error {
	if c.installErr != nil {
		return c.installErr
	}
	c.argv = append([]string(nil), args...)
	c.addCwd = addCwdToPath
	c.installs++
	return nil
}

var _ engine.ArgvInstaller = (*combinedArgvEngine)(nil)
