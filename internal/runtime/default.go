package runtime

import (
	"context"
	"log/slog"
	"sync"

	configpkg "github.com/scripthost/scripthost/internal/runtime/config"
	loggingpkg "github.com/scripthost/scripthost/internal/runtime/logging"
)

var (
	defaultHostMu sync.Mutex
	defaultHost   *Host
)

// Default returns the process-wide host, creating it from DefaultConfig on
// first use. With exactly one engine registered, that engine is selected
// automatically.
func Default() *Host {
	defaultHostMu.Lock()
	defer defaultHostMu.Unlock()

	if defaultHost == nil {
		defaultHost = NewHost(
			configpkg.DefaultConfig(),
			loggingpkg.NewSlogServiceLogger(slog.Default()),
			context.Background(),
			HostDependencies{},
		)
	}
	return defaultHost
}

// SetDefault replaces the process-wide host. Pass nil to reset, so the next
// Default call rebuilds it from DefaultConfig.
func SetDefault(h *Host) {
	defaultHostMu.Lock()
	defer defaultHostMu.Unlock()
	defaultHost = h
}

// Initialize starts the default host's interpreter.
func Initialize(ctx context.Context, opts InitOptions) error {
	return Default().Initialize(ctx, opts)
}

// Finalize shuts the default host's interpreter down.
func Finalize(ctx context.Context) error {
	return Default().Finalize(ctx)
}

// Running reports whether the default host's interpreter is initialized. It
// never creates the default host as a side effect.
func Running() bool {
	defaultHostMu.Lock()
	defer defaultHostMu.Unlock()

	if defaultHost == nil {
		return false
	}
	return defaultHost.Running()
}
