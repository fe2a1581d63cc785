package runtime

import (
	"io"
	"time"

	"github.com/scripthost/scripthost/engine"
	"github.com/scripthost/scripthost/internal/runtime/jsoncodec"
)

// ModuleInfo describes one static module registration for introspection.
type ModuleInfo struct {
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RuntimeSnapshot is a point-in-time view of a host, suitable for JSON
// export to dashboards and debug endpoints.
type RuntimeSnapshot struct {
	InstanceID    string              `json:"instance_id,omitempty"`
	Engine        string              `json:"engine"`
	Capabilities  engine.Capabilities `json:"capabilities"`
	Running       bool                `json:"running"`
	Modules       []ModuleInfo        `json:"modules"`
	Metrics       MetricsSnapshot     `json:"metrics"`
	InitializedAt time.Time           `json:"initialized_at,omitempty"`
	CollectedAt   time.Time           `json:"collected_at"`
}

// Snapshot collects the host's current state.
func (h *Host) Snapshot() RuntimeSnapshot {
	caps := engine.Capabilities{Name: h.engine.Name()}
	if provider, ok := h.engine.(engine.CapabilitiesProvider); ok {
		caps = provider.Capabilities()
	}

	entries := h.modules.Entries()
	modules := make([]ModuleInfo, 0, len(entries))
	for _, entry := range entries {
		modules = append(modules, ModuleInfo{
			Name:         entry.Name,
			RegisteredAt: entry.RegisteredAt,
		})
	}

	return RuntimeSnapshot{
		InstanceID:    h.instanceID,
		Engine:        h.engine.Name(),
		Capabilities:  caps,
		Running:       h.running,
		Modules:       modules,
		Metrics:       h.metrics.Snapshot(),
		InitializedAt: h.initializedAt,
		CollectedAt:   time.Now(),
	}
}

// WriteSnapshot writes the snapshot as JSON to w.
func (h *Host) WriteSnapshot(w io.Writer) error {
	return jsoncodec.Encode(w, h.Snapshot())
}
