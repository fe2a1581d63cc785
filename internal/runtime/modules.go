package runtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/scripthost/scripthost/engine"
	errspkg "github.com/scripthost/scripthost/internal/runtime/errors"
)

// ModuleRegistration is one entry of the static import table: a module name
// and the initializer that populates its module object.
type ModuleRegistration struct {
	Name         string
	Init         engine.ModuleInit
	RegisteredAt time.Time
}

// ModuleRegistry collects static module registrations before interpreter
// startup. It is append-only: entries persist for the process lifetime, and
// same-name entries are not deduplicated here — the engine surfaces that
// conflict when the table is applied at startup.
type ModuleRegistry struct {
	mu      sync.Mutex
	entries []ModuleRegistration
	max     int
	bound   bool
}

// DefaultModules is the process-wide module registry. Package init functions
// register into it via RegisterModule, strictly before any Initialize call.
var DefaultModules = NewModuleRegistry(0)

// NewModuleRegistry creates a registry capped at maxModules entries.
// Zero means unbounded.
func NewModuleRegistry(maxModules int) *ModuleRegistry {
	return &ModuleRegistry{max: maxModules}
}

// Register appends a (name, initializer) pair. Registration is only
// meaningful before interpreter startup: once the registry is bound to a
// running interpreter it fails with ErrRegisterAfterInit, and the table is
// left unchanged.
func (r *ModuleRegistry) Register(name string, init engine.ModuleInit) error {
	if name == "" {
		return errspkg.ErrModuleNameRequired
	}
	if init == nil {
		return errspkg.ErrModuleInitRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bound {
		return fmt.Errorf("%w: %q", errspkg.ErrRegisterAfterInit, name)
	}
	if r.max > 0 && len(r.entries) >= r.max {
		return fmt.Errorf("%w: limit %d reached", errspkg.ErrRegistryFull, r.max)
	}

	r.entries = append(r.entries, ModuleRegistration{
		Name:         name,
		Init:         init,
		RegisteredAt: time.Now(),
	})
	return nil
}

// MustRegister is Register for static-initialization contexts, where a failed
// registration is a programmer error with nowhere to go but up.
func (r *ModuleRegistry) MustRegister(name string, init engine.ModuleInit) {
	if err := r.Register(name, init); err != nil {
		panic(err)
	}
}

// Lookup returns the first registration under name.
func (r *ModuleRegistry) Lookup(name string) (ModuleRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return ModuleRegistration{}, false
}

// Names returns the registered module names in registration order.
func (r *ModuleRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		names = append(names, entry.Name)
	}
	return names
}

// Len returns the number of registered entries.
func (r *ModuleRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns a copy of the registration table.
func (r *ModuleRegistry) Entries() []ModuleRegistration {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]ModuleRegistration, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// SetMaxModules adjusts the registry capacity. Zero means unbounded. Entries
// already registered are never evicted.
func (r *ModuleRegistry) SetMaxModules(max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.max = max
}

// bind marks the registry as attached to a running interpreter, after which
// Register fails. release undoes it once the interpreter is finalized.
func (r *ModuleRegistry) bind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound = true
}

func (r *ModuleRegistry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound = false
}

// RegisterModule appends a module to the process-wide registry. Call it from
// a package init function so the table is fully populated before startup.
func RegisterModule(name string, init engine.ModuleInit) error {
	return DefaultModules.Register(name, init)
}

// MustRegisterModule is RegisterModule but panics on failure.
func MustRegisterModule(name string, init engine.ModuleInit) {
	DefaultModules.MustRegister(name, init)
}
