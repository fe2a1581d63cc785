package runtime

import (
	"time"

	"github.com/scripthost/scripthost/engine"
)

// InternalsCapsuleID is the fixed identifier the internals slot is stashed
// under in an engine's builtin namespace. Versioned so incompatible layouts
// never alias each other across library versions.
const InternalsCapsuleID = "__scripthost_internals_v1__"

// internals is the process-wide metadata block the binding layer shares
// across packages: type information, the owning interpreter instance, and
// bookkeeping timestamps. It is reached through a double-indirection slot so
// the slot itself can be located without forcing creation of the block.
type internals struct {
	instanceID string
	createdAt  time.Time
	types      map[string]any
}

var internalsPtr *internals

// internalsSlot returns the address of the primary process-wide slot. It
// never creates the block.
func internalsSlot() **internals {
	return &internalsPtr
}

// getInternals returns the process-wide block, creating it on first use.
// When eng supports a builtin stash, the slot address is mirrored there under
// InternalsCapsuleID so the block stays recoverable from the engine side even
// when the primary slot is not the copy in play.
func getInternals(eng engine.Engine, instanceID string) *internals {
	slot := internalsSlot()
	if *slot == nil {
		*slot = &internals{
			instanceID: instanceID,
			createdAt:  time.Now(),
			types:      make(map[string]any),
		}
	}
	if eng != nil {
		if stash, ok := eng.(engine.BuiltinStash); ok {
			_ = stash.StashBuiltin(InternalsCapsuleID, engine.Capsule{
				ID:    InternalsCapsuleID,
				Value: slot,
			})
		}
	}
	return *slot
}

// locateInternalsSlot finds the live slot without creating the block. The
// builtin capsule is preferred over the primary slot when present and of the
// expected type: teardown may have recreated or relocated the singleton, and
// the capsule reflects where it actually lives.
func locateInternalsSlot(eng engine.Engine) **internals {
	if eng != nil {
		if stash, ok := eng.(engine.BuiltinStash); ok {
			if c, found := stash.LookupBuiltin(InternalsCapsuleID); found && c.ID == InternalsCapsuleID {
				if slot, ok := c.Value.(**internals); ok && slot != nil {
					return slot
				}
			}
		}
	}
	return internalsSlot()
}
