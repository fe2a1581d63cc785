package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scripthost/scripthost/engine"
	"github.com/scripthost/scripthost/engine/memory"
)

func startedMemoryEngine(t *testing.T) *memory.Engine {
	t.Helper()
	mem := memory.New()
	require.NoError(t, mem.StartCore(context.Background(), engine.StartOptions{}))
	t.Cleanup(func() {
		if mem.Running() {
			_ = mem.StopCore(context.Background())
		}
	})
	return mem
}

func TestInternalsSlotDoesNotCreate(t *testing.T) {
	resetInternals(t)

	slot := internalsSlot()
	require.NotNil(t, slot)
	assert.Nil(t, *slot, "locating the slot must not create the block")
}

func TestGetInternalsCreatesOnce(t *testing.T) {
	resetInternals(t)
	mem := startedMemoryEngine(t)

	first := getInternals(mem, "instance-1")
	require.NotNil(t, first)
	assert.Equal(t, "instance-1", first.instanceID)
	assert.False(t, first.createdAt.IsZero())

	// A second call returns the same block; the instance ID is not rewritten.
	second := getInternals(mem, "instance-2")
	assert.Same(t, first, second)
	assert.Equal(t, "instance-1", second.instanceID)
}

func TestGetInternalsStashesCapsule(t *testing.T) {
	resetInternals(t)
	mem := startedMemoryEngine(t)

	getInternals(mem, "instance-1")

	c, ok := mem.LookupBuiltin(InternalsCapsuleID)
	require.True(t, ok)
	assert.Equal(t, InternalsCapsuleID, c.ID)

	slot, ok := c.Value.(**internals)
	require.True(t, ok)
	assert.Same(t, internalsPtr, *slot)
}

func TestGetInternalsNilEngine(t *testing.T) {
	resetInternals(t)

	block := getInternals(nil, "instance-1")
	require.NotNil(t, block)
	assert.Same(t, block, internalsPtr)
}

func TestLocateInternalsSlotPrefersCapsule(t *testing.T) {
	resetInternals(t)
	mem := startedMemoryEngine(t)

	// A relocated singleton: the capsule points at a different slot than
	// the primary one.
	relocated := &internals{instanceID: "relocated"}
	relocatedSlot := &relocated
	require.NoError(t, mem.StashBuiltin(InternalsCapsuleID, engine.Capsule{
		ID:    InternalsCapsuleID,
		Value: relocatedSlot,
	}))

	slot := locateInternalsSlot(mem)
	assert.Same(t, relocatedSlot, slot)
	assert.Equal(t, "relocated", (*slot).instanceID)
}

func TestLocateInternalsSlotFallsBackToPrimary(t *testing.T) {
	resetInternals(t)
	mem := startedMemoryEngine(t)

	t.Run("nothing stashed", func(t *testing.T) {
		assert.Same(t, internalsSlot(), locateInternalsSlot(mem))
	})

	t.Run("capsule of unexpected type", func(t *testing.T) {
		require.NoError(t, mem.StashBuiltin(InternalsCapsuleID, engine.Capsule{
			ID:    InternalsCapsuleID,
			Value: "not a slot",
		}))
		assert.Same(t, internalsSlot(), locateInternalsSlot(mem))
	})

	t.Run("nil engine", func(t *testing.T) {
		assert.Same(t, internalsSlot(), locateInternalsSlot(nil))
	})

	t.Run("engine without stash support", func(t *testing.T) {
		assert.Same(t, internalsSlot(), locateInternalsSlot(stashlessEngine{}))
	})
}

// stashlessEngine implements only the core Engine interface.
type stashlessEngine struct{}

func (stashlessEngine) Name() string                                                  { return "stashless" }
func (stashlessEngine) StartCore(ctx context.Context, opts engine.StartOptions) error { return nil }
func (stashlessEngine) StopCore(ctx context.Context) error                            { return nil }
func (stashlessEngine) Running() bool                                                 { return false }
func (stashlessEngine) AppendStaticModule(name string, init engine.ModuleInit) error  { return nil }
