package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scripthost/scripthost/engine"
)

func startedEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	require.NoError(t, e.StartCore(context.Background(), engine.StartOptions{}))
	t.Cleanup(func() {
		if e.Running() {
			_ = e.StopCore(context.Background())
		}
	})
	return e
}

func TestEngineIsRegistered(t *testing.T) {
	assert.True(t, engine.DefaultRegistry.Has(EngineName))
	assert.Equal(t, engine.MemoryCapabilities, engine.GetCapabilities(EngineName))
}

func TestBuild(t *testing.T) {
	eng, err := Build(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineName, eng.Name())
	assert.False(t, eng.Running())
}

func TestStartStopCore(t *testing.T) {
	e := New()
	ctx := context.Background()

	assert.False(t, e.Running())
	require.NoError(t, e.StartCore(ctx, engine.StartOptions{}))
	assert.True(t, e.Running())

	assert.Error(t, e.StartCore(ctx, engine.StartOptions{}), "double start is an engine error")

	require.NoError(t, e.StopCore(ctx))
	assert.False(t, e.Running())

	assert.Error(t, e.StopCore(ctx), "stop while stopped is an engine error")
}

func TestStartCoreResetsState(t *testing.T) {
	e := startedEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AppendStaticModule("demo", func(m engine.Module) error { return nil }))
	require.NoError(t, e.SetArgv(ctx, []string{"x"}))
	require.NoError(t, e.StashBuiltin("cap", engine.Capsule{ID: "cap"}))

	require.NoError(t, e.StopCore(ctx))
	require.NoError(t, e.StartCore(ctx, engine.StartOptions{}))

	assert.Empty(t, e.ImportTable())
	assert.Empty(t, e.Argv())
	assert.Empty(t, e.SearchPath())
	_, ok := e.LookupBuiltin("cap")
	assert.False(t, ok)
}

func TestAppendStaticModule(t *testing.T) {
	e := startedEngine(t)

	require.NoError(t, e.AppendStaticModule("demo", func(m engine.Module) error {
		return m.Set("answer", 42)
	}))
	assert.Equal(t, []string{"demo"}, e.ImportTable())

	err := e.AppendStaticModule("demo", func(m engine.Module) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in import table")

	assert.Error(t, e.AppendStaticModule("", nil))
}

func TestAppendStaticModuleNotRunning(t *testing.T) {
	e := New()
	assert.Error(t, e.AppendStaticModule("demo", func(m engine.Module) error { return nil }))
}

func TestImport(t *testing.T) {
	e := startedEngine(t)

	calls := 0
	require.NoError(t, e.AppendStaticModule("demo", func(m engine.Module) error {
		calls++
		return m.Set("answer", 42)
	}))

	mod, err := e.Import("demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", mod.Name())
	value, ok := mod.Value("answer")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	// Cached on second import: the initializer runs once.
	again, err := e.Import("demo")
	require.NoError(t, err)
	assert.Same(t, mod, again)
	assert.Equal(t, 1, calls)
}

func TestImportUnknownModule(t *testing.T) {
	e := startedEngine(t)

	_, err := e.Import("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestImportInitializerError(t *testing.T) {
	e := startedEngine(t)

	initErr := errors.New("boom")
	require.NoError(t, e.AppendStaticModule("broken", func(m engine.Module) error {
		return initErr
	}))

	_, err := e.Import("broken")
	assert.ErrorIs(t, err, initErr)

	// A failed import is not cached; the initializer runs again next time.
	_, err = e.Import("broken")
	assert.ErrorIs(t, err, initErr)
}

func TestSetArgvPrependsCwdEntry(t *testing.T) {
	e := startedEngine(t)
	ctx := context.Background()

	require.NoError(t, e.SetArgv(ctx, []string{"main.lua", "-v"}))
	assert.Equal(t, []string{"main.lua", "-v"}, e.Argv())
	assert.Equal(t, []string{"."}, e.SearchPath())
}

func TestRemoveFirstSearchPath(t *testing.T) {
	e := startedEngine(t)
	ctx := context.Background()

	assert.Error(t, e.RemoveFirstSearchPath(ctx), "empty search path")

	require.NoError(t, e.SetArgv(ctx, nil))
	require.NoError(t, e.RemoveFirstSearchPath(ctx))
	assert.Empty(t, e.SearchPath())
}

func TestBuiltinStash(t *testing.T) {
	e := startedEngine(t)

	c := engine.Capsule{ID: "cap", Value: 42}
	require.NoError(t, e.StashBuiltin("cap", c))

	got, ok := e.LookupBuiltin("cap")
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, ok = e.LookupBuiltin("missing")
	assert.False(t, ok)
}

func TestShutdownHooks(t *testing.T) {
	e := startedEngine(t)
	ctx := context.Background()

	var order []string
	e.OnShutdown(func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	hookErr := errors.New("hook failed")
	e.OnShutdown(func(ctx context.Context) error {
		order = append(order, "second")
		return hookErr
	})

	err := e.StopCore(ctx)
	assert.ErrorIs(t, err, hookErr)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.False(t, e.Running(), "engine stops even when hooks fail")

	// Hooks do not carry over to the next run.
	require.NoError(t, e.StartCore(ctx, engine.StartOptions{}))
	require.NoError(t, e.StopCore(ctx))
	assert.Len(t, order, 2)
}

func TestModuleSetValidation(t *testing.T) {
	m := &Module{name: "demo", values: map[string]any{}}
	assert.Error(t, m.Set("", 1))
	assert.NoError(t, m.Set("k", "v"))
}
