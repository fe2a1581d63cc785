package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlogServiceLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogServiceLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Info("starting interpreter", LogFields{"engine": "lua"})
	assert.Contains(t, buf.String(), `"engine":"lua"`)
	assert.Contains(t, buf.String(), "starting interpreter")

	buf.Reset()
	logger.Error("startup failed", errors.New("boom"), LogFields{"engine": "lua"})
	assert.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	logger.Debug("argv skipped", nil)
	assert.Contains(t, buf.String(), "argv skipped")
}

func TestNewSlogServiceLoggerNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewSlogServiceLogger(nil) })
}

func TestSlogServiceLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogServiceLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	child := logger.With(LogFields{"instance_id": "abc"})
	child.Info("hello", nil)
	assert.Contains(t, buf.String(), `"instance_id":"abc"`)

	// With(nil) returns the same logger.
	assert.Equal(t, logger, logger.With(nil))
}

// fakeEntry records calls the way a logrus entry would.
type fakeEntry struct {
	lines  *[]string
	fields map[string]any
	err    error
}

func newFakeEntry() fakeEntry {
	return fakeEntry{lines: &[]string{}, fields: map[string]any{}}
}

func (f fakeEntry) log(level string, args ...any) {
	line := level + ": " + fmt.Sprint(args...)
	for k, v := range f.fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	if f.err != nil {
		line += " error=" + f.err.Error()
	}
	*f.lines = append(*f.lines, line)
}

func (f fakeEntry) Error(args ...any) { f.log("error", args...) }
func (f fakeEntry) Info(args ...any)  { f.log("info", args...) }
func (f fakeEntry) Debug(args ...any) { f.log("debug", args...) }

func (f fakeEntry) WithError(err error) fakeEntry {
	return fakeEntry{lines: f.lines, fields: f.fields, err: err}
}

func (f fakeEntry) WithField(key string, value any) fakeEntry {
	fields := make(map[string]any, len(f.fields)+1)
	for k, v := range f.fields {
		fields[k] = v
	}
	fields[key] = value
	return fakeEntry{lines: f.lines, fields: fields, err: f.err}
}

func TestNewEntryServiceLogger(t *testing.T) {
	entry := newFakeEntry()
	logger := NewEntryServiceLogger(entry)

	logger.Info("module registered", LogFields{"module": "demo"})
	require.Len(t, *entry.lines, 1)
	assert.Contains(t, (*entry.lines)[0], "module=demo")

	logger.Error("import failed", errors.New("boom"), nil)
	require.Len(t, *entry.lines, 2)
	assert.Contains(t, (*entry.lines)[1], "error=boom")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Debug("x", nil)
		logger.Info("x", nil)
		logger.Error("x", errors.New("boom"), nil)
		logger.With(LogFields{"a": 1}).Info("y", nil)
	})
}

func TestNewEngineAdapter(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlogServiceLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter := NewEngineAdapter(base)
	adapter.Info("engine up", map[string]any{"engine": "memory"})
	assert.Contains(t, buf.String(), `"engine":"memory"`)

	buf.Reset()
	adapter.With(map[string]any{"engine": "memory"}).Debug("stash", nil)
	assert.Contains(t, buf.String(), `"engine":"memory"`)

	buf.Reset()
	adapter.Error("stop failed", errors.New("boom"), nil)
	assert.Contains(t, buf.String(), `"error":"boom"`)

	assert.Panics(t, func() { NewEngineAdapter(nil) })
}
