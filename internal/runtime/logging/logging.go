package logging

import (
	"log/slog"

	"github.com/scripthost/scripthost/engine"
)

// LogFields represents structured logging key/value pairs used by scripthost.
type LogFields = map[string]any

// ServiceLogger is the minimal logging contract required by scripthost hosts.
// It is narrow on purpose so applications can adapt their existing loggers
// without depending on slog.
type ServiceLogger interface {
	With(fields LogFields) ServiceLogger
	Debug(msg string, fields LogFields)
	Info(msg string, fields LogFields)
	Error(msg string, err error, fields LogFields)
}

// EntryLoggerAdapter captures the capabilities required by
// NewEntryServiceLogger. The constraint is generic so third-party entry-like
// loggers (for example, loggers whose methods return their own concrete
// interface type) can be used without additional wrappers.
type EntryLoggerAdapter[T any] interface {
	Error(args ...any)
	Info(args ...any)
	Debug(args ...any)
	WithError(err error) T
	WithField(key string, value any) T
}

// NewSlogServiceLogger wraps a slog.Logger so it satisfies the ServiceLogger
// interface.
func NewSlogServiceLogger(log *slog.Logger) ServiceLogger {
	if log == nil {
		panic("scripthost: slog logger cannot be nil")
	}
	return &slogServiceLogger{inner: log}
}

// NewEntryServiceLogger wraps an entry-style logger (for example a
// logrus.Entry) so it can be consumed by scripthost hosts without forcing
// additional logging adapters.
func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	if any(entry) == nil {
		panic("scripthost: entry logger cannot be nil")
	}
	return &entryServiceLogger[T]{entry: entry}
}

// NewNopLogger returns a ServiceLogger that discards everything.
func NewNopLogger() ServiceLogger {
	return nopLogger{}
}

type slogServiceLogger struct {
	inner *slog.Logger
}

func (s *slogServiceLogger) With(fields LogFields) ServiceLogger {
	if len(fields) == 0 {
		return s
	}
	return &slogServiceLogger{inner: s.inner.With(toSlogArgs(fields)...)}
}

func (s *slogServiceLogger) Debug(msg string, fields LogFields) {
	s.inner.Debug(msg, toSlogArgs(fields)...)
}

func (s *slogServiceLogger) Info(msg string, fields LogFields) {
	s.inner.Info(msg, toSlogArgs(fields)...)
}

func (s *slogServiceLogger) Error(msg string, err error, fields LogFields) {
	args := toSlogArgs(fields)
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	s.inner.Error(msg, args...)
}

func toSlogArgs(fields LogFields) []any {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields))
	for key, value := range fields {
		args = append(args, slog.Any(key, value))
	}
	return args
}

type entryServiceLogger[T EntryLoggerAdapter[T]] struct {
	entry T
}

func (e *entryServiceLogger[T]) With(fields LogFields) ServiceLogger {
	if len(fields) == 0 {
		return e
	}
	return &entryServiceLogger[T]{entry: applyEntryFields(e.entry, fields)}
}

func (e *entryServiceLogger[T]) Debug(msg string, fields LogFields) {
	applyEntryFields(e.entry, fields).Debug(msg)
}

func (e *entryServiceLogger[T]) Info(msg string, fields LogFields) {
	applyEntryFields(e.entry, fields).Info(msg)
}

func (e *entryServiceLogger[T]) Error(msg string, err error, fields LogFields) {
	logger := applyEntryFields(e.entry, fields)
	if err != nil {
		logger = logger.WithError(err)
	}
	logger.Error(msg)
}

func applyEntryFields[T EntryLoggerAdapter[T]](entry T, fields LogFields) T {
	if len(fields) == 0 || any(entry) == nil {
		return entry
	}
	enriched := entry
	for key, value := range fields {
		enriched = enriched.WithField(key, value)
	}
	return enriched
}

type nopLogger struct{}

func (nopLogger) With(fields LogFields) ServiceLogger           { return nopLogger{} }
func (nopLogger) Debug(msg string, fields LogFields)            {}
func (nopLogger) Info(msg string, fields LogFields)             {}
func (nopLogger) Error(msg string, err error, fields LogFields) {}

type engineLoggerAdapter struct {
	base ServiceLogger
}

// NewEngineAdapter converts a ServiceLogger into an engine.Logger so engine
// implementations can reuse the same logger abstraction.
func NewEngineAdapter(log ServiceLogger) engine.Logger {
	if log == nil {
		panic("scripthost: ServiceLogger cannot be nil")
	}
	return &engineLoggerAdapter{base: log}
}

func (a *engineLoggerAdapter) With(fields map[string]any) engine.Logger {
	return &engineLoggerAdapter{base: a.base.With(LogFields(fields))}
}

func (a *engineLoggerAdapter) Debug(msg string, fields map[string]any) {
	a.base.Debug(msg, LogFields(fields))
}

func (a *engineLoggerAdapter) Info(msg string, fields map[string]any) {
	a.base.Info(msg, LogFields(fields))
}

func (a *engineLoggerAdapter) Error(msg string, err error, fields map[string]any) {
	a.base.Error(msg, err, LogFields(fields))
}
