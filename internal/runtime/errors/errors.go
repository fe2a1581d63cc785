package errors

import (
	"fmt"

	sterrors "errors"
)

var (
	ErrAlreadyRunning     = sterrors.New("scripthost: interpreter is already running")
	ErrNotRunning         = sterrors.New("scripthost: interpreter is not running")
	ErrRegisterAfterInit  = sterrors.New("scripthost: module registration after interpreter startup")
	ErrRegistryFull       = sterrors.New("scripthost: module registry is full")
	ErrModuleNameRequired = sterrors.New("scripthost: module name is required")
	ErrModuleInitRequired = sterrors.New("scripthost: module initializer is required")
	ErrEngineRequired     = sterrors.New("scripthost: engine is required")
	ErrConfigRequired     = sterrors.New("scripthost: config is required")
	ErrHostRequired       = sterrors.New("scripthost: host is required")
)

// ImportError wraps a failure raised by a module initializer. Engines convert
// it into their native import-failure signal; it never crosses into an
// engine's call frames as a panic.
type ImportError struct {
	Module string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("scripthost: module %q initialization failed: %v", e.Module, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// NewImportError wraps err as an ImportError for the named module. Returns nil
// when err is nil; returns err unchanged when it already is an ImportError.
func NewImportError(module string, err error) error {
	if err == nil {
		return nil
	}
	var ie *ImportError
	if sterrors.As(err, &ie) {
		return err
	}
	return &ImportError{Module: module, Err: err}
}

// ConfigValidationError marks configuration problems detected before the
// interpreter is started.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("scripthost: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError wraps err as a ConfigValidationError. Returns nil
// when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
