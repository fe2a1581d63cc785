// Package runtime implements the scripthost lifecycle core: the Host that
// starts and stops an embedded scripting engine, the process-wide module
// registry applied to the engine's import table at startup, the best-effort
// argument encoder, the internals singleton reconciled during finalize, and
// the scope Guard composing the two transitions.
//
// The public surface lives in the root scripthost package; this package is
// the implementation.
package runtime
