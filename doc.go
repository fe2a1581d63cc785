// Package scripthost manages the lifecycle of an embedded scripting runtime
// hosted inside a Go process: bringing the runtime up, registering
// statically-compiled extension modules into it before startup, and tearing
// it down safely while reconciling the process-wide internals singleton that
// the object-binding layer depends on.
//
// A Host owns the initialize/finalize pair. Initialize starts the engine
// core, applies the static module table collected before startup, and
// installs the process argument vector; Finalize shuts the core down and
// destroys the internals singleton only after shutdown completes, so a
// singleton recreated by teardown-triggered destructors is still observed
// and destroyed. Initializing while running, finalizing while stopped, and
// registering a module after startup are misuse errors reported immediately.
//
// # Engines
//
// Scripthost ships 2 engines out of the box:
//   - lua: gopher-lua, a pure-Go Lua interpreter
//   - memory: in-memory engine for testing and local development
//
// Engines register themselves into the engine registry from their package
// init, so importing one (blank imports work) makes it selectable via
// Config.Engine:
//
//	import _ "github.com/scripthost/scripthost/engine/lua"
//
// # Static modules
//
// Compiled-in modules register from a package init function, strictly before
// any Initialize call:
//
//	func init() {
//		scripthost.MustRegisterModule("demo", func(m engine.Module) error {
//			return m.Set("answer", 42)
//		})
//	}
//
// Registration after startup fails with ErrRegisterAfterInit. A module
// initializer that returns an error or panics surfaces as an ordinary import
// failure inside the engine; it never unwinds through the engine's call
// frames.
//
// # Scope guard
//
// Guard ties the interpreter's lifetime to a scope: NewGuard initializes,
// Close finalizes exactly once, and Transfer moves ownership so a
// transferred-from guard's Close is a no-op.
//
// Hosts also carry the ambient stack: structured logging via ServiceLogger,
// Prometheus lifecycle metrics with an optional /metrics endpoint,
// OpenTelemetry spans around both transitions, and a JSON runtime snapshot
// for introspection.
package scripthost
