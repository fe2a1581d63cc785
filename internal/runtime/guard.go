package runtime

import (
	"context"

	errspkg "github.com/scripthost/scripthost/internal/runtime/errors"
)

// Guard ties an interpreter's lifetime to a scope: NewGuard initializes the
// host's interpreter and Close finalizes it, but only from the instance that
// still owns it. Exactly one guard owns a live interpreter at a time.
// Ownership moves with Transfer, never by copying - guards are handed out by
// pointer only, and a transferred-from guard's Close is a no-op, so at most
// one Finalize happens per successful Initialize.
type Guard struct {
	host  *Host
	owner bool
}

// NewGuard initializes host's interpreter and returns the owning guard.
// Callers typically defer Close immediately:
//
//	g, err := runtime.NewGuard(ctx, host, runtime.InitOptions{})
//	if err != nil { ... }
//	defer g.Close()
func NewGuard(ctx context.Context, host *Host, opts InitOptions) (*Guard, error) {
	if host == nil {
		return nil, errspkg.ErrHostRequired
	}
	if err := host.Initialize(ctx, opts); err != nil {
		return nil, err
	}
	return &Guard{host: host, owner: true}, nil
}

// Transfer moves ownership to a freshly returned guard. The receiver stops
// being the owner, so its Close becomes a no-op. Transferring from a
// non-owner yields another non-owner.
func (g *Guard) Transfer() *Guard {
	if !g.owner {
		return &Guard{host: g.host}
	}
	g.owner = false
	return &Guard{host: g.host, owner: true}
}

// Owner reports whether this guard still owns the live interpreter.
func (g *Guard) Owner() bool { return g.owner }

// Host returns the host this guard scopes.
func (g *Guard) Host() *Host { return g.host }

// Close finalizes the interpreter if this guard is still the owner. Calling
// Close on a non-owner, or a second time, does nothing and returns nil.
func (g *Guard) Close() error {
	if !g.owner {
		return nil
	}
	g.owner = false
	return g.host.Finalize(context.Background())
}
