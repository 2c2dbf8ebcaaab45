// Package auth carries the resolved request identity through a context,
// the way the guard layer expects to receive it (§3 Identity).
package auth

import (
	"context"

	"github.com/kanidm-go/accessd/internal/directory"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, ident directory.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the identity carried by the context, or
// false if none was set.
func IdentityFromContext(ctx context.Context) (directory.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return directory.Identity{}, false
	}
	ident, ok := v.(directory.Identity)
	return ident, ok
}
