// Package http provides the HTTP surface of portal authentication: the login, logout and
// session endpoints, the page gatekeeper middleware and the login rate limiter.
package http

import (
	"context"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// identityKey is a context key type for storing the authenticated identity.
type identityKey struct{}

// WithIdentity stores the authenticated identity in the context.
// This is called by the gatekeeper middleware once a session decodes.
func WithIdentity(ctx context.Context, identity *authDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authenticated identity from the context.
// Returns (identity, true) if present, or (nil, false) if the request carried no valid session.
func GetIdentity(ctx context.Context) (*authDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*authDomain.Identity)
	return identity, ok && identity != nil
}
