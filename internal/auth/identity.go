package auth

import "context"

// Identity is derived from a verified token and lives for one request.
type Identity struct {
	UserID int64
	// Restricted marks the shared read-only demo account.
	Restricted bool
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the identity attached by the guard.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
