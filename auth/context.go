// Package auth resolves the caller identity of an API request.
//
// The photo API does not issue or store credentials. An upstream identity
// provider authenticates the caller and forwards either a trusted user ID
// header or a signed JWT; a Resolver turns that into a user ID which the
// HTTP layer stores in the request context.
package auth

import "context"

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the user ID stored in ctx, or "" when none is set.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ctxKey{}).(string)
	return userID
}
