package auth

import (
	"context"

	"chirp/domain/entities"
	"chirp/pkg/errors"
)

// contextKey is a private type to avoid collisions with other packages
type contextKey struct{}

var userContextKey = contextKey{}

// SetUserInContext attaches the authenticated user to the request context.
// The gate stores the resolved identity once; handlers thread the actor ID
// into services explicitly from there.
func SetUserInContext(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user resolved by the gate
func UserFromContext(ctx context.Context) (*entities.User, error) {
	user, ok := ctx.Value(userContextKey).(*entities.User)
	if !ok || user == nil {
		return nil, errors.NewUnauthorizedError("unauthorized request")
	}
	return user, nil
}
