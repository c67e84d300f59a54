package core

import (
	"context"

	"github.com/profile-service/jwtauth/validator"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	claimsKey contextKey = iota
)

// GetClaims retrieves the claims stored by an adapter after a successful
// CheckToken. It fails if no claims are stored or they are not a T.
//
// Example usage:
//
//	claims, err := core.GetClaims[*validator.Claims](ctx)
//	if err != nil {
//	    return err
//	}
//	// Use claims...
func GetClaims[T any](ctx context.Context) (T, error) {
	var zero T

	val := ctx.Value(claimsKey)
	if val == nil {
		return zero, ErrClaimsNotFound
	}

	claims, ok := val.(T)
	if !ok {
		return zero, NewValidationError(
			ErrorCodeClaimsNotFound,
			"claims type assertion failed",
			nil,
		)
	}

	return claims, nil
}

// SetClaims stores claims in the context. Adapters call it after CheckToken
// succeeds.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// HasClaims checks if claims exist in the context without retrieving them.
func HasClaims(ctx context.Context) bool {
	return ctx.Value(claimsKey) != nil
}

// Subject returns the sub claim of the authenticated caller.
func Subject(ctx context.Context) (string, bool) {
	claims, err := GetClaims[*validator.Claims](ctx)
	if err != nil || claims == nil {
		return "", false
	}
	return claims.Subject, true
}
