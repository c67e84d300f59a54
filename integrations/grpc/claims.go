package grpc

import (
	"context"

	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/validator"
)

// GetClaims returns the claims the interceptor stored in ctx.
//
// Example:
//
//	claims, err := jwtgrpc.GetClaims(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "failed to get claims")
//	}
//	fmt.Println(claims.Subject)
func GetClaims(ctx context.Context) (*validator.Claims, error) {
	return core.GetClaims[*validator.Claims](ctx)
}

// HasClaims checks if claims exist in the context.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}
