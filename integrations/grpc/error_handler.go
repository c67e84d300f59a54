package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/profile-service/jwtauth/core"
)

// ErrorHandler converts validation errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps authentication failures to codes.Unauthenticated.
// Rejected tokens all get the same message whatever their
// core.ValidationError code.
func DefaultErrorHandler(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMultipleAuthHeaders):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrJWTMissing):
		return status.Error(codes.Unauthenticated, "missing credentials")
	case errors.Is(err, core.ErrJWTInvalid):
		return status.Error(codes.Unauthenticated, "invalid token")
	default:
		return status.Error(codes.Internal, "unable to verify token")
	}
}
