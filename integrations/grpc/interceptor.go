package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/validator"
)

// TokenChecker authenticates a raw token for a subject. *core.Core
// implements it.
type TokenChecker interface {
	CheckToken(ctx context.Context, token, subjectHint string) (*validator.Claims, error)
}

// JWTInterceptor provides JWT validation for gRPC servers.
type JWTInterceptor struct {
	core             TokenChecker
	tokenExtractor   TokenExtractor
	subjectExtractor SubjectExtractor
	errorHandler     ErrorHandler
	excludedMethods  map[string]bool
	logger           Logger
}

// New creates a new gRPC JWT interceptor with the provided options.
// WithCore option is required.
func New(opts ...Option) (*JWTInterceptor, error) {
	interceptor := &JWTInterceptor{
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.core == nil {
		return nil, errors.New("core is required, use WithCore option")
	}

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that validates JWTs.
// It extracts the JWT from gRPC metadata, validates it, and makes the claims
// available in the request context.
func (i *JWTInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excluded(info.FullMethod) {
			return handler(ctx, req)
		}

		validatedCtx, err := i.validateRequest(ctx, info.FullMethod, req)
		if err != nil {
			return nil, err
		}

		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that validates JWTs.
// The SubjectExtractor gets a nil request, since the stream has not been
// read yet.
func (i *JWTInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excluded(info.FullMethod) {
			return handler(srv, ss)
		}

		validatedCtx, err := i.validateRequest(ss.Context(), info.FullMethod, nil)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: validatedCtx})
	}
}

func (i *JWTInterceptor) excluded(method string) bool {
	if !i.excludedMethods[method] {
		return false
	}
	if i.logger != nil {
		i.logger.Debug("skipping JWT validation for excluded method", "method", method)
	}
	return true
}

// validateRequest extracts and validates the JWT from the context.
func (i *JWTInterceptor) validateRequest(ctx context.Context, method string, req any) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	switch {
	case errors.Is(err, core.ErrJWTMissing):
		// Missing tokens still go through core so they are counted.
		token = ""
	case err != nil:
		if i.logger != nil {
			i.logger.Error("failed to extract token from gRPC metadata",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	subject := ""
	if i.subjectExtractor != nil {
		subject = i.subjectExtractor(ctx, req)
	}

	claims, err := i.core.CheckToken(ctx, token, subject)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("JWT validation failed",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	if i.logger != nil {
		i.logger.Debug("JWT validation successful, setting claims in context",
			"method", method)
	}
	return core.SetClaims(ctx, claims), nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context with JWT claims.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
