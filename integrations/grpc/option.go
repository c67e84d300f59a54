package grpc

import (
	"errors"
)

// Option configures the JWT interceptor.
type Option func(*JWTInterceptor) error

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the stack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// WithCore sets the token checker (REQUIRED), usually a *core.Core.
//
// Example:
//
//	interceptor, _ := grpc.New(
//	    grpc.WithCore(c),
//	    grpc.WithSubjectExtractor(grpc.SubjectFromMetadata("x-profile-id")),
//	)
func WithCore(c TokenChecker) Option {
	return func(i *JWTInterceptor) error {
		if c == nil {
			return errors.New("core cannot be nil")
		}
		i.core = c
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor. Core takes its
// own logger through core.WithLogger.
func WithLogger(logger Logger) Option {
	return func(i *JWTInterceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor function.
// Default is MetadataTokenExtractor which extracts from "authorization" metadata.
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(i *JWTInterceptor) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithSubjectExtractor binds each token to the subject extractor returns
// for the call.
func WithSubjectExtractor(extractor SubjectExtractor) Option {
	return func(i *JWTInterceptor) error {
		if extractor == nil {
			return errors.New("subject extractor cannot be nil")
		}
		i.subjectExtractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler function.
// Default is DefaultErrorHandler which maps errors to gRPC status codes.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *JWTInterceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods excludes specific gRPC methods from JWT validation.
// Methods should be provided in the format: "/package.Service/Method"
// Example: "/grpc.health.v1.Health/Check"
func WithExcludedMethods(methods ...string) Option {
	return func(i *JWTInterceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}
