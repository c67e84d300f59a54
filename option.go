package jwtauth

import (
	"errors"
	"net/http"
)

// Option configures the JWTMiddleware.
// Returns error for validation failures.
type Option func(*JWTMiddleware) error

// WithCore sets the token checker (REQUIRED), usually a *core.Core.
//
// Example:
//
//	c, err := core.New(
//	    core.WithKeySetProvider(provider),
//	    core.WithConfig(cfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := jwtauth.New(jwtauth.WithCore(c))
func WithCore(c TokenChecker) Option {
	return func(m *JWTMiddleware) error {
		if c == nil {
			return ErrCoreNil
		}
		m.core = c
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests should have their JWT validated.
//
// Default: true (OPTIONS requests are validated)
func WithValidateOnOptions(value bool) Option {
	return func(m *JWTMiddleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when a request fails
// authentication.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *JWTMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the JWT from the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *JWTMiddleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithSubjectExtractor binds every token to the subject e returns for the
// request, e.g. SubjectFromPath.
//
// Default: none (any subject is accepted)
func WithSubjectExtractor(e SubjectExtractor) Option {
	return func(m *JWTMiddleware) error {
		if e == nil {
			return ErrSubjectExtractorNil
		}
		m.subjectExtractor = e
		return nil
	}
}

// WithExclusionUrls configures URLs that skip JWT validation.
// URLs can be full URLs or just paths.
func WithExclusionUrls(exclusions []string) Option {
	return func(m *JWTMiddleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionUrlsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware. Core takes its
// own logger through core.WithLogger.
//
// Example:
//
//	middleware, err := jwtauth.New(
//	    jwtauth.WithCore(c),
//	    jwtauth.WithLogger(jwtauth.NewLogrusLogger(logrus.StandardLogger())),
//	)
func WithLogger(logger Logger) Option {
	return func(m *JWTMiddleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrCoreNil             = errors.New("core cannot be nil (use WithCore)")
	ErrErrorHandlerNil     = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil   = errors.New("tokenExtractor cannot be nil")
	ErrSubjectExtractorNil = errors.New("subjectExtractor cannot be nil")
	ErrExclusionUrlsEmpty  = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil           = errors.New("logger cannot be nil")
)
