package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/validator"
)

// TokenChecker authenticates a raw token for a subject. *core.Core
// implements it.
type TokenChecker interface {
	CheckToken(ctx context.Context, token, subjectHint string) (*validator.Claims, error)
}

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core for consistent logging across the stack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// JWTMiddleware authenticates net/http requests.
type JWTMiddleware struct {
	core                TokenChecker
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	subjectExtractor    SubjectExtractor
	validateOnOptions   bool
	exclusionURLHandler func(r *http.Request) bool
	logger              Logger
}

// New constructs a JWTMiddleware. WithCore is required.
//
// Example:
//
//	middleware, err := jwtauth.New(
//	    jwtauth.WithCore(c),
//	    jwtauth.WithSubjectExtractor(jwtauth.SubjectFromPath),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*JWTMiddleware, error) {
	m := &JWTMiddleware{
		errorHandler:      DefaultErrorHandler,
		tokenExtractor:    AuthHeaderTokenExtractor,
		validateOnOptions: true,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if m.core == nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", ErrCoreNil)
	}

	return m, nil
}

// GetClaims retrieves the claims CheckJWT stored in the context.
//
// Example:
//
//	claims, err := jwtauth.GetClaims(r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get claims", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(claims.Subject)
func GetClaims(ctx context.Context) (*validator.Claims, error) {
	return core.GetClaims[*validator.Claims](ctx)
}

// HasClaims checks if claims exist in the context.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}

// Authenticate extracts the token from r and checks it for subjectHint.
// Framework adapters call it directly.
func (m *JWTMiddleware) Authenticate(r *http.Request, subjectHint string) (*validator.Claims, error) {
	token, err := m.tokenExtractor(r)
	switch {
	case errors.Is(err, ErrJWTMissing):
		m.debug("no usable token in request", "reason", err, "path", r.URL.Path)
		token = ""
	case err != nil:
		if m.logger != nil {
			m.logger.Error("failed to extract token from request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		return nil, fmt.Errorf("error extracting token: %w", err)
	}

	// Missing tokens still go through core so they are counted.
	return m.core.CheckToken(r.Context(), token, subjectHint)
}

// Subject returns the subject r is bound to by the configured
// SubjectExtractor, or "" when none is set.
func (m *JWTMiddleware) Subject(r *http.Request) string {
	if m.subjectExtractor == nil {
		return ""
	}
	return m.subjectExtractor(r)
}

// Skip reports whether r bypasses authentication, either because its URL is
// excluded or because it is an OPTIONS request and those are not validated.
func (m *JWTMiddleware) Skip(r *http.Request) bool {
	if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
		m.debug("skipping JWT validation for excluded URL", "method", r.Method, "path", r.URL.Path)
		return true
	}
	if !m.validateOnOptions && r.Method == http.MethodOptions {
		m.debug("skipping JWT validation for OPTIONS request")
		return true
	}
	return false
}

// CheckJWT wraps next so it only runs for authenticated requests. The
// verified claims are stored in the request context.
func (m *JWTMiddleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.Authenticate(r, m.Subject(r))
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		m.debug("JWT validation successful, setting claims in context", "subject", claims.Subject)
		r = r.Clone(core.SetClaims(r.Context(), claims))
		next.ServeHTTP(w, r)
	})
}

func (m *JWTMiddleware) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
