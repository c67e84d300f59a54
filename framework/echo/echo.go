// Package jwtecho adapts jwtauth.JWTMiddleware to echo.
package jwtecho

import (
	"github.com/labstack/echo/v4"

	"github.com/profile-service/jwtauth"
	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/validator"
)

// DefaultClaimsKey is the echo context key the claims are stored under.
const DefaultClaimsKey = "jwt"

type echoMiddlewareConfig struct {
	errorHandler func(echo.Context, error) error
	contextKey   string
	subject      func(echo.Context) string
}

// New returns echo middleware that authenticates each request with m.
// Without WithSubjectParam the subject comes from m's SubjectExtractor.
//
// Example:
//
//	e.GET("/api/profile/:id", handler, jwtecho.New(middleware, jwtecho.WithSubjectParam("id")))
func New(m *jwtauth.JWTMiddleware, opts ...Option) echo.MiddlewareFunc {
	config := &echoMiddlewareConfig{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.Skip(c.Request()) {
				return next(c)
			}

			var subject string
			if config.subject != nil {
				subject = config.subject(c)
			} else {
				subject = m.Subject(c.Request())
			}

			claims, err := m.Authenticate(c.Request(), subject)
			if err != nil {
				return config.errorHandler(c, err)
			}

			c.SetRequest(c.Request().WithContext(core.SetClaims(c.Request().Context(), claims)))
			c.Set(config.contextKey, claims)
			return next(c)
		}
	}
}

func defaultErrorHandler(c echo.Context, err error) error {
	status, body, challenge := jwtauth.ResponseFor(err)
	if challenge != "" {
		c.Response().Header().Set("WWW-Authenticate", challenge)
	}
	return c.JSON(status, body)
}

// GetClaims returns the claims New stored under contextKey.
func GetClaims(c echo.Context, contextKey string) (*validator.Claims, bool) {
	claims := c.Get(contextKey)
	if claims == nil {
		return nil, false
	}

	verified, ok := claims.(*validator.Claims)
	return verified, ok
}
