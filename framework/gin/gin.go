// Package jwtgin adapts jwtauth.JWTMiddleware to gin.
package jwtgin

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/profile-service/jwtauth"
	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/validator"
)

// DefaultClaimsKey is the gin context key the claims are stored under.
const DefaultClaimsKey = "jwt"

var (
	ErrMissingClaims = errors.New("no JWT claims found in context")
	ErrInvalidClaims = errors.New("invalid JWT claims type")
)

type ginMiddlewareConfig struct {
	errorHandler func(*gin.Context, error)
	contextKey   string
	subject      func(*gin.Context) string
}

// New returns a gin handler that authenticates each request with m. The
// claims are stored both in the gin context under the configured key and
// in the request context, where jwtauth.GetClaims finds them. Without
// WithSubjectParam or WithSubjectFunc the subject comes from m's
// SubjectExtractor.
//
// Example:
//
//	router.GET("/api/profile/:id", jwtgin.New(middleware, jwtgin.WithSubjectParam("id")), handler)
func New(m *jwtauth.JWTMiddleware, opts ...Option) gin.HandlerFunc {
	config := &ginMiddlewareConfig{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(c *gin.Context) {
		if m.Skip(c.Request) {
			c.Next()
			return
		}

		var subject string
		if config.subject != nil {
			subject = config.subject(c)
		} else {
			subject = m.Subject(c.Request)
		}

		claims, err := m.Authenticate(c.Request, subject)
		if err != nil {
			config.errorHandler(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(core.SetClaims(c.Request.Context(), claims))
		c.Set(config.contextKey, claims)
		c.Next()
	}
}

func defaultErrorHandler(c *gin.Context, err error) {
	status, body, challenge := jwtauth.ResponseFor(err)
	if challenge != "" {
		c.Header("WWW-Authenticate", challenge)
	}
	c.AbortWithStatusJSON(status, body)
}

// GetClaims returns the claims New stored under contextKey, or under
// DefaultClaimsKey when contextKey is empty.
func GetClaims(c *gin.Context, contextKey string) (*validator.Claims, error) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingClaims
	}

	verified, ok := claims.(*validator.Claims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return verified, nil
}
