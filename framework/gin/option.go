package jwtgin

import (
	"github.com/gin-gonic/gin"
)

// Option defines a functional option for configuring the middleware
type Option func(*ginMiddlewareConfig)

// WithErrorHandler sets a custom error handler for the middleware. The
// request is aborted after it returns. A nil handler keeps the default.
func WithErrorHandler(handler func(*gin.Context, error)) Option {
	return func(config *ginMiddlewareConfig) {
		if handler == nil {
			return
		}
		config.errorHandler = handler
	}
}

// WithContextKey sets the gin context key for the claims.
func WithContextKey(key string) Option {
	return func(config *ginMiddlewareConfig) {
		config.contextKey = key
	}
}

// WithSubjectParam binds each token to the named route parameter.
func WithSubjectParam(name string) Option {
	return func(config *ginMiddlewareConfig) {
		config.subject = func(c *gin.Context) string {
			return c.Param(name)
		}
	}
}

// WithSubjectFunc binds each token to the subject fn returns.
func WithSubjectFunc(fn func(*gin.Context) string) Option {
	return func(config *ginMiddlewareConfig) {
		config.subject = fn
	}
}
