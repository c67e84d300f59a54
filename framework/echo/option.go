package jwtecho

import (
	"github.com/labstack/echo/v4"
)

// Option is a function that configures the middleware
type Option func(*echoMiddlewareConfig)

// WithErrorHandler sets a custom error handler. Its return value is
// returned from the middleware. A nil handler keeps the default.
func WithErrorHandler(handler func(echo.Context, error) error) Option {
	return func(config *echoMiddlewareConfig) {
		if handler == nil {
			return
		}
		config.errorHandler = handler
	}
}

// WithContextKey sets a custom context key to store claims
func WithContextKey(key string) Option {
	return func(config *echoMiddlewareConfig) {
		config.contextKey = key
	}
}

// WithSubjectParam binds each token to the named path parameter.
func WithSubjectParam(name string) Option {
	return func(config *echoMiddlewareConfig) {
		config.subject = func(c echo.Context) string {
			return c.Param(name)
		}
	}
}
