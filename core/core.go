package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/profile-service/jwtauth/internal/oidc"
	"github.com/profile-service/jwtauth/jwks"
	"github.com/profile-service/jwtauth/validator"
)

// Metric names emitted by Core.
const (
	MetricValidations        = "jwt_validations_total"
	MetricValidationDuration = "jwt_validation_duration_seconds"
)

// KeySetProvider returns the key set published at a JWKS URL.
// *jwks.Provider implements it.
type KeySetProvider interface {
	Get(ctx context.Context, jwksURL string) (*jwks.KeySet, error)
}

// Verifier checks a token against a key set. *validator.Validator
// implements it.
type Verifier interface {
	Verify(set *jwks.KeySet, token string, policy *validator.Policy) (*validator.Claims, error)
}

// Logger defines an optional logging interface for the core middleware.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics receives validation counters and timings.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

// Core is the framework-agnostic authentication engine.
type Core struct {
	keySets     KeySetProvider
	verifier    Verifier
	jwksURL     string
	issuer      string
	audience    string
	maxValidity time.Duration

	httpClient    *http.Client
	discoveryMu   sync.Mutex
	discoveredURL string

	logger  Logger
	metrics Metrics
	tracer  trace.Tracer
}

// CheckToken authenticates token and returns its claims.
//
// The policy requires the configured issuer and audience, the configured
// maximum validity and, when subjectHint is not empty, that sub equals
// subjectHint. Tokens whose claims carry no subject are rejected even
// without a hint.
//
// An empty token returns ErrJWTMissing. Every other failure is a
// *ValidationError that matches ErrJWTInvalid.
func (c *Core) CheckToken(ctx context.Context, token, subjectHint string) (*validator.Claims, error) {
	ctx, span := c.tracer.Start(ctx, "CheckToken")
	defer span.End()

	start := time.Now()
	claims, err := c.checkToken(ctx, token, subjectHint)
	duration := time.Since(start)

	result := "success"
	switch e := err.(type) {
	case nil:
	case *ValidationError:
		result = e.Code
	default:
		result = "missing"
	}

	if c.metrics != nil {
		tags := map[string]string{"result": result}
		c.metrics.IncCounter(MetricValidations, tags)
		c.metrics.ObserveHistogram(MetricValidationDuration, duration.Seconds(), tags)
	}

	span.SetAttributes(attribute.String("auth.result", result))
	if err != nil {
		span.SetStatus(codes.Error, result)
		c.logFailure(err, duration)
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("Token validated successfully", "subject", claims.Subject, "duration", duration)
	}

	return claims, nil
}

func (c *Core) checkToken(ctx context.Context, token, subjectHint string) (*validator.Claims, error) {
	if token == "" {
		return nil, ErrJWTMissing
	}

	jwksURL, err := c.resolveJWKSURL(ctx)
	if err != nil {
		return nil, NewValidationError(ErrorCodeDiscoveryFailed, "failed to discover JWKS URL", err)
	}

	set, err := c.fetchKeySet(ctx, jwksURL)
	if err != nil {
		return nil, NewValidationError(ErrorCodeJWKSFetchFailed, "failed to fetch JWKS", err)
	}

	claims, err := c.verify(ctx, set, token, c.policy(subjectHint))
	if err != nil {
		return nil, NewValidationError(ErrorCodeTokenRejected, "token rejected", err)
	}

	if claims.Subject == "" {
		return nil, NewValidationError(ErrorCodeSubjectMissing, "token has no subject", nil)
	}

	return claims, nil
}

func (c *Core) policy(subjectHint string) *validator.Policy {
	return &validator.Policy{
		MaxValidity: c.maxValidity,
		Audiences:   []string{c.audience},
		Issuers:     []string{c.issuer},
		Subject:     subjectHint,
	}
}

func (c *Core) fetchKeySet(ctx context.Context, jwksURL string) (*jwks.KeySet, error) {
	ctx, span := c.tracer.Start(ctx, "jwks.get", trace.WithAttributes(attribute.String("jwks.url", jwksURL)))
	defer span.End()

	set, err := c.keySets.Get(ctx, jwksURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("jwks.keys", len(set.Keys)))
	return set, nil
}

func (c *Core) verify(ctx context.Context, set *jwks.KeySet, token string, policy *validator.Policy) (*validator.Claims, error) {
	_, span := c.tracer.Start(ctx, "token.verify")
	defer span.End()

	claims, err := c.verifier.Verify(set, token, policy)
	if err != nil {
		span.SetStatus(codes.Error, "rejected")
		return nil, err
	}

	return claims, nil
}

// resolveJWKSURL returns the configured JWKS URL or, when none is set,
// the one discovered from the issuer. A successful discovery is kept for
// the life of the Core. A failed one is attempted again on the next call.
func (c *Core) resolveJWKSURL(ctx context.Context) (string, error) {
	if c.jwksURL != "" {
		return c.jwksURL, nil
	}

	c.discoveryMu.Lock()
	defer c.discoveryMu.Unlock()

	if c.discoveredURL != "" {
		return c.discoveredURL, nil
	}

	issuerURL, err := url.Parse(c.issuer)
	if err != nil {
		return "", fmt.Errorf("invalid issuer URL: %w", err)
	}

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, c.httpClient, *issuerURL)
	if err != nil {
		return "", err
	}

	if c.logger != nil {
		c.logger.Info("Discovered JWKS URL", "issuer", c.issuer, "jwks_url", endpoints.JWKSURI)
	}
	c.discoveredURL = endpoints.JWKSURI
	return c.discoveredURL, nil
}

func (c *Core) logFailure(err error, duration time.Duration) {
	if c.logger == nil {
		return
	}

	ve, ok := err.(*ValidationError)
	switch {
	case !ok:
		c.logger.Warn("No token provided and credentials are required")
	case ve.Code == ErrorCodeJWKSFetchFailed || ve.Code == ErrorCodeDiscoveryFailed:
		c.logger.Error("Identity provider unavailable", "code", ve.Code, "error", ve.Details, "duration", duration)
	default:
		c.logger.Warn("Token validation failed", "code", ve.Code, "duration", duration)
	}
}
