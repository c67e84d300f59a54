package core

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/profile-service/jwtauth/config"
	"github.com/profile-service/jwtauth/jwks"
	"github.com/profile-service/jwtauth/validator"
)

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// A KeySetProvider, an issuer and an audience are required, either set
// one by one or through WithConfig. The JWKS URL is discovered from the
// issuer when not given.
//
// Example:
//
//	provider, _ := jwks.NewProvider(jwks.WithCache(cache))
//	c, err := core.New(
//	    core.WithKeySetProvider(provider),
//	    core.WithConfig(cfg),
//	    core.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{
		verifier:   defaultVerifier{},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tracer:     noop.NewTracerProvider().Tracer(""),
	}

	// Apply all options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Validate required configuration
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate ensures all required fields are set.
func (c *Core) validate() error {
	if c.keySets == nil {
		return NewValidationError(
			ErrorCodeConfigInvalid,
			"key set provider is required but not set (use WithKeySetProvider option)",
			nil,
		)
	}
	if c.issuer == "" {
		return NewValidationError(ErrorCodeConfigInvalid, "issuer is required but not set (use WithIssuer or WithConfig)", nil)
	}
	if c.audience == "" {
		return NewValidationError(ErrorCodeConfigInvalid, "audience is required but not set (use WithAudience or WithConfig)", nil)
	}
	return nil
}

type defaultVerifier struct{}

func (defaultVerifier) Verify(set *jwks.KeySet, token string, policy *validator.Policy) (*validator.Claims, error) {
	return validator.Verify(set, token, policy)
}

// WithKeySetProvider sets where key sets come from. This is a required
// option, usually a *jwks.Provider.
func WithKeySetProvider(provider KeySetProvider) Option {
	return func(c *Core) error {
		if provider == nil {
			return errors.New("key set provider cannot be nil")
		}
		c.keySets = provider
		return nil
	}
}

// WithVerifier replaces the default verifier, which uses the system clock
// and no clock skew.
func WithVerifier(verifier Verifier) Option {
	return func(c *Core) error {
		if verifier == nil {
			return errors.New("verifier cannot be nil")
		}
		c.verifier = verifier
		return nil
	}
}

// WithConfig sets the issuer, audience, JWKS URL and maximum validity from
// a compiled configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Core) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		c.issuer = cfg.Issuer()
		c.audience = cfg.Audience
		c.jwksURL = cfg.JWKSURL()
		c.maxValidity = cfg.MaxValidity
		return nil
	}
}

// WithIssuer sets the only accepted iss claim, e.g. "https://tenant.example.com/".
func WithIssuer(issuer string) Option {
	return func(c *Core) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		if _, err := url.Parse(issuer); err != nil {
			return NewValidationError(ErrorCodeConfigInvalid, "invalid issuer URL", err)
		}
		c.issuer = issuer
		return nil
	}
}

// WithAudience sets the only accepted aud value.
func WithAudience(audience string) Option {
	return func(c *Core) error {
		if audience == "" {
			return errors.New("audience cannot be empty")
		}
		c.audience = audience
		return nil
	}
}

// WithJWKSURL sets the JWKS location and skips discovery.
func WithJWKSURL(jwksURL string) Option {
	return func(c *Core) error {
		if _, err := url.ParseRequestURI(jwksURL); err != nil {
			return NewValidationError(ErrorCodeConfigInvalid, "invalid JWKS URL", err)
		}
		c.jwksURL = jwksURL
		return nil
	}
}

// WithMaxValidity caps token age measured from iat. Zero disables the check.
func WithMaxValidity(maxValidity time.Duration) Option {
	return func(c *Core) error {
		if maxValidity < 0 {
			return errors.New("max validity cannot be negative")
		}
		c.maxValidity = maxValidity
		return nil
	}
}

// WithHTTPClient sets the client used for discovery.
// If not specified, a default client with 30s timeout is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Core) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// Rejected tokens are logged at warn level with their error code only.
// Identity provider failures are logged at error level.
//
// Example:
//
//	logger := slog.Default()
//	core, _ := core.New(
//	    core.WithKeySetProvider(provider),
//	    core.WithConfig(cfg),
//	    core.WithLogger(logger),
//	)
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics sets an optional sink for validation metrics.
func WithMetrics(metrics Metrics) Option {
	return func(c *Core) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		c.metrics = metrics
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for CheckToken spans.
// Defaults to a no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Core) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		c.tracer = tracer
		return nil
	}
}
