package jwks

import (
	"errors"
	"net/http"
	"time"
)

// ProviderOption is how options for the Provider are set up.
type ProviderOption func(*Provider) error

// WithCustomClient sets a custom HTTP client for the Provider.
// If not specified, a default client with 30s timeout is used.
func WithCustomClient(c *http.Client) ProviderOption {
	return func(p *Provider) error {
		if c == nil {
			return errors.New("HTTP client cannot be nil")
		}
		p.client = c
		return nil
	}
}

// WithCache makes the Provider consult cache before fetching and store
// fetched documents in it.
func WithCache(cache *Cache) ProviderOption {
	return func(p *Provider) error {
		if cache == nil {
			return errors.New("cache cannot be nil")
		}
		p.cache = cache
		return nil
	}
}

// WithLogger sets an optional logger for cache and fetch events.
func WithLogger(logger Logger) ProviderOption {
	return func(p *Provider) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// WithMetrics sets an optional sink for cache and fetch metrics.
func WithMetrics(metrics Metrics) ProviderOption {
	return func(p *Provider) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		p.metrics = metrics
		return nil
	}
}

// CacheOption is how options for the Cache are set up.
type CacheOption func(*Cache) error

// WithCacheTTL sets how long a written entry stays valid.
// If not specified, defaults to 5 minutes.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) error {
		if ttl < 0 {
			return errors.New("cache TTL cannot be negative")
		}
		if ttl == 0 {
			ttl = DefaultCacheTTL
		}
		c.ttl = ttl
		return nil
	}
}

// WithCacheName sets the store key of the payload. The expiry marker is
// stored under the same name with a "_ttl" suffix.
//
// The key does not include the JWKS URL passed to Provider.Get. Providers
// that share a store but fetch from different URLs need distinct names, or
// they will read each other's documents.
func WithCacheName(name string) CacheOption {
	return func(c *Cache) error {
		if name == "" {
			return errors.New("cache name cannot be empty")
		}
		c.name = name
		return nil
	}
}

// WithClock replaces the time source used to stamp and check expiry.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}
