package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetchFailed is returned by Provider.Get when the JWKS document could not
// be obtained or decoded.
var ErrFetchFailed = errors.New("failed to fetch JWKS")

// maxResponseSize bounds the JWKS response body. Real documents are a few
// kilobytes.
const maxResponseSize = 1 << 20

// Metric names emitted by Provider.
const (
	MetricCacheLookups  = "jwks_cache_lookups_total"
	MetricFetches       = "jwks_fetches_total"
	MetricFetchDuration = "jwks_fetch_duration_seconds"
)

// Logger is the optional logging interface used by Provider. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics receives cache and fetch counters.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

// Provider returns the identity provider's key set, serving it from a Cache
// when one is configured and fetching it over HTTP otherwise.
type Provider struct {
	client  *http.Client
	cache   *Cache
	logger  Logger
	metrics Metrics
}

// NewProvider builds a Provider.
//
// Optional options:
//   - WithCustomClient: HTTP client (default has a 30s timeout)
//   - WithCache: cache to consult before fetching
//   - WithLogger
//   - WithMetrics
//
// Example:
//
//	cache, _ := jwks.NewCache(kvstore.NewMemory())
//	provider, err := jwks.NewProvider(jwks.WithCache(cache))
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return p, nil
}

// Get returns the key set published at jwksURL.
//
// A valid cache entry is used as is. A cached document that no longer
// decodes counts as a miss. On a miss the document is fetched once, written
// back to the cache and decoded. A failed cache write is logged and ignored.
func (p *Provider) Get(ctx context.Context, jwksURL string) (*KeySet, error) {
	if p.cache != nil {
		if set, ok := p.fromCache(ctx); ok {
			return set, nil
		}
	}

	start := time.Now()
	body, err := p.fetch(ctx, jwksURL)
	p.observeFetch(start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if p.cache != nil {
		if err := p.cache.Write(ctx, body); err != nil && p.logger != nil {
			p.logger.Warn("Failed to cache JWKS", "url", jwksURL, "error", err)
		}
	}

	set, err := ParseKeySet(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if p.logger != nil {
		p.logger.Debug("Fetched JWKS", "url", jwksURL, "keys", len(set.Keys))
	}

	return set, nil
}

func (p *Provider) fromCache(ctx context.Context) (*KeySet, bool) {
	data, err := p.cache.Read(ctx)
	if err != nil {
		p.countLookup("miss")
		if p.logger != nil {
			p.logger.Debug("JWKS cache miss", "reason", err)
		}
		return nil, false
	}

	set, err := ParseKeySet(data)
	if err != nil {
		p.countLookup("corrupt")
		if p.logger != nil {
			p.logger.Warn("Ignoring undecodable cached JWKS", "error", err)
		}
		return nil, false
	}

	p.countLookup("hit")
	return set, true
}

func (p *Provider) fetch(ctx context.Context, jwksURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("response body is empty")
	}

	return body, nil
}

func (p *Provider) countLookup(result string) {
	if p.metrics != nil {
		p.metrics.IncCounter(MetricCacheLookups, map[string]string{"result": result})
	}
}

func (p *Provider) observeFetch(start time.Time, err error) {
	if p.metrics == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	p.metrics.IncCounter(MetricFetches, map[string]string{"result": result})
	p.metrics.ObserveHistogram(MetricFetchDuration, time.Since(start).Seconds(), map[string]string{"result": result})
}
