package jwks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/profile-service/jwtauth/kvstore"
)

const (
	// DefaultCacheName is the store key the JWKS payload is written under.
	DefaultCacheName = "jwks"
	// DefaultCacheTTL is how long a fetched JWKS document stays valid.
	DefaultCacheTTL = 5 * time.Minute

	markerSuffix = "_ttl"
)

// ErrCacheMiss is returned by Cache.Read when no valid entry is available.
var ErrCacheMiss = errors.New("jwks cache miss")

// Cache keeps the raw JWKS document in a kvstore.Store together with an
// expiry marker. The marker lives under "<name>_ttl" and holds the expiry as
// decimal milliseconds since the Unix epoch.
//
// Cache does no locking of its own. Concurrent writers race on the two keys
// and the last one wins, which at worst causes an extra fetch.
type Cache struct {
	store kvstore.Store
	name  string
	ttl   time.Duration
	now   func() time.Time
}

// NewCache builds a Cache over store.
//
// Optional options:
//   - WithCacheTTL: entry lifetime (default 5 minutes)
//   - WithCacheName: payload key (default "jwks")
//   - WithClock: time source, mostly for tests
func NewCache(store kvstore.Store, opts ...CacheOption) (*Cache, error) {
	if store == nil {
		return nil, errors.New("cache store cannot be nil")
	}

	c := &Cache{
		store: store,
		name:  DefaultCacheName,
		ttl:   DefaultCacheTTL,
		now:   time.Now,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid cache option: %w", err)
		}
	}

	return c, nil
}

// Read returns the cached document if its marker has not expired. Any
// missing, unreadable or expired part of the entry yields ErrCacheMiss.
func (c *Cache) Read(ctx context.Context) ([]byte, error) {
	raw, err := c.store.Get(ctx, c.markerKey())
	if err != nil {
		return nil, fmt.Errorf("%w: marker: %w", ErrCacheMiss, err)
	}

	expiry, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || expiry <= 0 {
		return nil, fmt.Errorf("%w: invalid marker %q", ErrCacheMiss, raw)
	}

	if expiry <= c.now().UnixMilli() {
		return nil, fmt.Errorf("%w: expired", ErrCacheMiss)
	}

	payload, err := c.store.Get(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrCacheMiss, err)
	}

	return payload, nil
}

// Write stores data and an expiry marker of now plus the TTL. The payload is
// written first. If the marker write fails, the new payload sits under
// whatever marker was already stored: it is served while that marker is
// unexpired and reads as a miss otherwise.
func (c *Cache) Write(ctx context.Context, data []byte) error {
	expiry := c.now().Add(c.ttl).UnixMilli()

	if err := c.store.Set(ctx, c.name, data); err != nil {
		return fmt.Errorf("failed to write JWKS payload: %w", err)
	}

	marker := []byte(strconv.FormatInt(expiry, 10))
	if err := c.store.Set(ctx, c.markerKey(), marker); err != nil {
		return fmt.Errorf("failed to write JWKS expiry marker: %w", err)
	}

	return nil
}

func (c *Cache) markerKey() string {
	return c.name + markerSuffix
}
