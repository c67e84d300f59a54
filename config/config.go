// Package config resolves the service configuration from an ordered list of
// sources and compiles it once into a typed Config.
package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Configuration keys.
const (
	KeyDatabaseURL  = "db_url"
	KeyAuthDomain   = "auth_domain"
	KeyAudience     = "auth_audience"
	KeyMaxValidity  = "auth_max_validity"
	KeyListenAddr   = "listen_addr"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyKVBackend    = "kv_backend"
	KeyRedisAddr    = "redis_addr"
	KeyJWKSCacheTTL = "jwks_cache_ttl"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ErrMissingKey is returned by Load when a required key has no value in any
// source.
var ErrMissingKey = errors.New("required configuration key is not set")

// Config is the compiled configuration. It is built once at startup and
// never re-resolved.
type Config struct {
	DatabaseURL  string
	IssuerDomain string
	Audience     string
	// MaxValidity is zero when no maximum token age is enforced.
	MaxValidity time.Duration
	ListenAddr  string
	LogLevel    string
	LogFormat   string
	KVBackend   string
	RedisAddr   string
	CacheTTL    time.Duration
}

// Issuer returns the expected iss claim, "https://{domain}/".
func (c *Config) Issuer() string {
	return "https://" + c.IssuerDomain + "/"
}

// JWKSURL returns "https://{domain}/.well-known/jwks.json".
func (c *Config) JWKSURL() string {
	return "https://" + c.IssuerDomain + "/.well-known/jwks.json"
}

// Lookup returns the value of key from the first source that has it.
func Lookup(ctx context.Context, key string, sources ...Source) (string, bool) {
	for _, source := range sources {
		if value, ok := source.Lookup(ctx, key); ok {
			return value, true
		}
	}
	return "", false
}

// Load resolves every key through sources, earlier sources taking priority,
// and validates the result.
func Load(ctx context.Context, sources ...Source) (*Config, error) {
	get := func(key, fallback string) string {
		if value, ok := Lookup(ctx, key, sources...); ok {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	cfg := &Config{
		DatabaseURL:  get(KeyDatabaseURL, ""),
		IssuerDomain: get(KeyAuthDomain, ""),
		Audience:     get(KeyAudience, ""),
		ListenAddr:   get(KeyListenAddr, ":8080"),
		LogLevel:     get(KeyLogLevel, "info"),
		LogFormat:    get(KeyLogFormat, "text"),
		KVBackend:    get(KeyKVBackend, BackendMemory),
		RedisAddr:    get(KeyRedisAddr, ""),
	}

	if raw := get(KeyMaxValidity, ""); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid %s %q: must be a non-negative number of seconds", KeyMaxValidity, raw)
		}
		cfg.MaxValidity = time.Duration(seconds) * time.Second
	}

	ttl, err := time.ParseDuration(get(KeyJWKSCacheTTL, "5m"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid %s: must be a positive duration", KeyJWKSCacheTTL)
	}
	cfg.CacheTTL = ttl

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.IssuerDomain == "" {
		return fmt.Errorf("%w: %s", ErrMissingKey, KeyAuthDomain)
	}
	if strings.Contains(c.IssuerDomain, "/") {
		return fmt.Errorf("invalid %s %q: expected a bare host name", KeyAuthDomain, c.IssuerDomain)
	}
	if c.Audience == "" {
		return fmt.Errorf("%w: %s", ErrMissingKey, KeyAudience)
	}

	switch c.KVBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: %s", ErrMissingKey, KeyRedisAddr)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: %s", ErrMissingKey, KeyDatabaseURL)
		}
	default:
		return fmt.Errorf("invalid %s %q", KeyKVBackend, c.KVBackend)
	}

	return nil
}
