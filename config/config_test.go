package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profile-service/jwtauth/kvstore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func mapSource(values map[string]string) Source {
	return SourceFunc(func(_ context.Context, key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("it compiles every key and applies defaults", func(t *testing.T) {
		cfg, err := Load(ctx, mapSource(map[string]string{
			KeyAuthDomain:  "tenant.example.com",
			KeyAudience:    "api://profiles",
			KeyMaxValidity: "3600",
		}))
		require.NoError(t, err)

		want := &Config{
			IssuerDomain: "tenant.example.com",
			Audience:     "api://profiles",
			MaxValidity:  time.Hour,
			ListenAddr:   ":8080",
			LogLevel:     "info",
			LogFormat:    "text",
			KVBackend:    BackendMemory,
			CacheTTL:     5 * time.Minute,
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "https://tenant.example.com/", cfg.Issuer())
		assert.Equal(t, "https://tenant.example.com/.well-known/jwks.json", cfg.JWKSURL())
	})

	t.Run("it leaves max validity unset when absent", func(t *testing.T) {
		cfg, err := Load(ctx, mapSource(map[string]string{
			KeyAuthDomain: "tenant.example.com",
			KeyAudience:   "api://profiles",
		}))
		require.NoError(t, err)
		assert.Zero(t, cfg.MaxValidity)
	})

	t.Run("it prefers the store, then the file, then the environment", func(t *testing.T) {
		store := kvstore.NewMemory()
		require.NoError(t, store.Set(ctx, KeyAudience, []byte("api://from-store")))

		file, err := FileSource(writeFile(t, "config.yaml", `
auth_audience: api://from-file
auth_domain: file.example.com
auth_max_validity: 600
`))
		require.NoError(t, err)

		t.Setenv("PROFILE_AUTH_DOMAIN", "env.example.com")
		t.Setenv("PROFILE_LISTEN_ADDR", ":9090")
		t.Setenv("PROFILE_JWKS_CACHE_TTL", "1m")

		cfg, err := Load(ctx, StoreSource(store), file, EnvSource("profile"))
		require.NoError(t, err)

		assert.Equal(t, "api://from-store", cfg.Audience)
		assert.Equal(t, "file.example.com", cfg.IssuerDomain)
		assert.Equal(t, 10*time.Minute, cfg.MaxValidity)
		assert.Equal(t, ":9090", cfg.ListenAddr)
		assert.Equal(t, time.Minute, cfg.CacheTTL)
	})

	t.Run("it reads JSON files", func(t *testing.T) {
		file, err := FileSource(writeFile(t, "config.json", `{"auth_domain":"tenant.example.com","auth_audience":"api://profiles"}`))
		require.NoError(t, err)

		cfg, err := Load(ctx, file)
		require.NoError(t, err)
		assert.Equal(t, "api://profiles", cfg.Audience)
	})

	t.Run("it fails on an unreadable file", func(t *testing.T) {
		_, err := FileSource(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("it treats empty environment variables as unset", func(t *testing.T) {
		t.Setenv("PROFILE_AUTH_DOMAIN", "")

		_, ok := EnvSource("profile").Lookup(ctx, KeyAuthDomain)
		assert.False(t, ok)
	})

	invalid := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{
			name:   "a missing domain",
			values: map[string]string{KeyAudience: "api://profiles"},
			want:   KeyAuthDomain,
		},
		{
			name:   "a missing audience",
			values: map[string]string{KeyAuthDomain: "tenant.example.com"},
			want:   KeyAudience,
		},
		{
			name: "a domain with a scheme",
			values: map[string]string{
				KeyAuthDomain: "https://tenant.example.com/",
				KeyAudience:   "api://profiles",
			},
			want: "bare host name",
		},
		{
			name: "a non-numeric max validity",
			values: map[string]string{
				KeyAuthDomain:  "tenant.example.com",
				KeyAudience:    "api://profiles",
				KeyMaxValidity: "1h",
			},
			want: KeyMaxValidity,
		},
		{
			name: "a postgres backend without database URL",
			values: map[string]string{
				KeyAuthDomain: "tenant.example.com",
				KeyAudience:   "api://profiles",
				KeyKVBackend:  BackendPostgres,
			},
			want: KeyDatabaseURL,
		},
		{
			name: "a redis backend without address",
			values: map[string]string{
				KeyAuthDomain: "tenant.example.com",
				KeyAudience:   "api://profiles",
				KeyKVBackend:  BackendRedis,
			},
			want: KeyRedisAddr,
		},
		{
			name: "an unknown backend",
			values: map[string]string{
				KeyAuthDomain: "tenant.example.com",
				KeyAudience:   "api://profiles",
				KeyKVBackend:  "etcd",
			},
			want: KeyKVBackend,
		},
		{
			name: "a zero cache TTL",
			values: map[string]string{
				KeyAuthDomain:   "tenant.example.com",
				KeyAudience:     "api://profiles",
				KeyJWKSCacheTTL: "0s",
			},
			want: KeyJWKSCacheTTL,
		},
	}

	for _, tc := range invalid {
		t.Run("it rejects "+tc.name, func(t *testing.T) {
			_, err := Load(ctx, mapSource(tc.values))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("it returns the first hit", func(t *testing.T) {
		value, ok := Lookup(ctx, "k",
			mapSource(map[string]string{}),
			mapSource(map[string]string{"k": "second"}),
			mapSource(map[string]string{"k": "third"}),
		)
		assert.True(t, ok)
		assert.Equal(t, "second", value)
	})

	t.Run("it reports absent keys", func(t *testing.T) {
		_, ok := Lookup(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("it skips a failing store", func(t *testing.T) {
		value, ok := Lookup(ctx, KeyAudience, StoreSource(kvstore.NewMemory()), mapSource(map[string]string{KeyAudience: "fallback"}))
		assert.True(t, ok)
		assert.Equal(t, "fallback", value)
	})
}
