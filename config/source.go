package config

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/profile-service/jwtauth/kvstore"
)

// Source is one place configuration values can come from.
type Source interface {
	// Lookup returns the value of key and whether the source has it. A
	// source that fails to read reports the key as absent.
	Lookup(ctx context.Context, key string) (string, bool)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, key string) (string, bool)

// Lookup implements Source.
func (f SourceFunc) Lookup(ctx context.Context, key string) (string, bool) {
	return f(ctx, key)
}

// StoreSource reads values stored under their key in a kvstore.Store.
func StoreSource(store kvstore.Store) Source {
	return SourceFunc(func(ctx context.Context, key string) (string, bool) {
		value, err := store.Get(ctx, key)
		if err != nil {
			return "", false
		}
		return string(value), true
	})
}

// FileSource reads a YAML, JSON or TOML file, chosen by extension.
func FileSource(path string) (Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return viperSource{v: v}, nil
}

// EnvSource reads environment variables named by the upper-cased key, with
// prefix and an underscore in front when prefix is not empty. Empty
// variables count as unset.
func EnvSource(prefix string) Source {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	return viperSource{v: v}
}

type viperSource struct {
	v *viper.Viper
}

func (s viperSource) Lookup(_ context.Context, key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}
