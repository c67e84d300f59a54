// Package kvstore provides the process-wide key-value store used as the
// backing for the JWKS cache and as the first configuration source.
//
// Implementations must be safe for concurrent use. They do not need to offer
// any atomicity across keys: callers that write related keys (such as the
// JWKS payload and its expiry marker) are expected to tolerate observing one
// without the other.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a minimal byte-oriented key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}
