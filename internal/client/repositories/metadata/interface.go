// Package metadata is the client's local key/value store. The auth
// provider keeps the persisted session (tokens and identity) in it.
package metadata

import "context"

// Repository stores opaque values by key.
type Repository interface {
	// Get returns (nil, nil) for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put upserts all pairs in one statement, so either every pair is
	// written or none is.
	Put(ctx context.Context, pairs map[string][]byte) error
	// Delete ignores keys that are not stored.
	Delete(ctx context.Context, keys ...string) error
	// List returns every pair whose key starts with prefix; "" lists all.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}
