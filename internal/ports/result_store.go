package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by ResultStore.Get for absent keys.
var ErrNotFound = errors.New("result store: not found")

// ResultStore is the key-value boundary behind the result cache.
// Values are opaque encoded entries; expiry is the cache's concern.
// A single Put must be atomic from a reader's perspective.
type ResultStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Scan calls fn for every stored key with the stored size in bytes.
	Scan(ctx context.Context, fn func(key string, size int64) error) error
	// Describe names the backend for diagnostics.
	Describe() string
}
