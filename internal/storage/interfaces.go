package storage

import (
	"context"
	"time"
)

// Cache is a short-lived key/value store placed in front of the raw row
// fetch. Values are opaque bytes; callers own the encoding.
type Cache interface {
	// Get returns the value stored under key. Returns ErrNotFound on a miss
	// or when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl <= 0 stores without expiry.
	// Returns ErrInvalidInput for an empty key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
