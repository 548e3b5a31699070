package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store. Implementations must treat a missing key as
// (nil, false, nil) rather than an error.
type Store interface {
	// Set writes a value that expires after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value for a key, reporting whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes one or more keys, ignoring missing keys.
	Delete(ctx context.Context, keys ...string) error

	// CompareAndSwap replaces the value for key with next only when the stored
	// value equals old, refreshing the TTL. It reports whether the swap was
	// applied. A missing or expired key never swaps.
	CompareAndSwap(ctx context.Context, key string, old, next []byte, ttl time.Duration) (bool, error)

	// CompareAndDelete removes the key only when the stored value equals old,
	// reporting whether the delete was applied.
	CompareAndDelete(ctx context.Context, key string, old []byte) (bool, error)
}
