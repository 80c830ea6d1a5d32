// Package cache stores serialized metric results behind a pluggable store.
package cache

import (
	"context"
	"time"
)

// Store is the key/value port the Manager depends on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	// Forget removes keys and reports how many existed.
	Forget(ctx context.Context, keys ...string) (int, error)
}

// KeyLister is implemented by stores that can enumerate keys by glob pattern.
type KeyLister interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// MemoryReporter is implemented by stores that expose their memory footprint in bytes.
type MemoryReporter interface {
	MemoryUsage(ctx context.Context) (int64, error)
}
