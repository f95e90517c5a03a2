package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value store used for quiz sessions and read-through caches.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value for expiration; zero means no expiry.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete does not fail for missing keys.
	Delete(ctx context.Context, key string) error

	// CompareAndSwap replaces the value only if it still equals old and reports
	// whether it did. A missing key yields ErrCacheMiss.
	CompareAndSwap(ctx context.Context, key, old, value string, expiration time.Duration) (bool, error)

	// GetDel returns the value and removes the key in one step; ErrCacheMiss if absent.
	GetDel(ctx context.Context, key string) (string, error)

	Ping(ctx context.Context) error
}
