// Package cachemanager provides small typed caches. The highlighter uses one
// to remember results for recently seen buffers.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry expiry.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Len() int
}
