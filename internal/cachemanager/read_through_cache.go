package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache computes values with fn on a miss and stores them. When
// shouldSkipCache is set every call goes straight to fn.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
}

func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache || cache == nil,
	}
}

// Get returns the cached value for key or computes it from input. Failed
// computations are not cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, bool, error) {
	return r.get(ctx, key, input, ttl, false)
}

// GetWithRefresh is Get, restarting the expiry of a cached entry.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, bool, error) {
	return r.get(ctx, key, input, ttl, true)
}

// get reports whether the value came from the cache.
func (r *ReadThroughCache[K, V, I]) get(ctx context.Context, key K, input I, ttl time.Duration, refresh bool) (V, bool, error) {
	if r.shouldSkipCache {
		v, err := r.fn(ctx, input)
		return v, false, err
	}

	var (
		value V
		ok    bool
	)
	if refresh {
		value, ok = r.cache.GetWithRefresh(ctx, key, ttl)
	} else {
		value, ok = r.cache.Get(ctx, key)
	}
	if ok {
		return value, true, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, false, err
	}
	r.cache.Set(ctx, key, value, ttl)
	return value, false, nil
}

// Flush empties the underlying cache.
func (r *ReadThroughCache[K, V, I]) Flush(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Flush(ctx)
}

// Enabled reports whether lookups consult the cache.
func (r *ReadThroughCache[K, V, I]) Enabled() bool {
	return !r.shouldSkipCache
}
