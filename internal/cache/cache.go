// Package cache provides a generic TTL cache with single-flight
// request coalescing, the CacheLayer every upstream client is wrapped
// in.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/airwatch/aqcore/internal/domain"
)

// entry is one cached value and the time it was inserted.
type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a generic TTL cache keyed by comparable K. GetOrCompute
// coalesces concurrent misses for the same key through a singleflight
// group: at most one compute runs per key at a time, and every waiter
// observes the same result.
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[K]entry[V]
	group singleflight.Group
	keyFn func(K) string
}

// New builds a Cache with the given TTL. keyFn renders K to the string
// key singleflight groups on; for simple key types a fmt.Sprintf-based
// keyFn works, but callers with structured keys should supply a
// deterministic renderer to avoid accidental coalescing collisions.
func New[K comparable, V any](ttl time.Duration, keyFn func(K) string) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:   ttl,
		items: make(map[K]entry[V]),
		keyFn: keyFn,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if time.Since(e.insertedAt) > c.ttl {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the current time as insertedAt.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, insertedAt: time.Now()}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, or invokes compute to
// produce one. Concurrent callers for the same missing key share a
// single compute invocation (spec.md §8 invariant 10): all of them
// receive the same value or the same error, and only one call to
// compute is made. A failed compute is not cached, except one whose
// error is domain.ErrFallbackMock: its value is stored and returned
// with that error.
func (c *Cache[K, V]) GetOrCompute(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	flightKey := c.keyFn(key)
	result, err, _ := c.group.Do(flightKey, func() (any, error) {
		// Re-check under the singleflight lock: another goroutine may
		// have populated the cache between our Get above and Do below.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil && !errors.Is(err, domain.ErrFallbackMock) {
			return v, err
		}
		c.Set(key, v)
		return v, err
	})

	var zero V
	if err != nil {
		if v, ok := result.(V); ok {
			return v, err
		}
		return zero, err
	}
	return result.(V), nil
}

// Sweep removes every expired entry. Safe to call periodically from a
// background goroutine or lazily on access.
func (c *Cache[K, V]) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.items {
		if now.Sub(e.insertedAt) > c.ttl {
			delete(c.items, k)
		}
	}
}

// Len reports the number of entries currently stored, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
