// Package cache implements the daemon's two result caches: a
// generation-keyed TTL cache for full search results, and a single-slot
// prefix cache for incremental retyping.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"
)

// DefaultCapacity bounds the number of entries the TTL cache holds before
// otter's eviction policy starts reclaiming space.
const DefaultCapacity = 256

// PositiveTTL and EmptyTTL are the lifetimes of cached non-empty and empty
// result sets. Empty result sets expire faster so a file that appears
// moments after a miss shows up promptly.
const (
	PositiveTTL = 1 * time.Second
	EmptyTTL    = 200 * time.Millisecond
)

// Key identifies one cached query. Including Generation means a
// generation bump invalidates every previously-cached entry implicitly,
// without having to enumerate and delete them.
type Key struct {
	Generation int64
	Cwd        string
	Query      string
	Limit      int
}

func (k Key) encode() string {
	return fmt.Sprintf("%d\x00%s\x00%s\x00%d", k.Generation, k.Cwd, k.Query, k.Limit)
}

type entry[V any] struct {
	value     V
	createdAt time.Time
	empty     bool
}

// TTLCache is a capacity-bounded, generation-keyed result cache. V is
// typically []query.Result; left generic so this package never needs to
// import the query package.
type TTLCache[V any] struct {
	cache otter.Cache[string, entry[V]]

	hits   int64
	misses int64
}

// NewTTLCache builds a TTL cache bounded at capacity entries (0 uses
// DefaultCapacity).
func NewTTLCache[V any](capacity int) (*TTLCache[V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c, err := otter.MustBuilder[string, entry[V]](capacity).
		Cost(func(key string, value entry[V]) uint32 { return 1 }).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build ttl cache: %w", err)
	}

	return &TTLCache[V]{cache: c}, nil
}

// Get returns the cached value for key if present and not expired.
// Expired entries are evicted on lookup.
func (c *TTLCache[V]) Get(key Key) (V, bool) {
	encoded := key.encode()
	e, ok := c.cache.Get(encoded)
	var zero V
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}

	ttl := PositiveTTL
	if e.empty {
		ttl = EmptyTTL
	}
	if time.Since(e.createdAt) > ttl {
		c.cache.Delete(encoded)
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}

	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set stores value under key. empty marks the result set as empty so Get
// applies the shorter EmptyTTL.
func (c *TTLCache[V]) Set(key Key, value V, empty bool) {
	c.cache.Set(key.encode(), entry[V]{value: value, createdAt: time.Now(), empty: empty})
}

// HitRate returns hits / (hits + misses) observed since the cache was
// created, or 0 if nothing has been looked up yet. Backs the daemon
// health response's cacheHitRate field.
func (c *TTLCache[V]) HitRate() float64 {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Clear empties the cache. Used when a generation bump makes every
// previously cached key unreachable anyway; Clear reclaims the memory
// immediately instead of waiting for otter's eviction.
func (c *TTLCache[V]) Clear() {
	c.cache.Clear()
}

// Close releases the underlying otter cache's background resources.
func (c *TTLCache[V]) Close() {
	c.cache.Close()
}
