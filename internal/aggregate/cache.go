// ABOUTME: Per-user memo of entry lists and aggregate results.
// ABOUTME: Invalidation bumps a generation so fills started before a write are never stored.
package aggregate

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the number of memoised results.
const DefaultCacheSize = 256

// Cache memoises read results per user. Cached values are shared between
// callers and must be treated as read-only.
type Cache struct {
	lru   *lru.Cache[string, any]
	group singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

// NewCache creates a cache holding up to size results.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	l, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Cache{lru: l, gens: make(map[string]uint64)}, nil
}

// Invalidate drops every result for userID. Fills already in flight for
// the user finish but their results are discarded.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	c.gens[userID]++
	c.mu.Unlock()

	prefix := userID + "\x00"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func (c *Cache) generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

// Cached returns the memoised result for (userID, name), calling fill on a
// miss. Concurrent misses for the same key share one fill. Errors are never
// cached.
func Cached[T any](c *Cache, userID, name string, fill func() (T, error)) (T, error) {
	gen := c.generation(userID)
	key := fmt.Sprintf("%s\x00%s\x00%d", userID, name, gen)

	if v, ok := c.lru.Get(key); ok {
		return v.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fill()
		if err != nil {
			return nil, err
		}
		if c.generation(userID) == gen {
			c.lru.Add(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
