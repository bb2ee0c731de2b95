package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/saintathena/backend/internal/domain"
)

// DefaultTTL is how long a search result stays fresh
const DefaultTTL = 60 * time.Second

// entry represents a single item in the cache with its creation time
type entry struct {
	value     []byte
	createdAt time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Expired entries are dropped lazily on read; Sweep bounds memory between reads.
type MemoryCache struct {
	data       map[string]entry
	mutex      sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        domain.Clock
}

// NewMemoryCache creates a new in-memory cache. A zero ttl uses DefaultTTL;
// maxEntries <= 0 leaves the cache unbounded.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		data:       make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value from the cache. An entry older than the TTL is removed and reported as a miss.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if c.expired(item, c.now()) {
		c.mutex.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it
		if current, ok := c.data[key]; ok && current.createdAt.Equal(item.createdAt) {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		return nil, domain.ErrCacheMiss
	}

	return bytes.Clone(item.value), nil
}

// Set stores a copy of value. Concurrent writers to one key resolve last-writer-wins.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	item := entry{value: bytes.Clone(value), createdAt: c.now()}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.sweepLocked(item.createdAt)
		if len(c.data) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.data[key] = item
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}
	return !c.expired(item, c.now()), nil
}

// Sweep removes every expired entry and returns how many were dropped
func (c *MemoryCache) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.sweepLocked(c.now())
}

// Size returns the current number of items in the cache, expired or not
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]entry)
}

// TTL returns the configured time-to-live
func (c *MemoryCache) TTL() time.Duration {
	return c.ttl
}

func (c *MemoryCache) expired(item entry, now time.Time) bool {
	return now.Sub(item.createdAt) > c.ttl
}

func (c *MemoryCache) sweepLocked(now time.Time) int {
	removed := 0
	for key, item := range c.data {
		if c.expired(item, now) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, item := range c.data {
		if first || item.createdAt.Before(oldest) {
			oldestKey, oldest, first = key, item.createdAt, false
		}
	}
	if !first {
		delete(c.data, oldestKey)
	}
}
