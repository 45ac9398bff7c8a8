// SPDX-License-Identifier: MIT

// Package cache provides a TTL cache for container listings, with an
// in-memory default and an optional Redis backend.
package cache

import (
	"sync"
	"time"
)

// Cache stores string-slice values (sorted blob listings) under string
// keys with per-entry expiry.
type Cache interface {
	// Get retrieves a listing. The second result is false when the key
	// is absent or expired.
	Get(key string) ([]string, bool)
	// Set stores a listing with the given TTL.
	Set(key string, value []string, ttl time.Duration)
	// Delete removes a listing.
	Delete(key string)
	// Stats returns hit/miss counters.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
	Size   int
}

type entry struct {
	value   []string
	expires time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats
}

// NewMemory returns an in-memory Cache. Expired entries are dropped
// lazily on access.
func NewMemory() Cache {
	return &memoryCache{entries: make(map[string]*entry)}
}

func (c *memoryCache) Get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		if ok {
			delete(c.entries, key)
		}
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.value, true
}

func (c *memoryCache) Set(key string, value []string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, expires: time.Now().Add(ttl)}
	c.stats.Sets++
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}
