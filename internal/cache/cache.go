package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a process-wide key/value store with per-entry TTL. It holds
// whatever callers hand it and never computes anything itself. Expiry is
// checked lazily on read; an expired read counts as a miss and evicts the
// entry. Instances are injected into services so tests can substitute a
// fresh one.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	hits      uint64
	misses    uint64
	evictions uint64
}

type entry struct {
	value     interface{}
	createdAt time.Time
	expiresAt time.Time
}

type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
}

func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Key builds a composite cache key from an operation name and its
// parameters, e.g. Key("balance", "42", "2025") -> "balance:42:2025".
func Key(op string, parts ...string) string {
	if len(parts) == 0 {
		return op
	}
	return op + ":" + strings.Join(parts, ":")
}

// KeyPrefix is the prefix all keys built from op and the leading parts
// share, for predicate-based invalidation.
func KeyPrefix(op string, parts ...string) string {
	return Key(op, parts...) + ":"
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		c.evictions++
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.evictions++
	return true
}

// DeleteFunc removes every entry whose key matches the predicate and
// returns how many were removed.
func (c *Cache) DeleteFunc(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			c.evictions++
			removed++
		}
	}
	return removed
}

func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.entries)
	c.entries = make(map[string]entry)
	c.evictions += uint64(removed)
	return removed
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("hits=%d misses=%d evictions=%d size=%d", s.Hits, s.Misses, s.Evictions, s.Size)
}
