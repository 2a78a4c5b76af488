// Package cache implements the normalized-key TTL caches used by the
// retrieval pipeline: one instance for query embeddings, one for full result
// sets. Each instance persists its whole map to a scoped JSON file on write
// and recovers from a corrupt or unreadable file by starting empty.
package cache

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// entry is the persisted form of one cached value.
type entry[T any] struct {
	Value     T         `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats reports the live entry count and the configured TTL.
type Stats struct {
	Count int           `json:"count"`
	TTL   time.Duration `json:"ttl"`
}

// Cache is a process-local TTL cache keyed by normalized query strings.
// Reads parallelize; writes (insert plus lazy eviction plus file persist)
// serialize behind the mutex so concurrent requests never lose an update.
type Cache[T any] struct {
	path   string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[T]
}

// New creates a cache persisted at path. An empty path keeps the cache purely
// in memory. An existing file is loaded; a corrupt one is discarded.
func New[T any](path string, ttl time.Duration, logger *zap.Logger) *Cache[T] {
	c := &Cache[T]{
		path:    path,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
	c.load()
	return c
}

// WithClock replaces the time source. Test hook.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.now = now
	return c
}

// NormalizeKey derives the cache key from a raw query: case-folded with
// whitespace collapsed, so queries differing only in case or spacing share
// one entry.
func NormalizeKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Get returns the value stored under key. An entry older than the TTL is
// treated as a miss; it stays in the map until the next write evicts it.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		var zero T
		return zero, false
	}
	return e.Value, true
}

// Set stores value under key, evicting expired entries and persisting the
// whole map. Writes are rare relative to reads, so rewriting the file per
// write is acceptable.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[T]{Value: value, Timestamp: c.now()}
	c.persistLocked()
}

// Stats returns the live (non-expired) entry count and the TTL.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			count++
		}
	}
	return Stats{Count: count, TTL: c.ttl}
}

func (c *Cache[T]) expired(e entry[T]) bool {
	return c.now().Sub(e.Timestamp) >= c.ttl
}

func (c *Cache[T]) load() {
	if c.path == "" {
		return
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read cache file, starting empty",
				zap.String("path", c.path), zap.Error(err))
		}
		return
	}
	var entries map[string]entry[T]
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Corrupt cache file, starting empty",
			zap.String("path", c.path), zap.Error(err))
		return
	}
	c.entries = entries
}

// persistLocked writes the map to a temp file and renames it over the target
// so a crash mid-write never leaves a half-written cache. Caller holds mu.
func (c *Cache[T]) persistLocked() {
	if c.path == "" {
		return
	}
	data, err := json.Marshal(c.entries)
	if err != nil {
		c.logger.Warn("Failed to marshal cache", zap.String("path", c.path), zap.Error(err))
		return
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		c.logger.Warn("Failed to write cache file", zap.String("path", tmp), zap.Error(err))
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		c.logger.Warn("Failed to replace cache file", zap.String("path", c.path), zap.Error(err))
	}
}
