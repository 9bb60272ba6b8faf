// Package cache provides a generic bounded in-process result cache with LRU
// eviction, per-entry TTL expiry, and content-hash integrity checks. The
// pipeline instantiates it once per stage (raw content, AI analysis, composed
// result) with stage-specific TTLs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Config holds cache limits and defaults.
type Config struct {
	// Name identifies the cache instance in logs and stats.
	Name string
	// MaxEntries caps the number of live entries.
	MaxEntries int
	// MaxBytes caps the cumulative serialized size of live entries.
	MaxBytes int64
	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration
	// SweepInterval controls the background cleanup loop started by
	// StartCleanup. Zero disables the loop.
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Entries   int     `json:"entries"`
	Bytes     int64   `json:"bytes"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hitRate"`
	Evictions uint64  `json:"evictions"`
}

// entry owns one cached value. The cache is the sole owner; callers always
// receive value copies.
type entry[T any] struct {
	key         string
	data        T
	size        int64
	hash        uint64
	ttl         time.Duration
	storedAt    time.Time
	accessCount uint64
	lastAccess  uint64 // monotonic access counter, not wall clock
}

// Cache is a bounded key/value store keyed by URL plus an optional options
// value. All mutations are serialized behind a single mutex; Get also
// mutates (access bookkeeping, expiry removal) and therefore takes the
// write lock.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	clock   uint64 // bumped on every access, drives LRU ordering
	bytes   int64

	hits      uint64
	misses    uint64
	evictions uint64

	cfg Config
}

// New creates a cache with the given limits. Zero limits get conservative
// defaults.
func New[T any](cfg Config) *Cache[T] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 50 * 1024 * 1024
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Name != "" {
		cfg.Logger = cfg.Logger.With("cache", cfg.Name)
	}
	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		cfg:     cfg,
	}
}

// Key derives a stable cache key from the URL and an optional options value.
// Distinct option sets for the same URL produce distinct keys.
func Key(url string, opts any) string {
	k := fmt.Sprintf("%016x", xxhash.Sum64String(url))
	if opts == nil {
		return k
	}
	b, err := json.Marshal(opts)
	if err != nil {
		// Unserializable options still need a distinct key space.
		return k + "-opts"
	}
	return fmt.Sprintf("%s-%016x", k, xxhash.Sum64(b))
}

// Get returns the cached value for url+opts. An expired or corrupted entry
// is removed and reported as a miss.
func (c *Cache[T]) Get(url string, opts any) (T, bool) {
	var zero T
	key := Key(url, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if time.Since(e.storedAt) > e.ttl {
		c.removeLocked(key)
		c.misses++
		return zero, false
	}

	if recomputeHash(e.data) != e.hash {
		// Corrupted entry: evict rather than serve.
		c.cfg.Logger.Warn("cache entry failed integrity check, evicting", "key", key)
		c.removeLocked(key)
		c.evictions++
		c.misses++
		return zero, false
	}

	c.clock++
	e.accessCount++
	e.lastAccess = c.clock
	c.hits++
	return e.data, true
}

// Set stores data for url+opts. A ttl <= 0 uses the configured default.
// If the entry would push the cache past its byte or entry budget, the
// least-recently-used entries are evicted first, even if still fresh.
func (c *Cache[T]) Set(url string, data T, opts any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	key := Key(url, opts)

	b, err := json.Marshal(data)
	if err != nil {
		c.cfg.Logger.Warn("refusing to cache unserializable value", "key", key, "error", err)
		return
	}
	size := int64(len(b))
	if size > c.cfg.MaxBytes {
		c.cfg.Logger.Warn("value larger than cache byte budget, not caching", "key", key, "size", size)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replace an existing entry for the same key before budget checks.
	if old, ok := c.entries[key]; ok {
		c.bytes -= old.size
		delete(c.entries, key)
	}

	for (c.bytes+size > c.cfg.MaxBytes || len(c.entries)+1 > c.cfg.MaxEntries) && len(c.entries) > 0 {
		c.evictLRULocked()
	}

	c.clock++
	c.entries[key] = &entry[T]{
		key:        key,
		data:       data,
		size:       size,
		hash:       xxhash.Sum64(b),
		ttl:        ttl,
		storedAt:   time.Now(),
		lastAccess: c.clock,
	}
	c.bytes += size
}

// Cleanup removes all expired entries and returns how many were evicted.
func (c *Cache[T]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if time.Since(e.storedAt) > e.ttl {
			c.removeLocked(key)
			removed++
		}
	}
	if removed > 0 {
		c.cfg.Logger.Debug("cache sweep removed expired entries", "removed", removed)
	}
	return removed
}

// StartCleanup runs a periodic expiry sweep until ctx is cancelled.
func (c *Cache[T]) StartCleanup(ctx context.Context) {
	if c.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Stats returns a snapshot of cache counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries:   len(c.entries),
		Bytes:     c.bytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictLRULocked removes the entry with the oldest access counter.
func (c *Cache[T]) evictLRULocked() {
	var victim string
	var oldest uint64
	first := true
	for key, e := range c.entries {
		if first || e.lastAccess < oldest {
			victim = key
			oldest = e.lastAccess
			first = false
		}
	}
	if !first {
		c.removeLocked(victim)
		c.evictions++
	}
}

func (c *Cache[T]) removeLocked(key string) {
	if e, ok := c.entries[key]; ok {
		c.bytes -= e.size
		delete(c.entries, key)
	}
}

func recomputeHash[T any](data T) uint64 {
	b, err := json.Marshal(data)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}
