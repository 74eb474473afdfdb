package cache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	value     string
	source    Source
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory translation memory with TTL
// support.
type InMemoryCache struct {
	cache map[string]memoryEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	return &InMemoryCache{
		cache: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *InMemoryCache) expired(e memoryEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.timestamp) > c.ttl
}

// Get retrieves a translation. Expired entries are removed and count as
// misses.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return "", false
	}

	if c.expired(entry, c.now()) {
		c.mu.Lock()
		delete(c.cache, key)
		c.mu.Unlock()
		c.misses.Add(1)
		return "", false
	}

	c.hits.Add(1)
	return entry.value, true
}

// Set stores a machine translation. Empty values are not stored.
func (c *InMemoryCache) Set(key string, value string) error {
	return c.SetEntry(Entry{Key: key, Value: value, Source: SourceAI})
}

// SetEntry stores a translation with its provenance. Empty values are not
// stored.
func (c *InMemoryCache) SetEntry(e Entry) error {
	if e.Value == "" {
		return nil
	}
	if e.Source == "" {
		e.Source = SourceAI
	}
	ts := e.UpdatedAt
	if ts.IsZero() {
		ts = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[e.Key] = memoryEntry{value: e.Value, source: e.Source, timestamp: ts}
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries and resets the statistics.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]memoryEntry)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns the lookup counters.
func (c *InMemoryCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Entries returns all live entries sorted by key.
func (c *InMemoryCache) Entries() ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	entries := make([]Entry, 0, len(c.cache))
	for key, e := range c.cache {
		if c.expired(e, now) {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: e.value, Source: e.source, UpdatedAt: e.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

var _ EntryStore = (*InMemoryCache)(nil)
