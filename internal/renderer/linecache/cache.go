// Package linecache provides a bounded per-line memo of highlight segments.
//
// Entries are validated on every read against the line text, the observed line
// length, the shift that produced them and the edit clip column. Any mismatch is a
// miss, so stale content is detected lazily at access time without a global clear.
// When full, the oldest inserted entry is evicted.
package linecache

import (
	"container/list"
	"sync/atomic"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// DefaultCapacity is the default number of cached lines.
const DefaultCapacity = 500

// Key identifies a cached line.
// Lines with a stable identity are keyed by it; others by their index.
// The two key spaces never collide.
type Key struct {
	ID    uint64
	Index int
}

// KeyFor returns the cache key for a line entry.
func KeyFor(e core.LineEntry) Key {
	if e.LineID > 0 {
		return Key{ID: e.LineID, Index: -1}
	}
	return Key{Index: e.Index}
}

// Validator holds the inputs a cached entry was computed from.
type Validator struct {
	// Text is the exact line text. Comparing content (not only length) guards
	// against same-length mutations such as transposed characters.
	Text string

	// Length is the observed line length.
	Length int

	// Shift is the pending-offset shift the segments were computed with.
	Shift int

	// Clip is the edit clip column, or -1 when the line was not being edited.
	Clip int
}

// Config configures the cache.
type Config struct {
	// Capacity is the maximum number of cached lines.
	Capacity int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity}
}

type entry struct {
	key      Key
	valid    Validator
	segments []core.Segment
}

// Cache is a FIFO-bounded map from line keys to segments.
// It is owned by a single session and is not safe for concurrent use.
type Cache struct {
	config  Config
	entries map[Key]*list.Element
	order   *list.List

	// Stats (atomic so Stats can be read from a monitoring goroutine)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a new line cache.
func New(config Config) *Cache {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	return &Cache{
		config:  config,
		entries: make(map[Key]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached segments for key when v matches the cached inputs.
func (c *Cache) Get(key Key, v Validator) ([]core.Segment, bool) {
	el, ok := c.entries[key]
	if !ok || el.Value.(*entry).valid != v {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return el.Value.(*entry).segments, true
}

// Put stores segments for key.
// Updating an existing key keeps its position in the eviction order.
func (c *Cache) Put(key Key, v Validator, segments []core.Segment) {
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.valid = v
		e.segments = segments
		return
	}

	c.entries[key] = c.order.PushBack(&entry{key: key, valid: v, segments: segments})
	for len(c.entries) > c.config.Capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
		c.evictions.Add(1)
	}
}

// Invalidate removes a single line.
func (c *Cache) Invalidate(key Key) {
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.entries = make(map[Key]*list.Element)
	c.order.Init()
}

// Len returns the number of cached lines.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.config.Capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   hitRate,
	}
}

// Stats holds cache statistics.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}
