package engine

import (
	"sync"

	"github.com/yourusername/bbengine/internal/positionid"
)

// Cache constants
const (
	DefaultCacheSize = 1 << 14 // 16K entries
)

// CacheEntry stores the generated actions of one side in one position
type CacheEntry struct {
	Key     positionid.Key
	Side    Side
	Actions []Action
	used    bool
}

// ActionCache is a thread-safe cache of generated actions.
// Uses a two-way associative table with MurmurHash3-based indexing.
type ActionCache struct {
	entries  []cacheNode
	size     uint32
	hashMask uint32

	// Statistics
	lookups uint64
	hits    uint64
	adds    uint64

	mu sync.RWMutex
}

// cacheNode holds primary and secondary entries for two-way associative cache
type cacheNode struct {
	primary   CacheEntry
	secondary CacheEntry
}

// CacheStats is a snapshot of the cache counters.
type CacheStats struct {
	Size    uint32  `json:"size"`
	Lookups uint64  `json:"lookups"`
	Hits    uint64  `json:"hits"`
	Adds    uint64  `json:"adds"`
	HitRate float64 `json:"hit_rate"`
}

// NewActionCache creates a new cache with the given size.
// Size is rounded up to a power of 2, minimum 2.
func NewActionCache(size uint32) *ActionCache {
	if size > 1<<24 {
		size = 1 << 24
	}
	p := uint32(2)
	for p < size {
		p <<= 1
	}
	size = p

	return &ActionCache{
		entries:  make([]cacheNode, size/2),
		size:     size,
		hashMask: (size / 2) - 1,
	}
}

// Flush clears all entries from the cache
func (c *ActionCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		c.entries[i] = cacheNode{}
	}
	c.lookups = 0
	c.hits = 0
	c.adds = 0
}

// hash computes the slot for a key using MurmurHash3-style mixing
func (c *ActionCache) hash(key positionid.Key, side Side) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593

	h := uint32(0)
	mix := func(k uint32) {
		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2

		h ^= k
		h = (h << 13) | (h >> 19)
		h = h*5 + 0xe6546b64
	}

	for _, d := range key.Data {
		mix(uint32(d))
		mix(uint32(d >> 32))
	}
	mix(uint32(side))

	// Finalization
	h ^= 20
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h & c.hashMask
}

// Lookup returns a copy of the cached actions for key and side.
func (c *ActionCache) Lookup(key positionid.Key, side Side) ([]Action, bool) {
	slot := c.hash(key, side)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups++
	node := &c.entries[slot]

	for _, e := range [2]*CacheEntry{&node.primary, &node.secondary} {
		if e.used && e.Key == key && e.Side == side {
			c.hits++
			out := make([]Action, len(e.Actions))
			copy(out, e.Actions)
			return out, true
		}
	}
	return nil, false
}

// Add stores actions for key and side, demoting the slot's primary entry.
func (c *ActionCache) Add(key positionid.Key, side Side, actions []Action) {
	slot := c.hash(key, side)
	stored := make([]Action, len(actions))
	copy(stored, actions)

	c.mu.Lock()
	defer c.mu.Unlock()

	node := &c.entries[slot]
	node.secondary = node.primary
	node.primary = CacheEntry{Key: key, Side: side, Actions: stored, used: true}

	c.adds++
}

// Stats returns cache statistics
func (c *ActionCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := CacheStats{Size: c.size, Lookups: c.lookups, Hits: c.hits, Adds: c.adds}
	if c.lookups > 0 {
		s.HitRate = float64(c.hits) / float64(c.lookups) * 100
	}
	return s
}
