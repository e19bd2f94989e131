package props

import (
	"container/list"
	"math"
	"sync"
)

// Cache is a bounded LRU memoizer for property bundles, keyed on quantized
// inputs. It is purely a performance layer: a hit returns exactly the value
// a fresh evaluation at the quantized key would produce. Safe for concurrent
// use so parallel Jacobian workers and unrelated solves can share one.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]*list.Element
	lru      *list.List

	hits   int64
	misses int64
}

type cacheKey struct {
	kind uint8
	a, b int64
}

type cacheEntry struct {
	key   cacheKey
	value any
}

const (
	keyState uint8 = iota // (p,h) state bundle
	keySat                // saturation bundle at p
)

// NewCache creates an LRU cache holding at most capacity entries.
// capacity <= 0 disables caching.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*list.Element),
		lru:      list.New(),
	}
}

func (c *Cache) get(key cacheKey) (any, bool) {
	if c == nil || c.capacity <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits++
		return elem.Value.(*cacheEntry).value, true
	}
	c.misses++
	return nil, false
}

func (c *Cache) put(key cacheKey, value any) {
	if c == nil || c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	elem := c.lru.PushFront(&cacheEntry{key: key, value: value})
	c.entries[key] = elem
	if c.lru.Len() > c.capacity {
		back := c.lru.Back()
		c.lru.Remove(back)
		delete(c.entries, back.Value.(*cacheEntry).key)
	}
}

// Stats returns hit/miss counters and the hit rate.
func (c *Cache) Stats() (hits, misses int64, hitRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits, misses = c.hits, c.misses
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// quantize maps x onto its cache grid index. step must be > 0.
func quantize(x, step float64) int64 {
	return int64(math.Round(x / step))
}
