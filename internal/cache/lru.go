package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithCost weighs entries by cost instead of counting them.
// The capacity is then expressed in the same unit.
func WithCost[K comparable, V any](cost func(V) int64) Option[K, V] {
	return func(c *LRU[K, V]) {
		if cost != nil {
			c.cost = cost
		}
	}
}

// WithOnEvict registers a callback invoked for every entry that leaves the
// cache, including values replaced by Set.
// It runs with the cache lock held and must not call back into the cache.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = fn
	}
}

// LRU is a thread-safe least-recently-used cache.
// A capacity <= 0 disables caching: every Set is dropped.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[K]*list.Element
	evictList *list.List
	cost      func(V) int64
	onEvict   func(K, V)

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// New creates an LRU with the given capacity.
func New[K comparable, V any](capacity int64, opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
		cost:      func(V) int64 { return 1 },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a cached value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches a value. Values costing more than the capacity are not cached.
func (c *LRU[K, V]) Set(key K, value V) {
	cost := c.cost(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		if cost > c.capacity {
			c.removeElement(el)
			return
		}
		ent := el.Value.(*entry[K, V])
		if c.onEvict != nil {
			c.onEvict(ent.key, ent.value)
		}
		c.size += cost - ent.cost
		ent.value, ent.cost = value, cost
		c.evictList.MoveToFront(el)
		c.evict()
		return
	}

	if cost > c.capacity {
		return
	}
	c.items[key] = c.evictList.PushFront(&entry[K, V]{key: key, value: value, cost: cost})
	c.size += cost
	c.evict()
}

// Remove drops a key. It reports whether the key was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Invalidate removes all entries whose key matches the predicate.
func (c *LRU[K, V]) Invalidate(predicate func(K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.items {
		if predicate(key) {
			c.removeElement(el)
		}
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the summed cost of all cached entries.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counters.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU[K, V]) evict() {
	for c.size > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
	}
}

func (c *LRU[K, V]) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent := el.Value.(*entry[K, V])
	delete(c.items, ent.key)
	c.size -= ent.cost
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
