// Package cache provides the in-process TTL cache that backs the dashboard
// endpoint. Entries are evicted least-recently-used when the cache is full
// and lazily when they expire.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the cached value and refreshes its recency. An expired entry
// is removed and reported as a miss.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := elem.Value.(*entry[T])
	if time.Now().After(ent.expiresAt) {
		c.remove(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return ent.value, true
}

// Set stores the value with a fresh TTL, evicting the least recently used
// entry when the cache is full.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := &entry[T]{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = ent
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(ent)

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Delete drops the key if present. Handlers call this to invalidate an
// owner's dashboard after a write.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// CleanExpired removes every expired entry and returns how many it removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.remove(elem)
	}
	return len(stale)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.lru.Remove(elem)
}
