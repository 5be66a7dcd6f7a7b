// Package cache is a small in-process LRU cache with per-entry expiry.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache holds up to maxEntries values, evicting the least recently used.
// All methods are safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	maxEntries int
	// order is the LRU list of *entry (front = most recent)
	order *list.List
	// elements maps key -> *list.Element for O(1) lookup
	elements map[string]*list.Element
	now      func() time.Time
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// New returns a cache holding at most maxEntries values.
// A non-positive maxEntries means 1.
func New[V any](maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache[V]{
		maxEntries: maxEntries,
		order:      list.New(),
		elements:   make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Set stores value under key. A ttl <= 0 means the entry never expires.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.elements[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxEntries {
		if back := c.order.Back(); back != nil {
			evicted := c.order.Remove(back).(*entry[V])
			delete(c.elements, evicted.key)
		}
	}

	c.elements[key] = c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
}

// Get returns the value under key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.elements[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[V])

	// Lazy expiry.
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.order.Remove(elem)
		delete(c.elements, key)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.value, true
}

// Len counts entries, including expired ones not yet evicted.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
