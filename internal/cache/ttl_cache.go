// Package cache holds in-process read models that are cheap to rebuild.
package cache

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] interface {
	// GetOrLoad returns the live entry for key or stores the result of load.
	// A result is not stored when Purge ran while load was in flight.
	GetOrLoad(key K, load func() (V, error)) (V, error)
	Purge()
}

// New returns a TTLCache, or a NoopCache when ttl disables caching.
func New[K comparable, V any](ttl time.Duration) Cache[K, V] {
	if ttl <= 0 {
		return NoopCache[K, V]{}
	}
	return NewTTLCache[K, V](ttl)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache expires every entry ttl after it was loaded.
type TTLCache[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	items      map[K]entry[V]
	generation uint64
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[K]entry[V]),
	}
}

func (c *TTLCache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		if c.now().Before(e.expiresAt) {
			c.mu.Unlock()
			return e.value, nil
		}
		delete(c.items, key)
	}
	gen := c.generation
	c.mu.Unlock()

	// load runs unlocked; concurrent misses may load twice.
	value, err := load()
	if err != nil {
		return value, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return value, nil
}

func (c *TTLCache[K, V]) Purge() {
	c.mu.Lock()
	c.generation++
	clear(c.items)
	c.mu.Unlock()
}

// Len counts stored entries, expired ones included.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// NoopCache loads on every call.
type NoopCache[K comparable, V any] struct{}

func (NoopCache[K, V]) GetOrLoad(_ K, load func() (V, error)) (V, error) {
	return load()
}

func (NoopCache[K, V]) Purge() {}
