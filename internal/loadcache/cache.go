// Package loadcache memoizes loader results by source identity.
package loadcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"
)

// Identity names one immutable version of a source. A changed file gets a
// new Version and therefore a new entry.
type Identity struct {
	Source  string
	Version string
}

func (id Identity) key() string {
	return id.Source + "@" + id.Version
}

// FileIdentity stats path and versions it by size and modification time.
func FileIdentity(path string) (Identity, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Identity{}, eris.Wrapf(err, "loadcache: stat %s", path)
	}
	return Identity{
		Source:  path,
		Version: fmt.Sprintf("%d-%d", fi.Size(), fi.ModTime().UnixNano()),
	}, nil
}

// ContentIdentity versions in-memory content, such as an upload, by digest.
func ContentIdentity(source string, data []byte) Identity {
	sum := sha256.Sum256(data)
	return Identity{Source: source, Version: hex.EncodeToString(sum[:])}
}

// Stats contains cache performance statistics.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

type entry[V any] struct {
	id        Identity
	value     V
	createdAt time.Time
}

// Cache is a concurrent-safe LRU of loaded values. Concurrent misses on the
// same identity run the loader once. Failed loads are not stored.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]*entry[V]
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration // 0 = no expiry
	group      singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
}

// New creates a Cache holding at most maxEntries values (minimum 1).
func New[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache[V]{
		entries:    make(map[string]*entry[V]),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get returns the cached value for id.
func (c *Cache[V]) Get(id Identity) (V, bool) {
	key := id.key()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	if c.ttl > 0 && time.Since(e.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return e.value, true
}

// Put stores v under id, evicting the least recently used entry at capacity.
func (c *Cache[V]) Put(id Identity, v V) {
	key := id.key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &entry[V]{id: id, value: v, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &entry[V]{id: id, value: v, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// GetOrLoad returns the value for id, calling load on a miss.
func (c *Cache[V]) GetOrLoad(ctx context.Context, id Identity, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(id); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(id.key(), func() (any, error) {
		if v, ok := c.peek(id); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(id, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops every version of source.
func (c *Cache[V]) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var remaining []string
	for _, key := range c.order {
		if c.entries[key].id.Source == source {
			delete(c.entries, key)
		} else {
			remaining = append(remaining, key)
		}
	}
	c.order = remaining
}

// Stats returns cache performance statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	entries := len(c.entries)
	maxEntries := c.maxEntries
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// peek reads without touching LRU order or stats.
func (c *Cache[V]) peek(id Identity) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id.key()]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
