// Package overlay mediates between the frame-grid view and the segment
// store. The store is the single source of truth; the overlay keeps its own
// deep copies of segment records for rendering, and every UI-originated
// create, rename or delete goes through Sync so the store validates the
// mutation before any view-local state changes.
package overlay

import (
	"sync"

	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

// Cache is the view-local copy of the store's segment list. Records are
// clones; the cache never holds a store record by reference.
type Cache struct {
	mu       sync.Mutex
	segments map[string]segment.Record
	order    []string
}

// NewCache returns an empty overlay cache.
func NewCache() *Cache {
	return &Cache{segments: make(map[string]segment.Record)}
}

// Put inserts or replaces a cached record.
func (c *Cache) Put(rec segment.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.segments[rec.Name]; !exists {
		c.order = append(c.order, rec.Name)
	}
	c.segments[rec.Name] = rec.Clone()
}

// Rename re-labels a cached record. The caller supplies the freshly
// validated record from the store.
func (c *Cache) Rename(oldName string, rec segment.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.segments[oldName]; exists {
		delete(c.segments, oldName)
		for i, n := range c.order {
			if n == oldName {
				c.order[i] = rec.Name
				break
			}
		}
	} else {
		c.order = append(c.order, rec.Name)
	}
	c.segments[rec.Name] = rec.Clone()
}

// Delete drops a cached record.
func (c *Cache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.segments[name]; !exists {
		return
	}
	delete(c.segments, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ReplaceAll swaps the entire cache contents for clones of the given
// records.
func (c *Cache) ReplaceAll(records []segment.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.segments = make(map[string]segment.Record, len(records))
	c.order = c.order[:0]
	for _, rec := range records {
		c.segments[rec.Name] = rec.Clone()
		c.order = append(c.order, rec.Name)
	}
}

// Get returns a copy of the cached record.
func (c *Cache) Get(name string) (segment.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.segments[name]
	if !ok {
		return segment.Record{}, false
	}
	return rec.Clone(), true
}

// List returns copies of all cached records in order.
func (c *Cache) List() []segment.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]segment.Record, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.segments[name].Clone())
	}
	return out
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.segments)
}
