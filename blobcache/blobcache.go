// Package blobcache is an in-memory, LRU-evicted store for fetched image
// bytes, keyed by opaque id. The proxy route uses it so repeated views of
// the same generated image do not re-fetch from a cold backend. Failures
// here are never fatal: callers log and continue.
package blobcache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Blob is one cached image payload.
type Blob struct {
	// Data is the raw image bytes.
	Data []byte
	// ContentType is the upstream-reported content type.
	ContentType string
}

// Report is a point-in-time accounting of the cache.
type Report struct {
	// Count is the number of cached blobs.
	Count int
	// Bytes is the total payload size across cached blobs.
	Bytes int64
	// Capacity is the maximum number of blobs before eviction.
	Capacity int
}

// Cache is a concurrency-safe blob store. Eviction is LRU by entry count;
// byte accounting tracks evictions through the eviction callback.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, Blob]
	bytes    int64
	capacity int
}

// New creates a cache holding at most capacity blobs. Capacity must be
// positive.
func New(capacity int) (*Cache, error) {
	c := &Cache{capacity: capacity}
	inner, err := lru.NewWithEvict(capacity, func(_ string, b Blob) {
		c.bytes -= int64(len(b.Data))
	})
	if err != nil {
		return nil, err
	}
	c.lru = inner
	return c, nil
}

// Store inserts or replaces the blob under id.
func (c *Cache) Store(id string, blob Blob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Replacing an entry does not fire the eviction callback, so settle
	// the old entry's bytes here.
	if old, ok := c.lru.Peek(id); ok {
		c.bytes -= int64(len(old.Data))
	}
	c.lru.Add(id, blob)
	c.bytes += int64(len(blob.Data))
}

// Get returns the blob under id, marking it recently used.
func (c *Cache) Get(id string) (Blob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(id)
}

// Delete removes the blob under id, reporting whether it was present.
func (c *Cache) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(id)
}

// Clear removes all blobs.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Report returns current count, byte total, and capacity.
func (c *Cache) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Report{Count: c.lru.Len(), Bytes: c.bytes, Capacity: c.capacity}
}
