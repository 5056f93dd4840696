package catalogmedia

import (
	"hash/fnv"
	"sync"
)

const cacheShardCount = 16

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]bool
}

// ExistenceCache is a process-wide map from asset key to the last-known
// result of a backend existence check. It exists purely to avoid
// redundant network round-trips while rendering a page of rows; entries
// never expire and are only dropped by explicit invalidation or a full
// Clear. Sharded so concurrent requests touching unrelated keys do not
// serialize on one lock.
type ExistenceCache struct {
	shards [cacheShardCount]cacheShard
}

// NewExistenceCache creates an empty cache.
func NewExistenceCache() *ExistenceCache {
	c := &ExistenceCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]bool)
	}
	return c
}

func (c *ExistenceCache) shard(key string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &c.shards[h.Sum32()%cacheShardCount]
}

// Get returns the cached existence result for key. known is false when
// the key has never been probed (or was invalidated).
func (c *ExistenceCache) Get(key string) (exists, known bool) {
	s := c.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	exists, known = s.entries[key]
	return exists, known
}

// Set records the existence result for key.
func (c *ExistenceCache) Set(key string, exists bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = exists
}

// Invalidate drops the entry for key, forcing the next resolution to
// probe the backend again. Called after a delete or re-upload.
func (c *ExistenceCache) Invalidate(key string) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear drops every entry.
func (c *ExistenceCache) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[string]bool)
		s.mu.Unlock()
	}
}

// Len returns the number of cached entries.
func (c *ExistenceCache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}
