package travel

import (
	"fmt"
	"sync"
	"time"

	"github.com/courtflow/courtsched/core/model"
)

// cacheKey buckets estimates by hour so that a morning estimate is not
// reused for an evening departure.
func cacheKey(originID, destID string, mode model.TravelMode, departure time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", originID, destID, mode, departure.Hour())
}

type cacheEntry struct {
	result    model.TravelResult
	expiresAt time.Time
}

// resultCache is a TTL cache with lazy eviction on read.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[string]cacheEntry)}
}

// get returns the cached result if present and fresh. Stale entries are
// evicted on the spot.
func (c *resultCache) get(key string, now time.Time) (model.TravelResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return model.TravelResult{}, false
	}
	if now.After(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && now.After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return model.TravelResult{}, false
	}
	return e.result, true
}

func (c *resultCache) put(key string, r model.TravelResult) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: r, expiresAt: r.ExpiresAt}
	c.mu.Unlock()
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
