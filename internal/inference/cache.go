package inference

import (
	"fmt"
	"sync"
	"time"

	"prioritizer-backend/internal/shared/util"
)

// cacheEntry stores one successful generation response.
type cacheEntry struct {
	value     GenerateResponse
	createdAt time.Time
}

// responseCache is a TTL cache for generation responses. Entries past their
// TTL are treated as absent and evicted lazily on the next lookup.
type responseCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]cacheEntry
	now  func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:  ttl,
		data: make(map[string]cacheEntry),
		now:  time.Now,
	}
}

// requestKey derives the cache key for a generation request.
func requestKey(req GenerateRequest) string {
	return util.HashParts(
		req.Model,
		req.Prompt,
		req.System,
		fmt.Sprintf("t=%g,n=%d", req.Options.Temperature, req.Options.MaxTokens),
	)
}

func (c *responseCache) get(key string) (GenerateResponse, bool) {
	if c.ttl <= 0 {
		return GenerateResponse{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok {
		return GenerateResponse{}, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.data, key)
		return GenerateResponse{}, false
	}
	return entry.value, true
}

func (c *responseCache) put(key string, value GenerateResponse) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{value: value, createdAt: c.now()}
}

func (c *responseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]cacheEntry)
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
