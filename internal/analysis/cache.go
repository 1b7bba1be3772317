package analysis

import (
	"sync"
	"time"

	"prioritizer-backend/internal/shared/util"
	"prioritizer-backend/internal/workitem"
)

// resultCache is a TTL cache for completed AI analysis results, keyed on
// work item content, analysis type and context. Fallback results are never
// cached; they are cheap to recompute and deterministic anyway. Expired
// entries are treated as absent and evicted lazily.
type resultCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]resultCacheEntry
	now  func() time.Time
}

type resultCacheEntry struct {
	value     Result
	createdAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:  ttl,
		data: make(map[string]resultCacheEntry),
		now:  time.Now,
	}
}

func resultKey(item workitem.Payload, t Type, ctx workitem.Context) string {
	return util.HashParts(
		item.ID,
		item.Corpus(),
		string(t),
		ctx.CanonicalString(),
	)
}

func (c *resultCache) get(key string) (Result, bool) {
	if c.ttl <= 0 {
		return Result{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.data, key)
		return Result{}, false
	}
	return entry.value, true
}

func (c *resultCache) put(key string, value Result) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = resultCacheEntry{value: value, createdAt: c.now()}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]resultCacheEntry)
}
