package translation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache stores finished translations keyed by (text, source, target).
// Implementations may be process-local or shared; the service treats
// writes as last-writer-wins since translations of identical input are
// interchangeable.
type Cache interface {
	Get(ctx context.Context, text, sourceLang, targetLang string) (string, bool)
	Set(ctx context.Context, text, sourceLang, targetLang, translated string)
}

func cacheKey(text, sourceLang, targetLang string) string {
	return fmt.Sprintf("%s_%s_%s", text, sourceLang, targetLang)
}

type memoryEntry struct {
	text      string
	writtenAt time.Time
}

// MemoryCache is the process-local backend: a TTL map with lazy,
// read-time eviction. There is no background sweep; an expired entry is
// treated as a miss and overwritten on refresh.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, text, sourceLang, targetLang string) (string, bool) {
	key := cacheKey(text, sourceLang, targetLang)
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if c.now().Sub(e.writtenAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.text, true
}

func (c *MemoryCache) Set(_ context.Context, text, sourceLang, targetLang, translated string) {
	key := cacheKey(text, sourceLang, targetLang)
	c.mu.Lock()
	c.entries[key] = memoryEntry{text: translated, writtenAt: c.now()}
	c.mu.Unlock()
}
