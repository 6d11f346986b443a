package safety

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheTTL bounds how long a threat-list verdict is reused.
const CacheTTL = time.Hour

// ThreatCache stores threat-list verdicts keyed by URL hash.
type ThreatCache interface {
	Get(ctx context.Context, key string) (*ThreatResult, bool)
	Set(ctx context.Context, key string, result *ThreatResult)
}

// redisCache backs the cache with Redis, sharing verdicts across instances.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisThreatCache returns a Redis-backed cache with the standard TTL.
func NewRedisThreatCache(client *redis.Client) ThreatCache {
	return &redisCache{client: client, ttl: CacheTTL}
}

func (c *redisCache) Get(ctx context.Context, key string) (*ThreatResult, bool) {
	data, err := c.client.Get(ctx, "threat:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var result ThreatResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *redisCache) Set(ctx context.Context, key string, result *ThreatResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.client.Set(ctx, "threat:"+key, data, c.ttl)
}

type memoryEntry struct {
	result   ThreatResult
	cachedAt time.Time
}

// memoryCache is the in-process fallback when Redis is not deployed.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

// NewMemoryThreatCache returns an in-process cache with the standard TTL.
func NewMemoryThreatCache() ThreatCache {
	return &memoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     CacheTTL,
		now:     time.Now,
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*ThreatResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.cachedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	result := entry.result
	return &result, true
}

func (c *memoryCache) Set(ctx context.Context, key string, result *ThreatResult) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{result: *result, cachedAt: c.now()}
	c.mu.Unlock()
}
