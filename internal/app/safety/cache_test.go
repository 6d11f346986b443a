package safety

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	cache := NewMemoryThreatCache()

	_, ok := cache.Get(context.Background(), "key")
	assert.False(t, ok)

	cache.Set(context.Background(), "key", &ThreatResult{Safe: false, Threats: []string{"MALWARE"}})

	got, ok := cache.Get(context.Background(), "key")
	require.True(t, ok)
	assert.False(t, got.Safe)
	assert.Equal(t, []string{"MALWARE"}, got.Threats)
}

func TestMemoryCache_EntryExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cache := &memoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     CacheTTL,
		now:     func() time.Time { return now },
	}

	cache.Set(context.Background(), "key", &ThreatResult{Safe: true})

	now = now.Add(59 * time.Minute)
	_, ok := cache.Get(context.Background(), "key")
	assert.True(t, ok, "entry under an hour old is reused")

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(context.Background(), "key")
	assert.False(t, ok, "entry older than an hour is discarded")
}

func TestMemoryCache_CopiesResult(t *testing.T) {
	cache := NewMemoryThreatCache()
	original := &ThreatResult{Safe: true}
	cache.Set(context.Background(), "key", original)

	original.Safe = false

	got, ok := cache.Get(context.Background(), "key")
	require.True(t, ok)
	assert.True(t, got.Safe, "cache stores a copy, not the caller's pointer")
}
