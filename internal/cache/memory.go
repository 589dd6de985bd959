package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// Memory keeps views in process. A background janitor sweeps expired entries
// every cleanup interval; reads never return an expired entry.
type Memory struct {
	entries *gocache.Cache
}

func NewMemory(cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = memoryCleanupInterval
	}
	return &Memory{entries: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (cache *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	stored, ok := cache.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry, ok := stored.([]byte)
	if !ok {
		return nil, false, nil
	}
	value := make([]byte, len(entry))
	copy(value, entry)
	return value, true, nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (cache *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := make([]byte, len(value))
	copy(entry, value)
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cache.entries.Set(key, entry, ttl)
	return nil
}

func (cache *Memory) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		cache.entries.Delete(key)
	}
	return nil
}

func (cache *Memory) Close() error {
	cache.entries.Flush()
	return nil
}
