package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapViewCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMapViewCache() *mapViewCache {
	return &mapViewCache{entries: map[string][]byte{}}
}

func (cache *mapViewCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	value, ok := cache.entries[key]
	return value, ok, nil
}

func (cache *mapViewCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[key] = value
	cache.sets++
	return nil
}

func (cache *mapViewCache) Delete(_ context.Context, keys ...string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	for _, key := range keys {
		delete(cache.entries, key)
	}
	return nil
}

func TestDashboardSummaryIsCachedUntilInvalidated(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	cache := newMapViewCache()
	views := NewDashboardViews(cache, time.Minute, nil)
	dashboard := NewDashboardService(env.clients, env.tarot, env.profiles, env.permissions, views)

	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	reader := env.createAstrologer(t, "reader@example.com", "Reader")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, reader.ID, false)
	_, err := env.tarot.Create(ctx, owner.ID, client.ID, validTarotInput())
	require.NoError(t, err)

	summary, err := dashboard.Summary(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.ClientCount)
	assert.EqualValues(t, 1, summary.SessionCount)
	assert.EqualValues(t, 1, summary.SharedClientCount)
	require.NotNil(t, summary.LatestSessionDate)
	require.Len(t, summary.RecentSessions, 1)
	assert.Equal(t, "Malee Wongsa", summary.RecentSessions[0].ClientName)
	assert.Equal(t, 1, cache.sets)

	env.createClient(t, owner.ID, "Busaba")
	stale, err := dashboard.Summary(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stale.ClientCount, "summary served from cache")

	views.InvalidateAstrologerViews(ctx, owner.ID, owner.ID, "")
	fresh, err := dashboard.Summary(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fresh.ClientCount)
	assert.Equal(t, 2, cache.sets)
}

func TestDashboardViewsWithoutCacheAlwaysBuild(t *testing.T) {
	env := newWorkflowTestEnv(t)
	dashboard := NewDashboardService(env.clients, env.tarot, env.profiles, env.permissions, NewDashboardViews(nil, 0, nil))
	owner := env.createAstrologer(t, "owner@example.com", "Owner")

	summary, err := dashboard.Summary(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.ClientCount)
	assert.Nil(t, summary.LatestSessionDate)
}
