package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupRedisCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client), mr
}

func TestCacheService_SetGet(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "team:113", cachedThing{Name: "Reds", Count: 3}, time.Minute))
	assert.True(t, mr.Exists("hrparlay:team:113"))

	var got cachedThing
	require.NoError(t, cache.Get(ctx, "team:113", &got))
	assert.Equal(t, cachedThing{Name: "Reds", Count: 3}, got)
}

func TestCacheService_MissAndExpiry(t *testing.T) {
	cache, mr := setupRedisCache(t)

	var got cachedThing
	assert.ErrorIs(t, cache.GetSimple("absent", &got), ErrCacheMiss)

	require.NoError(t, cache.SetSimple("odds", cachedThing{Name: "h2h"}, providers.LiveTTL))
	require.NoError(t, cache.GetSimple("odds", &got))

	mr.FastForward(providers.LiveTTL + time.Second)
	assert.ErrorIs(t, cache.GetSimple("odds", &got), ErrCacheMiss)
}

func TestCacheService_EntriesExpireByAge(t *testing.T) {
	cache, mr := setupRedisCache(t)

	require.NoError(t, cache.SetSimple("bdl:games:2025-06-01", []int{1, 2}, providers.LiveTTL))
	assert.Equal(t, providers.LiveTTL, mr.TTL("hrparlay:bdl:games:2025-06-01"))

	require.NoError(t, cache.SetSimple("bdl:hr_leaders:2025", []int{3}, providers.SeasonTTL))
	mr.FastForward(providers.LiveTTL + time.Second)

	var got []int
	assert.ErrorIs(t, cache.GetSimple("bdl:games:2025-06-01", &got), ErrCacheMiss)
	require.NoError(t, cache.GetSimple("bdl:hr_leaders:2025", &got))
	assert.Equal(t, []int{3}, got)
}

func TestCacheService_ServerDown(t *testing.T) {
	cache, mr := setupRedisCache(t)
	mr.Close()

	var got cachedThing
	err := cache.GetSimple("anything", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache(time.Minute)

	var got cachedThing
	assert.ErrorIs(t, cache.GetSimple("missing", &got), ErrCacheMiss)

	require.NoError(t, cache.SetSimple("k", cachedThing{Name: "x", Count: 1}, time.Minute))
	require.NoError(t, cache.GetSimple("k", &got))
	assert.Equal(t, "x", got.Name)

	// callers get copies
	got.Name = "mutated"
	var again cachedThing
	require.NoError(t, cache.GetSimple("k", &again))
	assert.Equal(t, "x", again.Name)
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(time.Minute)

	require.NoError(t, cache.SetSimple("short", 1, 20*time.Millisecond))
	var v int
	require.NoError(t, cache.GetSimple("short", &v))

	time.Sleep(40 * time.Millisecond)
	assert.ErrorIs(t, cache.GetSimple("short", &v), ErrCacheMiss)
}

func TestCachesSatisfyProviderInterface(t *testing.T) {
	var _ providers.CacheProvider = (*CacheService)(nil)
	var _ providers.CacheProvider = (*MemoryCache)(nil)
}
