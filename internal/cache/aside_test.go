package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAside_MissThenHit(t *testing.T) {
	mr, rdb := setupRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{Name: "feed", Count: calls}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, rdb, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, first.Count)
	assert.True(t, mr.Exists("k"))

	var second cachedThing
	require.NoError(t, Aside(ctx, rdb, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, second.Count)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)

	var third cachedThing
	require.NoError(t, Aside(ctx, rdb, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, third.Count)
}

func TestAside_BypassesWithoutClientOrTTL(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()

	calls := 0
	var dest cachedThing
	fetch := func() error { calls++; return nil }

	require.NoError(t, Aside(ctx, nil, "k", &dest, time.Minute, fetch))
	require.NoError(t, Aside(ctx, rdb, "k", &dest, 0, fetch))
	require.NoError(t, Aside(ctx, rdb, "k", &dest, 0, fetch))
	assert.Equal(t, 3, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr, rdb := setupRedis(t)
	boom := errors.New("boom")

	var dest cachedThing
	err := Aside(context.Background(), rdb, "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestAside_CorruptEntryRefetches(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var dest cachedThing
	err := Aside(context.Background(), rdb, "k", &dest, time.Minute, func() error {
		dest = cachedThing{Name: "fresh"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", dest.Name)
}

func TestInvalidateAndKeys(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set(FeedKey("u1", 10), "[]"))

	Invalidate(context.Background(), rdb, FeedKey("u1", 10))
	assert.False(t, mr.Exists("feed:u1:10"))
	assert.Equal(t, "leaderboard:5", LeaderboardKey(5))

	Invalidate(context.Background(), nil, "ignored")
}
