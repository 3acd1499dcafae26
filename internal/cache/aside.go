package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	FeedKeyPrefix        = "feed:%s:%d"
	LeaderboardKeyPrefix = "leaderboard:%d"
)

// LeaderboardTTL bounds how stale the public leaderboard may be.
const LeaderboardTTL = time.Minute

// FeedKey is the cache key of a user's feed at a given length.
func FeedKey(userID string, limit int) string {
	return fmt.Sprintf(FeedKeyPrefix, userID, limit)
}

// LeaderboardKey is the cache key of the top-N leaderboard.
func LeaderboardKey(limit int) string {
	return fmt.Sprintf(LeaderboardKeyPrefix, limit)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss or a Redis failure it calls fetch, which must populate dest,
// and then stores dest with ttl on a best-effort basis. A zero ttl bypasses the cache.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) error {
	if rdb == nil || ttl <= 0 {
		return fetch()
	}

	found, err := GetJSON(ctx, rdb, key, dest)
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, rdb, key, dest, ttl)
	return nil
}

// Invalidate deletes key on a best-effort basis.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	rdb.Del(ctx, keys...)
}
