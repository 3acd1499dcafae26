package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hearth:doc:"

// RedisStore keeps documents as Redis strings and serializes updates with WATCH/MULTI.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a store backed by rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Get returns the document stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	b, err := s.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document %q: %w", key, err)
	}
	return b, true, nil
}

// Set writes value unconditionally.
func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.rdb.Set(ctx, redisKey(key), []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("set document %q: %w", key, err)
	}
	return nil
}

// Update runs fn inside an optimistic transaction and retries when the key changes underneath it.
func (s *RedisStore) Update(ctx context.Context, key string, fn Mutator) error {
	rk := redisKey(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, rk).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			current, found = nil, false
		} else if err != nil {
			return fmt.Errorf("get document %q: %w", key, err)
		}

		next, err := fn(current, found)
		if err != nil || next == nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, []byte(next), 0)
			return nil
		})
		return err
	}

	return retryConflicts(ctx, "redis", func() error {
		err := s.rdb.Watch(ctx, txf, rk)
		if errors.Is(err, redis.TxFailedErr) {
			return ErrConflict
		}
		return err
	})
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
