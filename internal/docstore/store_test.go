package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := NewGormStore(db)
	require.NoError(t, s.Migrate())
	return s
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

// storeFactories runs the same contract against every driver.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
		"redis":  func(t *testing.T) Store { return newRedisStore(t) },
		"instrumented": func(t *testing.T) Store {
			return Instrument(NewMemoryStore(), "memory")
		},
	}
}

func increment(current json.RawMessage, found bool) (json.RawMessage, error) {
	n := 0
	if found {
		v, err := strconv.Atoi(string(current))
		if err != nil {
			return nil, err
		}
		n = v
	}
	return json.RawMessage(strconv.Itoa(n + 1)), nil
}

func TestStore_GetSetRoundTrip(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			_, found, err := s.Get(ctx, "v1:topics")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Set(ctx, "v1:topics", json.RawMessage(`[{"id":"t1"}]`)))
			require.NoError(t, s.Set(ctx, "v1:topics", json.RawMessage(`[{"id":"t2"}]`)))

			got, found, err := s.Get(ctx, "v1:topics")
			require.NoError(t, err)
			assert.True(t, found)
			assert.JSONEq(t, `[{"id":"t2"}]`, string(got))
			assert.NoError(t, s.Ping(ctx))
		})
	}
}

func TestStore_UpdateSemantics(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			require.NoError(t, s.Update(ctx, "counter", increment))
			require.NoError(t, s.Update(ctx, "counter", increment))

			got, _, err := s.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, "2", string(got))

			boom := errors.New("rejected")
			err = s.Update(ctx, "counter", func(json.RawMessage, bool) (json.RawMessage, error) {
				return json.RawMessage("99"), boom
			})
			assert.ErrorIs(t, err, boom)

			require.NoError(t, s.Update(ctx, "counter", func(json.RawMessage, bool) (json.RawMessage, error) {
				return nil, nil
			}))

			got, _, err = s.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, "2", string(got), "failed and no-op updates must not write")
		})
	}
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	const workers = 12
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- s.Update(ctx, "counter", increment)
				}()
			}
			wg.Wait()
			close(errs)

			succeeded := 0
			for err := range errs {
				if err == nil {
					succeeded++
				} else {
					assert.ErrorIs(t, err, ErrRetriesExhausted)
				}
			}

			got, _, err := s.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(succeeded), string(got), "no lost updates")
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", json.RawMessage(`"abc"`)))

	got, _, _ := s.Get(ctx, "k")
	got[1] = 'z'

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(again))
}

func TestMemoryStore_UpdateHonoursCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Update(ctx, "k", increment)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGormStore_VersionIncrements(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "k", increment))
	require.NoError(t, s.Set(ctx, "k", json.RawMessage("10")))
	require.NoError(t, s.Update(ctx, "k", increment))

	var doc Document
	require.NoError(t, s.db.Where("collection_key = ?", "k").Take(&doc).Error)
	assert.Equal(t, int64(3), doc.Version)
	assert.JSONEq(t, "11", string(doc.Body))
}

func TestRedisStore_UsesNamespacedKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	require.NoError(t, s.Set(context.Background(), "v1:groups", json.RawMessage(`[]`)))
	assert.True(t, mr.Exists("hearth:doc:v1:groups"))
	assert.NoError(t, s.Close())
}
