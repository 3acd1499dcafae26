// Package docstore persists named JSON documents. Every stateful engine component
// reads and writes whole entity collections through a Store.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hearth/internal/observability"

	"github.com/cenkalti/backoff/v5"
)

var (
	// ErrConflict reports that a concurrent writer changed the document between read and write.
	ErrConflict = errors.New("docstore: concurrent modification")
	// ErrRetriesExhausted is returned when Update kept conflicting until it gave up.
	ErrRetriesExhausted = errors.New("docstore: too many concurrent modifications")
)

// MaxUpdateAttempts bounds optimistic retries in Update.
const MaxUpdateAttempts = 8

// Mutator receives the current document (nil when absent) and returns its replacement.
// Returning a nil document leaves the stored value untouched.
// A returned error aborts the update without writing.
type Mutator func(current json.RawMessage, found bool) (json.RawMessage, error)

// Store is a key-value document store.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	// Update runs a read-modify-write on key. Concurrent updates to the same key are serialized:
	// fn may run more than once, so it must be free of side effects outside its return value.
	Update(ctx context.Context, key string, fn Mutator) error
	Ping(ctx context.Context) error
	Close() error
}

// retryConflicts reruns attempt while it reports ErrConflict, with a short
// exponential delay between tries.
func retryConflicts(ctx context.Context, driver string, attempt func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := attempt()
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, ErrConflict):
			observability.StoreConflicts.WithLabelValues(driver).Inc()
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(b), backoff.WithMaxTries(MaxUpdateAttempts))
	if errors.Is(err, ErrConflict) {
		return ErrRetriesExhausted
	}
	return err
}

type instrumented struct {
	next   Store
	driver string
}

// Instrument wraps s with tracing spans and latency metrics labelled by driver.
func Instrument(s Store, driver string) Store {
	return &instrumented{next: s, driver: driver}
}

func (s *instrumented) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	ctx, span := observability.StartStoreSpan(ctx, s.driver, "get", key)
	defer observability.TrackStoreOperation(s.driver, "get")()
	b, found, err := s.next.Get(ctx, key)
	observability.EndSpan(span, err)
	return b, found, err
}

func (s *instrumented) Set(ctx context.Context, key string, value json.RawMessage) error {
	ctx, span := observability.StartStoreSpan(ctx, s.driver, "set", key)
	defer observability.TrackStoreOperation(s.driver, "set")()
	err := s.next.Set(ctx, key, value)
	observability.EndSpan(span, err)
	return err
}

func (s *instrumented) Update(ctx context.Context, key string, fn Mutator) error {
	ctx, span := observability.StartStoreSpan(ctx, s.driver, "update", key)
	defer observability.TrackStoreOperation(s.driver, "update")()
	err := s.next.Update(ctx, key, fn)
	observability.EndSpan(span, err)
	return err
}

func (s *instrumented) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

func (s *instrumented) Close() error { return s.next.Close() }
