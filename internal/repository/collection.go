// Package repository provides typed entity collections on top of the document store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hearth/internal/docstore"
	"hearth/internal/models"
)

// Collection is an ordered list of entities persisted as one JSON document.
type Collection[T any] struct {
	store    docstore.Store
	key      string
	resource string
	idOf     func(*T) string
}

// NewCollection binds a collection to key. resource names the entity in not-found errors.
func NewCollection[T any](store docstore.Store, key, resource string, idOf func(*T) string) *Collection[T] {
	return &Collection[T]{store: store, key: key, resource: resource, idOf: idOf}
}

// Key returns the document key the collection is stored under.
func (c *Collection[T]) Key() string {
	return c.key
}

func (c *Collection[T]) decode(raw json.RawMessage, found bool) ([]T, error) {
	if !found || len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

func (c *Collection[T]) encode(items []T) (json.RawMessage, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.key, err)
	}
	return b, nil
}

// All returns every entity in stored order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	return c.decode(raw, found)
}

func (c *Collection[T]) indexOf(items []T, id string) int {
	for i := range items {
		if c.idOf(&items[i]) == id {
			return i
		}
	}
	return -1
}

// Find returns the entity with id or a not-found error.
func (c *Collection[T]) Find(ctx context.Context, id string) (*T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	if i := c.indexOf(items, id); i >= 0 {
		return &items[i], nil
	}
	return nil, models.NewNotFoundError(c.resource, id)
}

// Transform runs fn over the whole collection inside one serialized update and stores
// the slice it returns. fn may be retried and must only change its argument.
func (c *Collection[T]) Transform(ctx context.Context, fn func(items []T) ([]T, error)) error {
	err := c.store.Update(ctx, c.key, func(raw json.RawMessage, found bool) (json.RawMessage, error) {
		items, err := c.decode(raw, found)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return c.encode(next)
	})
	if errors.Is(err, docstore.ErrRetriesExhausted) {
		return models.NewConflictError("The " + c.resource + " is busy; try again")
	}
	return err
}

// Insert appends item. An existing entity with the same id is a conflict.
func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	id := c.idOf(&item)
	return c.Transform(ctx, func(items []T) ([]T, error) {
		if c.indexOf(items, id) >= 0 {
			return nil, models.NewConflictError(c.resource + " " + id + " already exists")
		}
		return append(items, item), nil
	})
}

// Mutate applies fn to the entity with id and stores the result, returning the stored copy.
// An error from fn aborts the write and is returned unchanged.
func (c *Collection[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var out T
	err := c.Transform(ctx, func(items []T) ([]T, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, models.NewNotFoundError(c.resource, id)
		}
		if err := fn(&items[i]); err != nil {
			return nil, err
		}
		out = items[i]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Upsert applies fn to the entity with id, or to a zero value that is then appended
// when none exists yet. The second result reports whether the entity was created.
func (c *Collection[T]) Upsert(ctx context.Context, id string, fn func(item *T, created bool) error) (*T, bool, error) {
	var (
		out     T
		created bool
	)
	err := c.Transform(ctx, func(items []T) ([]T, error) {
		i := c.indexOf(items, id)
		created = i < 0
		if created {
			var zero T
			if err := fn(&zero, true); err != nil {
				return nil, err
			}
			out = zero
			return append(items, zero), nil
		}
		if err := fn(&items[i], false); err != nil {
			return nil, err
		}
		out = items[i]
		return items, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

// Delete removes the entity with id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.Transform(ctx, func(items []T) ([]T, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, models.NewNotFoundError(c.resource, id)
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// Clear removes every entity.
func (c *Collection[T]) Clear(ctx context.Context) error {
	raw, err := c.encode(nil)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key, raw)
}
