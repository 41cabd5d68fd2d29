// Package record persists keyed domain records as one JSON array per medium key.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"bookingcore/pkg/domain"
)

// ErrIDChanged is returned when an update mutator rewrites the record id.
var ErrIDChanged = errors.New("record: mutator changed record id")

// Collection is the generic record store for one entity type. Every mutation
// re-reads the stored array, applies the change and writes the full array back.
// Collections sharing a key must share the Collection value for the mutex to
// serialise their read-modify-write cycles.
type Collection[T domain.Record] struct {
	medium domain.Medium
	key    string
	mu     sync.Mutex
}

// NewCollection binds a collection to key on medium.
func NewCollection[T domain.Record](medium domain.Medium, key string) *Collection[T] {
	return &Collection[T]{medium: medium, key: key}
}

// List returns every record in insertion order. An absent key yields an empty slice.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// FindByID returns the record with the given id.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	return c.Find(ctx, func(item T) bool { return item.RecordID() == id })
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if pred(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Filter returns every record matching pred, preserving order.
func (c *Collection[T]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Create appends item. Uniqueness is the caller's concern.
func (c *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	items = append(items, item)
	if err := c.save(ctx, items); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Update applies mutator to the record with the given id and persists the
// result. It reports false when no such record exists.
func (c *Collection[T]) Update(ctx context.Context, id string, mutator func(*T)) (T, bool, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		if items[i].RecordID() != id {
			continue
		}
		updated := items[i]
		mutator(&updated)
		if updated.RecordID() != id {
			return zero, false, fmt.Errorf("%w: %q to %q", ErrIDChanged, id, updated.RecordID())
		}
		items[i] = updated
		if err := c.save(ctx, items); err != nil {
			return zero, false, err
		}
		return updated, true, nil
	}
	return zero, false, nil
}

// Delete removes the record with the given id and reports whether it existed.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	n, err := c.DeleteWhere(ctx, func(item T) bool { return item.RecordID() == id })
	return n > 0, err
}

// DeleteWhere removes every record matching pred and returns how many were
// removed. Nothing is written when no record matches.
func (c *Collection[T]) DeleteWhere(ctx context.Context, pred func(T) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := items[:0]
	for _, item := range items {
		if !pred(item) {
			kept = append(kept, item)
		}
	}
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := c.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear removes the whole collection from the medium.
func (c *Collection[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.medium.Remove(ctx, c.key); err != nil {
		return fmt.Errorf("record: clear %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.medium.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("record: read %s: %w", c.key, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("record: decode %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("record: encode %s: %w", c.key, err)
	}
	if err := c.medium.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("record: write %s: %w", c.key, err)
	}
	return nil
}
