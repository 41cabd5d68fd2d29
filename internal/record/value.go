package record

import (
	"context"
	"encoding/json"
	"fmt"

	"bookingcore/pkg/domain"
)

// Value stores a single JSON document under one medium key.
type Value[T any] struct {
	medium domain.Medium
	key    string
}

// NewValue binds a single-value slot to key on medium.
func NewValue[T any](medium domain.Medium, key string) *Value[T] {
	return &Value[T]{medium: medium, key: key}
}

// Load returns the stored value, reporting false when the key is absent.
func (v *Value[T]) Load(ctx context.Context) (T, bool, error) {
	var out T
	raw, ok, err := v.medium.Get(ctx, v.key)
	if err != nil {
		return out, false, fmt.Errorf("record: read %s: %w", v.key, err)
	}
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("record: decode %s: %w", v.key, err)
	}
	return out, true, nil
}

// Store overwrites the stored value.
func (v *Value[T]) Store(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("record: encode %s: %w", v.key, err)
	}
	if err := v.medium.Set(ctx, v.key, raw); err != nil {
		return fmt.Errorf("record: write %s: %w", v.key, err)
	}
	return nil
}

// Remove deletes the stored value. Removing an absent value is not an error.
func (v *Value[T]) Remove(ctx context.Context) error {
	if err := v.medium.Remove(ctx, v.key); err != nil {
		return fmt.Errorf("record: remove %s: %w", v.key, err)
	}
	return nil
}
