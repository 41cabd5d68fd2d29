package domain

import "context"

// Medium is the string-keyed storage surface the record store persists to.
// Get reports false when the key is absent; Remove of an absent key is a no-op.
type Medium interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}
