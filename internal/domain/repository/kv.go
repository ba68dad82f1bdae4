package repository

import "context"

// UpdateFunc receives the current value (nil when absent) and returns the value to store.
type UpdateFunc func(current []byte) ([]byte, error)

// KeyValueStore is the raw persistence medium behind every typed repository.
// Get returns errors.ErrNotFound for absent keys and Create returns
// errors.ErrAlreadyExists when the key is taken. Update runs fn atomically
// with respect to other Update calls on the same key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Create(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
	HealthCheck(ctx context.Context) error
}
