package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"cassa/internal/core"
)

// Collection is a JSON array persisted under one key. Every mutation is a full
// read, in-memory modify and full write, serialized by the collection's mutex so
// there is exactly one writer at a time.
type Collection[T any] struct {
	mu    sync.Mutex
	store Store
	key   string
}

// NewCollection writes an empty array under key when nothing is stored yet.
func NewCollection[T any](ctx context.Context, store Store, key string) (*Collection[T], error) {
	if err := ValidateKey(key); err != nil {
		return nil, &core.StorageInitError{Key: key, Err: err}
	}
	_, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, &core.StorageInitError{Key: key, Err: err}
	}
	if !ok {
		if err := store.Set(ctx, key, []byte("[]")); err != nil {
			return nil, &core.StorageInitError{Key: key, Err: err}
		}
	}
	return &Collection[T]{store: store, key: key}, nil
}

func (c *Collection[T]) Key() string { return c.key }

// Load returns the stored elements. An undecodable document yields an empty slice
// together with a *core.StorageCorruptError.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, _, err := c.load(ctx)
	return items, err
}

// Mutate applies fn to the current elements and stores the result. When fn returns
// an error nothing is written. A corrupt document is copied to key+CorruptSuffix and
// fn starts from an empty slice.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, raw, err := c.load(ctx)
	if err != nil {
		if !core.IsWarning(err) {
			return err
		}
		if berr := c.store.Set(ctx, c.key+CorruptSuffix, raw); berr != nil {
			return fmt.Errorf("back up corrupt %s: %w", c.key, berr)
		}
		slog.WarnContext(ctx, "Corrupt collection backed up and reset",
			"key", c.key, "backup_key", c.key+CorruptSuffix, "error", err)
	}

	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, next)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, []byte, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	items := []T{}
	if !ok {
		return items, nil, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}, raw, &core.StorageCorruptError{Key: c.key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, raw, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, b); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}
