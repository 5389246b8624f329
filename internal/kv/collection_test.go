package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassa/internal/core"
	"cassa/internal/kv"
	"cassa/internal/kv/memory"
)

type failingStore struct {
	*memory.Store
	failSet bool
	failGet bool
}

var errUnavailable = errors.New("storage unavailable")

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errUnavailable
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errUnavailable
	}
	return f.Store.Set(ctx, key, value)
}

func TestNewCollectionInitializesEmptyArray(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	c, err := kv.NewCollection[core.Item](ctx, store, kv.KeyInventory)
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, kv.KeyInventory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(raw))

	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNewCollectionKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, kv.KeyInventory, []byte(`[{"name":"Widget","price":9.99,"quantity":10}]`)))

	c, err := kv.NewCollection[core.Item](ctx, store, kv.KeyInventory)
	require.NoError(t, err)
	items, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(999), items[0].Price.Cents)
}

func TestNewCollectionStorageInitError(t *testing.T) {
	ctx := context.Background()

	_, err := kv.NewCollection[core.Item](ctx, &failingStore{Store: memory.New(), failSet: true}, kv.KeySales)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStorageInit)
	assert.ErrorIs(t, err, errUnavailable)

	_, err = kv.NewCollection[core.Item](ctx, &failingStore{Store: memory.New(), failGet: true}, kv.KeySales)
	assert.ErrorIs(t, err, core.ErrStorageInit)
}

func TestCollectionCorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, kv.KeySales, []byte(`{not json`)))

	c, err := kv.NewCollection[core.Sale](ctx, store, kv.KeySales)
	require.NoError(t, err)

	sales, err := c.Load(ctx)
	assert.Empty(t, sales)
	var corrupt *core.StorageCorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, kv.KeySales, corrupt.Key)
	assert.True(t, core.IsWarning(err))

	err = c.Mutate(ctx, func(s []core.Sale) ([]core.Sale, error) {
		return append(s, core.Sale{ID: "s1"}), nil
	})
	require.NoError(t, err)

	backup, ok, err := store.Get(ctx, kv.KeySales+kv.CorruptSuffix)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{not json", string(backup))

	sales, err = c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "s1", sales[0].ID)
}

func TestCollectionMutateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c, err := kv.NewCollection[core.Item](ctx, store, kv.KeyInventory)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = c.Mutate(ctx, func(items []core.Item) ([]core.Item, error) {
		return append(items, core.Item{Name: "x"}), boom
	})
	assert.ErrorIs(t, err, boom)

	raw, _, _ := store.Get(ctx, kv.KeyInventory)
	assert.Equal(t, "[]", string(raw))
}
