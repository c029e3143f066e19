package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.True(t, IsCacheMiss(err))

	value := []byte("payload")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Set(ctx, "b", []byte("2")))
	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())
	assert.NoError(t, store.Close())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsCacheMiss(err))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := OpenStore(ctx, Options{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = OpenStore(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = OpenStore(ctx, Options{Backend: BackendPostgres})
	assert.Error(t, err)

	_, err = OpenStore(ctx, Options{Backend: "memcached"})
	assert.Error(t, err)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithTTL(time.Hour)
	store.nowFunc = func() time.Time { return base }

	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	store.nowFunc = func() time.Time { return base.Add(59 * time.Minute) }
	_, err := store.Get(ctx, "k")
	assert.NoError(t, err)

	store.nowFunc = func() time.Time { return base.Add(61 * time.Minute) }
	_, err = store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
	assert.Equal(t, 0, store.Len())
}

func TestOpenStore_MemoryHonoursTTL(t *testing.T) {
	store, err := OpenStore(context.Background(), Options{Backend: BackendMemory, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, store.(*MemoryStore).ttl)
}
