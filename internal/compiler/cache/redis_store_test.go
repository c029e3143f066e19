package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	store := NewRedisStoreWithClient(client, DefaultStoreConfig())
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	config := DefaultRedisConfig()
	config.Addr = mr.Addr()

	store, err := NewRedisStore(context.Background(), config)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestNewRedisStore_ConnectionError(t *testing.T) {
	config := DefaultRedisConfig()
	config.Addr = "localhost:99999"

	_, err := NewRedisStore(context.Background(), config)
	assert.Error(t, err)
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("msgidl:k"))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.Equal(t, 24*time.Hour, mr.TTL("msgidl:k"))

	mr.FastForward(25 * time.Hour)
	_, err := store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestRedisStore_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("other:key", "x"))
	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Set(ctx, "b", []byte("2")))

	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists("msgidl:a"))
	assert.False(t, mr.Exists("msgidl:b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_DeleteMany(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestRedis(t)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, []byte(k)))
	}
	require.NoError(t, store.DeleteMany(ctx, []string{"a", "c"}))
	require.NoError(t, store.DeleteMany(ctx, nil))

	assert.False(t, mr.Exists("msgidl:a"))
	assert.True(t, mr.Exists("msgidl:b"))
	assert.False(t, mr.Exists("msgidl:c"))
}
