package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-search-cache/cache"
)

func newTestRedisStore(t *testing.T, retention time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Address = mr.Addr()
	cfg.Retention = retention

	store, err := NewRedisStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func newTestMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()

	cfg := DefaultMemoryConfig()
	cfg.Capacity = 100
	cfg.NumShards = 4

	store, err := NewMemoryStore(cfg)
	require.NoError(t, err)
	return store
}

func TestStores_Contract(t *testing.T) {
	stores := map[string]func(t *testing.T) cache.Store{
		"redis": func(t *testing.T) cache.Store {
			store, _ := newTestRedisStore(t, 0)
			return store
		},
		"memory": func(t *testing.T) cache.Store {
			return newTestMemoryStore(t)
		},
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)

			require.NoError(t, store.Ping(ctx))

			got, err := store.Get(ctx, "absent")
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, store.Set(ctx, "k", []byte("v1")))
			got, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, store.Set(ctx, "k", []byte("v2")))
			got, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got, "Set must overwrite")
		})
	}
}

func TestRedisStore_NoRetentionByDefault(t *testing.T) {
	store, mr := newTestRedisStore(t, 0)

	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	assert.Equal(t, time.Duration(0), mr.TTL("k"))
}

func TestRedisStore_Retention(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.Equal(t, time.Hour, mr.TTL("k"))

	mr.FastForward(2 * time.Hour)
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_ServerErrors(t *testing.T) {
	store, mr := newTestRedisStore(t, 0)
	ctx := context.Background()

	mr.SetError("ERR simulated failure")

	_, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, redis.Nil))

	assert.Error(t, store.Set(ctx, "k", []byte("v")))

	mr.SetError("")
	assert.NoError(t, store.Set(ctx, "k", []byte("v")))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultRedisConfig()
	cfg.Address = addr
	cfg.DialTimeout = time.Second

	store, err := NewRedisStore(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewRedisStore_InvalidConfig(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Address", cfgErr.Field)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Closed(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", nil), ErrStoreClosed)
	assert.ErrorIs(t, store.Ping(ctx), ErrStoreClosed)
}

func TestNewMemoryStore_InvalidConfig(t *testing.T) {
	_, err := NewMemoryStore(MemoryConfig{})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Capacity", cfgErr.Field)
}

func TestRedisStore_WithDecorator(t *testing.T) {
	store, mr := newTestRedisStore(t, 0)
	d, err := cache.New(store, cache.DefaultConfig())
	require.NoError(t, err)

	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "Alien", nil
	}
	call := cache.Call{Identity: "films.get_item", Args: []any{"f1"}}

	for i := 0; i < 2; i++ {
		got, err := cache.Through(context.Background(), d, call, fetch)
		require.NoError(t, err)
		assert.Equal(t, "Alien", got)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(`cache:{"callable":"films.get_item","args":["f1"],"kwargs":[]}`))
}
