package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCacheTest(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "miniredis start")
	t.Cleanup(mr.Close)

	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, mr := newRedisCacheTest(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "INGAMEINFO:u1", []byte(`{"gold":1}`), 0))
	assert.True(t, mr.Exists("INGAMEINFO:u1"))
	assert.Equal(t, int64(0), int64(mr.TTL("INGAMEINFO:u1")), "snapshots carry no expiry")

	got, err := c.Get(ctx, "INGAMEINFO:u1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"gold":1}`), got)

	require.NoError(t, c.Delete(ctx, "INGAMEINFO:u1"))
	require.NoError(t, c.Delete(ctx, "INGAMEINFO:u1"))

	_, err = c.Get(ctx, "INGAMEINFO:u1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := c.Exists(ctx, "INGAMEINFO:u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_BackendDown(t *testing.T) {
	c, mr := newRedisCacheTest(t)
	ctx := context.Background()
	mr.Close()

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, c.Ping(ctx))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisCache(RedisConfig{Addr: addr})
	assert.Error(t, err)
}
