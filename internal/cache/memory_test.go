package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "forever", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "short", []byte("2"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	c.removeExpired()

	ok, _ := c.Exists(ctx, "forever")
	assert.True(t, ok)
	ok, _ = c.Exists(ctx, "short")
	assert.False(t, ok)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'y'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_CloseIdempotent(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestMemoryCache_SweeperStartsWithFirstTTL(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	c.cleanupInterval = 5 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "snapshot", []byte("1"), 0))
	c.mu.RLock()
	assert.False(t, c.sweeping)
	c.mu.RUnlock()

	require.NoError(t, c.Set(ctx, "short", []byte("2"), time.Millisecond))
	assert.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		_, present := c.entries["short"]
		return c.sweeping && !present
	}, time.Second, 5*time.Millisecond)

	ok, err := c.Exists(ctx, "snapshot")
	require.NoError(t, err)
	assert.True(t, ok)
}
