package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-sentinel/internal/core/cache"
)

func TestRedisStore_Seen(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	store := NewRedisStore(adapter)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "item-1|On hold|HELD_IN_CUSTOMS", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = store.Seen(ctx, "item-1|On hold|HELD_IN_CUSTOMS", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.Seen(ctx, "item-2|On hold|HELD_IN_CUSTOMS", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisStore_WindowExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	store := NewRedisStore(adapter)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "item-1|On hold|HELD_IN_CUSTOMS", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, seen)

	mr.FastForward(6 * time.Minute)

	seen, err = store.Seen(ctx, "item-1|On hold|HELD_IN_CUSTOMS", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisStore_BrokenConnection(t *testing.T) {
	mr := miniredis.RunT(t)

	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	mr.Close()

	store := NewRedisStore(adapter)
	_, err = store.Seen(context.Background(), "item-1|On hold|HELD_IN_CUSTOMS", 5*time.Minute)
	assert.Error(t, err)
}
