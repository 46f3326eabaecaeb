package cache

import (
	"context"
	"testing"

	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("redis disabled", func(t *testing.T) {
		store := NewIdempotencyStore(ctx, config.RedisConfig{Enabled: false}, zaptest.NewLogger(t))
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		store := NewIdempotencyStore(ctx, config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, zaptest.NewLogger(t))
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})
}

func TestRedisIdempotencyStore_Unreachable(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedisIdempotencyStore(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()

	_, err = store.MarkProcessed(ctx, "k", 0)
	assert.ErrorContains(t, err, "failed to claim idempotency key k")
	_, err = store.IsProcessed(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Release(ctx, "k"))
	assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)
}
