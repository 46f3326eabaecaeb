package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(WithClock(clock.Now))
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	isNew, err := store.MarkProcessed(ctx, "interest:ACC1:2026-01-15", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "interest:ACC1:2026-01-15", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "second claim must lose")

	clock.Advance(time.Hour)
	isNew, err = store.MarkProcessed(ctx, "interest:ACC1:2026-01-15", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "expired key can be claimed again")
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	processed, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	processed, _ = store.IsProcessed(ctx, "k")
	assert.True(t, processed)

	clock.Advance(2 * time.Minute)
	processed, _ = store.IsProcessed(ctx, "k")
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k"))

	isNew, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NoError(t, store.Release(ctx, "never-claimed"))
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	require.Equal(t, 2, store.Size())

	clock.Advance(10 * time.Minute)
	store.sweep()
	assert.Equal(t, 1, store.Size())
	processed, _ := store.IsProcessed(ctx, "long")
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	const keys, workers = 10, 8
	var winners atomic.Int32
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < keys; k++ {
				if ok, _ := store.MarkProcessed(ctx, fmt.Sprintf("key-%d", k), time.Hour); ok {
					winners.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(keys), winners.Load(), "each key has exactly one winner")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
