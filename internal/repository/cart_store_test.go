package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/efitness/internal/domain/cart"
)

func newRedisCartStore(t *testing.T, ttl time.Duration) (*RedisCartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCartStore(client, ttl), mr
}

func cartStores(t *testing.T) map[string]cart.Store {
	redisStore, _ := newRedisCartStore(t, time.Hour)
	return map[string]cart.Store{
		"memory": NewMemoryCartStore(time.Hour),
		"redis":  redisStore,
	}
}

func addLine(id int64, qty int) func(c *cart.Cart) error {
	return func(c *cart.Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ProductID == id {
				c.Lines[i].Quantity += qty
				return nil
			}
		}
		c.Lines = append(c.Lines, cart.Line{
			ProductID: id,
			Name:      "Protein Bar",
			UnitPrice: decimal.RequireFromString("2.50"),
			Quantity:  qty,
		})
		return nil
	}
}

func TestCartStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range cartStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("EmptyByDefault", func(t *testing.T) {
				c, err := store.Get(ctx, "none")
				require.NoError(t, err)
				assert.True(t, c.Empty())
			})

			t.Run("UpdatePersists", func(t *testing.T) {
				_, err := store.Update(ctx, "s1", addLine(7, 2))
				require.NoError(t, err)
				c, err := store.Update(ctx, "s1", addLine(7, 1))
				require.NoError(t, err)
				require.Len(t, c.Lines, 1)
				assert.Equal(t, 3, c.Lines[0].Quantity)

				got, err := store.Get(ctx, "s1")
				require.NoError(t, err)
				require.Len(t, got.Lines, 1)
				assert.Equal(t, int64(7), got.Lines[0].ProductID)
				assert.Equal(t, "Protein Bar", got.Lines[0].Name)
				assert.True(t, decimal.RequireFromString("2.50").Equal(got.Lines[0].UnitPrice))
				assert.Equal(t, 3, got.Lines[0].Quantity)
			})

			t.Run("FailedUpdateLeavesCart", func(t *testing.T) {
				_, err := store.Update(ctx, "s2", addLine(1, 1))
				require.NoError(t, err)

				boom := errors.New("rejected")
				_, err = store.Update(ctx, "s2", func(c *cart.Cart) error {
					c.Lines[0].Quantity = 99
					c.Lines = append(c.Lines, cart.Line{ProductID: 2, Quantity: 1})
					return boom
				})
				require.ErrorIs(t, err, boom)

				got, err := store.Get(ctx, "s2")
				require.NoError(t, err)
				require.Len(t, got.Lines, 1)
				assert.Equal(t, 1, got.Lines[0].Quantity)
			})

			t.Run("SessionsIsolated", func(t *testing.T) {
				_, err := store.Update(ctx, "a", addLine(1, 1))
				require.NoError(t, err)
				got, err := store.Get(ctx, "b")
				require.NoError(t, err)
				assert.True(t, got.Empty())
			})

			t.Run("Clear", func(t *testing.T) {
				_, err := store.Update(ctx, "s3", addLine(1, 1))
				require.NoError(t, err)
				require.NoError(t, store.Clear(ctx, "s3"))
				got, err := store.Get(ctx, "s3")
				require.NoError(t, err)
				assert.True(t, got.Empty())
			})
		})
	}
}

func TestMemoryCartStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCartStore(0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "s", addLine(1, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 50, got.Lines[0].Quantity)
}

func TestMemoryCartStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryCartStore(time.Hour)
	store.now = func() time.Time { return now }

	_, err := store.Update(ctx, "s", addLine(1, 1))
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestMemoryCartStore_Eviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryCartStore(time.Minute)
	store.now = func() time.Time { return now }

	for i := range 1000 {
		_, err := store.Get(ctx, fmt.Sprintf("viewer-%d", i))
		require.NoError(t, err)
	}
	assert.Zero(t, store.Len(), "reads must not allocate carts")

	_, err := store.Update(ctx, "old", addLine(1, 1))
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = store.Update(ctx, "fresh", addLine(2, 1))
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	store.evict()
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity(2))

	// A writer that held an evicted entry lands in a new one.
	_, err = store.Update(ctx, "old", addLine(1, 3))
	require.NoError(t, err)
	got, err = store.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity(1))
}

func TestMemoryCartStore_RunStopsWithContext(t *testing.T) {
	store := NewMemoryCartStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRedisCartStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisCartStore(t, 30*time.Minute)

	_, err := store.Update(ctx, "s", addLine(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(cartKey("s")))

	mr.FastForward(31 * time.Minute)
	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestRedisCartStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisCartStore(t, time.Hour)
	require.NoError(t, mr.Set(cartKey("s"), "{not json"))

	_, err := store.Get(ctx, "s")
	require.Error(t, err)
}

func TestCartCodec(t *testing.T) {
	in := cart.Cart{Lines: []cart.Line{
		{ProductID: 7, Name: `Shaker "Pro"`, UnitPrice: decimal.RequireFromString("20.00"), Quantity: 2},
		{ProductID: 3, Name: "Gloves", UnitPrice: decimal.RequireFromString("9.99"), Quantity: 1},
	}}

	out, err := decodeCart(encodeCart(in))
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	for i := range in.Lines {
		assert.Equal(t, in.Lines[i].ProductID, out.Lines[i].ProductID)
		assert.Equal(t, in.Lines[i].Name, out.Lines[i].Name)
		assert.True(t, in.Lines[i].UnitPrice.Equal(out.Lines[i].UnitPrice))
		assert.Equal(t, in.Lines[i].Quantity, out.Lines[i].Quantity)
	}
}
