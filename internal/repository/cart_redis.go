package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/cart"
)

// cartMaxRetries bounds optimistic retries of one cart update.
const cartMaxRetries = 5

var errCartContended = errors.New("cart is being modified concurrently")

var _ cart.Store = (*RedisCartStore)(nil)

// RedisCartStore keeps carts in Redis under "cart:<session id>". Updates are
// optimistic WATCH transactions, retried when another writer wins the race.
type RedisCartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCartStore returns a store whose keys expire ttl after the last
// write.
func NewRedisCartStore(client redis.UniversalClient, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Get returns the stored cart, or an empty one.
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.Cart{}, nil
		}
		return cart.Cart{}, fmt.Errorf("getting cart: %w", err)
	}
	return decodeCart(data)
}

// Update reads, mutates and writes the cart inside a WATCH transaction.
func (s *RedisCartStore) Update(ctx context.Context, sessionID string, fn func(c *cart.Cart) error) (cart.Cart, error) {
	key := cartKey(sessionID)

	var result cart.Cart
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("getting cart: %w", err)
		}
		var current cart.Cart
		if len(data) > 0 {
			if current, err = decodeCart(data); err != nil {
				return err
			}
		}

		next := current.Clone()
		if err := fn(&next); err != nil {
			result = current
			return err
		}

		encoded := encodeCart(next)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for range cartMaxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return cart.Cart{}, errCartContended
}

// Clear deletes the session's cart.
func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

func encodeCart(c cart.Cart) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, l := range c.Lines {
			e.Obj(func(e *jx.Encoder) {
				e.Field("productId", func(e *jx.Encoder) { e.Int64(l.ProductID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
				e.Field("price", func(e *jx.Encoder) { e.Str(l.UnitPrice.String()) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
			})
		}
	})
	return e.Bytes()
}

func decodeCart(data []byte) (cart.Cart, error) {
	var c cart.Cart
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var l cart.Line
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				l.ProductID, err = d.Int64()
			case "name":
				l.Name, err = d.Str()
			case "price":
				var s string
				if s, err = d.Str(); err == nil {
					l.UnitPrice, err = decimal.NewFromString(s)
				}
			case "quantity":
				l.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		c.Lines = append(c.Lines, l)
		return nil
	})
	if err != nil {
		return cart.Cart{}, errors.Wrap(err, "decode cart")
	}
	return c, nil
}
