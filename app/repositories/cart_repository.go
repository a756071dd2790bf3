package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix   = "cart:"
	DefaultCartTTL  = 7 * 24 * time.Hour
	cartMaxAttempts = 3
)

// CartRepository stores one cart per user. Carts expire after a period of
// inactivity.
type CartRepository interface {
	GetItems(ctx context.Context, userID string) ([]pricing.CartItem, error)
	AddItem(ctx context.Context, userID string, productID uint, qty int) (int, error)
	SetItem(ctx context.Context, userID string, productID uint, qty int) error
	RemoveItem(ctx context.Context, userID string, productID uint) error
	Clear(ctx context.Context, userID string) error
}

type storedCartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// storedCart is keyed by the product id rendered as a string.
type storedCart map[string]storedCartItem

type redisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &redisCartRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisCartRepository) load(ctx context.Context, getter stringGetter, userID string) (storedCart, error) {
	raw, err := getter.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return storedCart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart for user %s: %w", userID, err)
	}

	cart := storedCart{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart for user %s: %w", userID, err)
	}
	return cart, nil
}

func (r *redisCartRepository) GetItems(ctx context.Context, userID string) ([]pricing.CartItem, error) {
	cart, err := r.load(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}

	items := make([]pricing.CartItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, pricing.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

// update runs mutate under WATCH so concurrent writers to the same cart do
// not lose each other's changes.
func (r *redisCartRepository) update(ctx context.Context, userID string, mutate func(storedCart)) error {
	key := cartKey(userID)

	txf := func(tx *redis.Tx) error {
		cart, err := r.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		mutate(cart)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(cart) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			data, err := json.Marshal(cart)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < cartMaxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("cart for user %s changed concurrently, giving up after %d attempts", userID, cartMaxAttempts)
}

func (r *redisCartRepository) AddItem(ctx context.Context, userID string, productID uint, qty int) (int, error) {
	var newQty int
	err := r.update(ctx, userID, func(cart storedCart) {
		key := strconv.FormatUint(uint64(productID), 10)
		item := cart[key]
		item.ProductID = productID
		item.Quantity += qty
		cart[key] = item
		newQty = item.Quantity
	})
	return newQty, err
}

// SetItem replaces the quantity. Zero or less removes the line.
func (r *redisCartRepository) SetItem(ctx context.Context, userID string, productID uint, qty int) error {
	return r.update(ctx, userID, func(cart storedCart) {
		key := strconv.FormatUint(uint64(productID), 10)
		if qty <= 0 {
			delete(cart, key)
			return
		}
		cart[key] = storedCartItem{ProductID: productID, Quantity: qty}
	})
}

func (r *redisCartRepository) RemoveItem(ctx context.Context, userID string, productID uint) error {
	return r.update(ctx, userID, func(cart storedCart) {
		delete(cart, strconv.FormatUint(uint64(productID), 10))
	})
}

func (r *redisCartRepository) Clear(ctx context.Context, userID string) error {
	return r.client.Del(ctx, cartKey(userID)).Err()
}
