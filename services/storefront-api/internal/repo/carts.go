package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"gamezone/services/storefront-api/internal/cart"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/cache"
)

func cartKey(userID int64) string { return "cart:" + strconv.FormatInt(userID, 10) }

// CartsRedis stores each cart as one JSON value. Every Save renews the TTL,
// so an idle cart expires with the shopping session.
type CartsRedis struct {
	Redis KV
	TTL   time.Duration
	Now   func() time.Time
}

var _ Carts = (*CartsRedis)(nil)

func (r *CartsRedis) Get(ctx context.Context, userID int64) (cart.Cart, error) {
	s, err := r.Redis.GetString(ctx, cartKey(userID))
	if errors.Is(err, cache.Nil) {
		return cart.New(userID), nil
	}
	if err != nil {
		return cart.Cart{}, apperr.Wrap(apperr.TypeServer, "", err)
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		// a corrupt blob is not worth failing the shopper over
		return cart.New(userID), nil
	}
	c.UserID = userID
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return c, nil
}

func (r *CartsRedis) Save(ctx context.Context, c cart.Cart) error {
	c.UpdatedAt = stamp(r.Now)
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := r.Redis.SetString(ctx, cartKey(c.UserID), string(b), r.TTL); err != nil {
		return apperr.Wrap(apperr.TypeServer, "", err)
	}
	return nil
}

func (r *CartsRedis) Delete(ctx context.Context, userID int64) error {
	if err := r.Redis.Del(ctx, cartKey(userID)); err != nil {
		return apperr.Wrap(apperr.TypeServer, "", err)
	}
	return nil
}

func stamp(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now().UTC()
}

// CartsMemory keeps carts in process, for the memory driver and tests.
type CartsMemory struct {
	mu    sync.Mutex
	carts map[int64]cart.Cart
	Now   func() time.Time
}

var _ Carts = (*CartsMemory)(nil)

func NewCartsMemory() *CartsMemory {
	return &CartsMemory{carts: make(map[int64]cart.Cart)}
}

func (r *CartsMemory) Get(ctx context.Context, userID int64) (cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return cart.New(userID), nil
	}
	c.Items = append([]cart.Item{}, c.Items...)
	return c, nil
}

func (r *CartsMemory) Save(ctx context.Context, c cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.UpdatedAt = stamp(r.Now)
	c.Items = append([]cart.Item{}, c.Items...)
	r.carts[c.UserID] = c
	return nil
}

func (r *CartsMemory) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
