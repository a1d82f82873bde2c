package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gamezone/shared/pkg/cache"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

// KV is the part of cache.Redis the cached repositories use.
type KV interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var _ KV = (*cache.Redis)(nil)

const productsListKey = "catalog:products"

// ProductsCached serves List from Redis and drops the cached list on every write.
// Redis errors never fail a request; they fall through to the wrapped store.
type ProductsCached struct {
	Products
	Redis KV
	TTL   time.Duration
	Log   zerolog.Logger
}

var _ Products = (*ProductsCached)(nil)

func (r *ProductsCached) List(ctx context.Context) ([]models.Product, error) {
	// 1) Redis
	s, err := r.Redis.GetString(ctx, productsListKey)
	if err == nil {
		var out []models.Product
		if jerr := json.Unmarshal([]byte(s), &out); jerr == nil {
			return out, nil
		}
		r.Log.Warn().Msg("catalog cache entry unreadable, reloading")
	} else if !errors.Is(err, cache.Nil) {
		r.Log.Warn().Err(err).Msg("catalog cache unavailable")
	}

	// 2) store
	out, err := r.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	// 3) backfill
	if b, err := json.Marshal(out); err == nil {
		_ = r.Redis.SetString(ctx, productsListKey, string(b), r.TTL)
	}
	return out, nil
}

// invalidate drops the cached list after the surrounding transaction commits.
func (r *ProductsCached) invalidate(ctx context.Context) {
	AfterCommit(ctx, func() { r.Drop(context.WithoutCancel(ctx)) })
}

// Drop removes the cached product list.
func (r *ProductsCached) Drop(ctx context.Context) {
	if err := r.Redis.Del(ctx, productsListKey); err != nil {
		r.Log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func (r *ProductsCached) Create(ctx context.Context, p *models.Product) error {
	if err := r.Products.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *ProductsCached) Update(ctx context.Context, p *models.Product) error {
	if err := r.Products.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *ProductsCached) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	stock, err := r.Products.AdjustStock(ctx, id, delta)
	if err != nil {
		return stock, err
	}
	r.invalidate(ctx)
	return stock, nil
}

func (r *ProductsCached) Delete(ctx context.Context, id int64) error {
	if err := r.Products.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *ProductsCached) DeleteByCreator(ctx context.Context, userID int64) (int, error) {
	n, err := r.Products.DeleteByCreator(ctx, userID)
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.invalidate(ctx)
	}
	return n, nil
}
