package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gamezone/services/storefront-api/internal/cart"
	"gamezone/shared/pkg/cache"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
	gets int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) GetString(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", cache.Nil
	}
	return v, nil
}

func (f *fakeKV) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

type countingProducts struct {
	Products
	lists int
}

func (c *countingProducts) List(ctx context.Context) ([]models.Product, error) {
	c.lists++
	return c.Products.List(ctx)
}

func TestProductsCachedReadThroughAndInvalidate(t *testing.T) {
	_, st, u, p := seedMemory(t)
	ctx := context.Background()
	kv := newFakeKV()
	inner := &countingProducts{Products: st.Products}
	cached := &ProductsCached{Products: inner, Redis: kv, TTL: time.Minute, Log: zerolog.Nop()}

	first, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, inner.lists)
	assert.Equal(t, time.Minute, kv.ttls[productsListKey])

	second, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.lists, "served from cache")
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, first[0].Price, second[0].Price)

	_, err = cached.AdjustStock(ctx, p.ID, -1)
	require.NoError(t, err)
	assert.NotContains(t, kv.data, productsListKey)

	third, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lists)
	assert.Equal(t, 2, third[0].Stock)

	extra := models.Product{Name: "Miku", Price: 1, Stock: 1, Category: models.CategoryFigures, CreatedBy: u.ID}
	require.NoError(t, cached.Create(ctx, &extra))
	assert.NotContains(t, kv.data, productsListKey)
}

func TestProductsCachedInvalidatesAfterCommit(t *testing.T) {
	mem, st, _, p := seedMemory(t)
	ctx := context.Background()
	kv := newFakeKV()
	cached := &ProductsCached{Products: st.Products, Redis: kv, TTL: time.Minute, Log: zerolog.Nop()}
	tx := NewMemoryTx(mem)

	_, err := cached.List(ctx)
	require.NoError(t, err)
	require.Contains(t, kv.data, productsListKey)

	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := cached.AdjustStock(ctx, p.ID, -1); err != nil {
			return err
		}
		assert.Contains(t, kv.data, productsListKey, "kept until commit")
		return nil
	})
	require.NoError(t, err)
	assert.NotContains(t, kv.data, productsListKey)

	_, err = cached.List(ctx)
	require.NoError(t, err)
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := cached.AdjustStock(ctx, p.ID, -1); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Contains(t, kv.data, productsListKey, "rollback leaves the cache alone")
}

func TestAfterCommitOutsideTxRunsNow(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func() { ran = true })
	assert.True(t, ran)
}

func TestProductsCachedFallsBackWhenRedisDown(t *testing.T) {
	_, st, _, p := seedMemory(t)
	ctx := context.Background()
	kv := newFakeKV()
	kv.err = errors.New("dial tcp: connection refused")
	cached := &ProductsCached{Products: st.Products, Redis: kv, TTL: time.Minute, Log: zerolog.Nop()}

	list, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	p.Stock = 10
	require.NoError(t, cached.Update(ctx, &p))
}

func TestProductsCachedIgnoresCorruptEntry(t *testing.T) {
	_, st, _, _ := seedMemory(t)
	kv := newFakeKV()
	kv.data[productsListKey] = "{not json"
	cached := &ProductsCached{Products: st.Products, Redis: kv, TTL: time.Minute, Log: zerolog.Nop()}

	list, err := cached.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCartsRedis(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	carts := &CartsRedis{Redis: kv, TTL: 2 * time.Hour, Now: func() time.Time { return now }}

	c, err := carts.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.UserID)
	assert.Empty(t, c.Items)

	require.NoError(t, c.Add(models.Product{ID: 1, Name: "Zelda", Price: models.Pesos(100), Stock: 4}, 2))
	require.NoError(t, carts.Save(ctx, c))
	assert.Equal(t, 2*time.Hour, kv.ttls["cart:5"])

	got, err := carts.Get(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.UpdatedAt.Equal(now))

	require.NoError(t, carts.Delete(ctx, 5))
	got, err = carts.Get(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	kv.data["cart:6"] = "garbage"
	got, err = carts.Get(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.UserID)

	kv.err = errors.New("down")
	_, err = carts.Get(ctx, 5)
	assert.Error(t, err)
}

func TestCartsMemoryIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	carts := NewCartsMemory()

	c := cart.New(1)
	require.NoError(t, c.Add(models.Product{ID: 1, Name: "Zelda", Price: 1, Stock: 4}, 1))
	require.NoError(t, carts.Save(ctx, c))

	c.Items[0].Quantity = 4
	got, err := carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}
