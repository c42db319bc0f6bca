package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solitaire/internal/service/order/domain"
)

// fakeRedis 实现 redis.Cmdable 中缓存用到的三个命令
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	f.data[key] = string(value.([]byte))
	f.ttl[key] = ttl
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisCartCacheRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	cache := NewRedisCartCache(rdb, time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrCacheMiss)

	id := int64(3)
	cart := &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ID: "a", ProductID: &id, Price: decimal.NewFromInt(5000), Quantity: 2}}}
	require.NoError(t, cache.Set(ctx, cart))
	assert.Equal(t, time.Minute, rdb.ttl["cart:u1"])

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(5000)))

	require.NoError(t, cache.Invalidate(ctx, "u1"))
	_, err = cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
