package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"solitaire/internal/service/order/domain"
)

const cartKeyPrefix = "cart:"

// RedisCartCache 把整辆购物车以 JSON 缓存在 cart:{user} 下
type RedisCartCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisCartCache 创建购物车缓存，ttl 为 0 时使用 10 分钟
func NewRedisCartCache(rdb redis.Cmdable, ttl time.Duration) *RedisCartCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCartCache{rdb: rdb, ttl: ttl}
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

func (c *RedisCartCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := c.rdb.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", cartKey(userID))
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, errors.Wrapf(err, "decode %s", cartKey(userID))
	}
	return &cart, nil
}

func (c *RedisCartCache) Set(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := c.rdb.Set(ctx, cartKey(cart.UserID), data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "set %s", cartKey(cart.UserID))
	}
	return nil
}

func (c *RedisCartCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return errors.Wrapf(err, "del %s", cartKey(userID))
	}
	return nil
}
