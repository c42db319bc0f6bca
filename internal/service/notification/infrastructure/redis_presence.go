// internal/service/notification/infrastructure/redis_presence.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const presencePrefix = "ws:presence:"

// clearScript 只删除仍指向本节点的记录，避免误删用户在其他节点上的新连接
var clearScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPresence 在 Redis 中记录用户连接所在的节点
type RedisPresence struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisPresence(rdb redis.Cmdable, ttl time.Duration) *RedisPresence {
	return &RedisPresence{rdb: rdb, ttl: ttl}
}

func (p *RedisPresence) Mark(ctx context.Context, userID, nodeID string) error {
	if err := p.rdb.Set(ctx, presencePrefix+userID, nodeID, p.ttl).Err(); err != nil {
		return errors.Wrapf(err, "mark presence for %s", userID)
	}
	return nil
}

func (p *RedisPresence) Clear(ctx context.Context, userID, nodeID string) error {
	if err := clearScript.Run(ctx, p.rdb, []string{presencePrefix + userID}, nodeID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrapf(err, "clear presence for %s", userID)
	}
	return nil
}

func (p *RedisPresence) Lookup(ctx context.Context, userID string) (string, bool, error) {
	node, err := p.rdb.Get(ctx, presencePrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "lookup presence for %s", userID)
	}
	return node, true, nil
}
