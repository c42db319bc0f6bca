package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noScriptError 模拟服务端返回的错误回复，redis.HasErrorPrefix 依赖 RedisError 方法识别它
type noScriptError string

func (e noScriptError) Error() string { return string(e) }

func (noScriptError) RedisError() {}

// fakeRedis 实现 presence 用到的命令，脚本按 compare-and-delete 语义执行
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	// evals 统计 NOSCRIPT 之后回退到 EVAL 的次数
	evals int
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
	f.data[key] = value.(string)
	f.ttl[key] = ttl
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) EvalSha(ctx context.Context, _ string, _ []string, _ ...any) *redis.Cmd {
	cmd := redis.NewCmd(ctx, "evalsha")
	cmd.SetErr(noScriptError("NOSCRIPT No matching script. Please use EVAL."))
	return cmd
}

func (f *fakeRedis) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.evals++
	cmd := redis.NewCmd(ctx, "eval")
	if f.data[keys[0]] == args[0].(string) {
		delete(f.data, keys[0])
		cmd.SetVal(int64(1))
		return cmd
	}
	cmd.SetVal(int64(0))
	return cmd
}

func TestRedisPresence(t *testing.T) {
	ctx := context.Background()
	rdb := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
	p := NewRedisPresence(rdb, time.Hour)

	_, online, err := p.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, p.Mark(ctx, "u1", "node-a"))
	assert.Equal(t, time.Hour, rdb.ttl[presencePrefix+"u1"])

	// 用户已经连到了 node-b，node-a 的断开不应删除新记录
	require.NoError(t, p.Mark(ctx, "u1", "node-b"))
	require.NoError(t, p.Clear(ctx, "u1", "node-a"))
	assert.Equal(t, 1, rdb.evals)
	node, online, err := p.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, online)
	assert.Equal(t, "node-b", node)

	require.NoError(t, p.Clear(ctx, "u1", "node-b"))
	_, online, err = p.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, online)
}
