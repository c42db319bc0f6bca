// internal/pkg/bootstrap/deps.go
package bootstrap

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"solitaire/internal/pkg/auth"
	"solitaire/internal/pkg/database"
	"solitaire/internal/pkg/httpclient"
	"solitaire/internal/pkg/redis"
)

// OpenMySQL 打开数据库连接，并在关停时关闭
func (a AppCtx) OpenMySQL() (*gorm.DB, error) {
	c := a.Config.Infra.MySQL
	db, err := database.Open(database.Options{
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	a.OnShutdown(func(context.Context) error { return database.Close(db) })
	return db, nil
}

// OpenRedis 连接 Redis，并在关停时关闭
func (a AppCtx) OpenRedis() (*goredis.Client, error) {
	c := a.Config.Infra.Redis
	client, err := redis.NewClient(a.Ctx, c.Addr, c.Password, c.DB)
	if err != nil {
		return nil, err
	}
	a.OnShutdown(func(context.Context) error { return client.Close() })
	return client, nil
}

// Authenticator 按 auth.mode 创建认证器
func (a AppCtx) Authenticator() (auth.Authenticator, error) {
	c := a.Config.Auth
	return auth.New(a.Ctx, c.Mode, c.ProjectID, c.CredentialsFile, c.AdminUIDs)
}

// ServiceClient 创建调用其他服务的 HTTP 客户端。启用 Nacos 时通过注册中心发现实例，否则使用 services 中的静态地址。
func (a AppCtx) ServiceClient(tracer trace.Tracer) *httpclient.Client {
	return httpclient.NewClient(tracer, a.Resolver())
}

// Resolver 启用 Nacos 时走服务发现，否则使用静态地址
func (a AppCtx) Resolver() httpclient.Resolver {
	if a.Nacos != nil {
		return httpclient.DiscoveryResolver{Discoverer: a.Nacos}
	}
	return httpclient.StaticResolver(a.Config.Services)
}
