// cmd/order-service/main.go
package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"solitaire/internal/pkg/bootstrap"
	"solitaire/internal/pkg/mq"
	"solitaire/internal/service/order/application"
	"solitaire/internal/service/order/infrastructure"
	"solitaire/internal/service/order/interfaces"
)

const (
	serviceName            = "order-service"
	orderProcessingTimeout = 30 * time.Second // 单次结账流程的超时上限
)

// main 是订单服务的组装根：创建并组装所有依赖项，然后启动应用
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			cfg := appCtx.Config
			tracer := otel.Tracer(serviceName)

			db, err := appCtx.OpenMySQL()
			if err != nil {
				return err
			}
			rdb, err := appCtx.OpenRedis()
			if err != nil {
				return err
			}
			authenticator, err := appCtx.Authenticator()
			if err != nil {
				return err
			}

			writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderTopic)
			appCtx.OnShutdown(func(context.Context) error { return writer.Close() })

			client := appCtx.ServiceClient(tracer)
			pricer := infrastructure.NewCatalogPricer(client)
			carts := application.NewCartService(
				infrastructure.NewGormCartRepository(db),
				infrastructure.NewRedisCartCache(rdb, cfg.Cart.CacheTTL),
				pricer,
				tracer,
			)
			orders := application.NewOrderApplicationService(
				infrastructure.NewGormOrderRepository(db),
				carts,
				pricer,
				infrastructure.NewOrderEventPublisher(writer),
				tracer,
				orderProcessingTimeout,
			).WithProfileSaver(infrastructure.NewAccountProfileSaver(client))

			interfaces.NewOrderHandler(carts, orders, authenticator).RegisterRoutes(appCtx.Mux)
			return nil
		},
	})
}
