// cmd/notification-service/main.go
package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"solitaire/internal/pkg/bootstrap"
	"solitaire/internal/pkg/mq"
	"solitaire/internal/service/notification/application"
	"solitaire/internal/service/notification/infrastructure"
	"solitaire/internal/service/notification/interfaces"
)

const (
	serviceName = "notification-service"
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8085,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			cfg := appCtx.Config
			kc := cfg.Infra.Kafka
			tracer := otel.Tracer(serviceName)

			nodeID := os.Getenv("HOSTNAME")
			if nodeID == "" {
				nodeID = serviceName + "-" + uuid.NewString()[:8]
			}

			rdb, err := appCtx.OpenRedis()
			if err != nil {
				return err
			}
			authenticator, err := appCtx.Authenticator()
			if err != nil {
				return err
			}
			presence := infrastructure.NewRedisPresence(rdb, cfg.Push.PresenceTTL)

			hub := infrastructure.NewHub()
			go hub.Run(appCtx.Ctx)

			svc := application.NewNotificationService(hub, presence, tracer)

			retryWriter := mq.NewKafkaWriter(kc.Brokers, kc.RetryTopic)
			dltWriter := mq.NewKafkaWriter(kc.Brokers, kc.DLTTopic)
			failure := mq.NewFailureHandler(retryWriter, dltWriter, kc.MaxAttempts)

			events := interfaces.NewEventConsumer(kc.OrderTopic, mq.NewKafkaReader(kc.Brokers, kc.OrderTopic, kc.GroupID), svc, failure)
			retries := interfaces.NewEventConsumer(kc.RetryTopic, mq.NewKafkaReader(kc.Brokers, kc.RetryTopic, kc.GroupID), svc, failure)
			retries.SetDelay(cfg.Push.RetryDelay)
			dlt := interfaces.NewDLTConsumer(mq.NewKafkaReader(kc.Brokers, kc.DLTTopic, kc.GroupID+"-dlt"))

			events.Start(appCtx.Ctx)
			retries.Start(appCtx.Ctx)
			dlt.Start(appCtx.Ctx)

			// 钩子逆序执行：先停消费者，再关闭 writer
			appCtx.OnShutdown(func(context.Context) error {
				if err := retryWriter.Close(); err != nil {
					return err
				}
				return dltWriter.Close()
			})
			appCtx.OnShutdown(func(context.Context) error {
				for _, stop := range []func() error{events.Stop, retries.Stop, dlt.Stop} {
					if err := stop(); err != nil {
						log.Printf("failed to stop consumer: %v", err)
					}
				}
				return nil
			})

			interfaces.NewWSHandler(hub, authenticator, presence, nodeID, cfg.Push.AllowedOrigins).RegisterRoutes(appCtx.Mux)
			return nil
		},
	})
}
