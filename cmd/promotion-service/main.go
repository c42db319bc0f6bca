// cmd/promotion-service/main.go
package main

import (
	_ "time/tzdata" // 容器镜像可能没有 zoneinfo

	"go.opentelemetry.io/otel"

	"solitaire/internal/pkg/bootstrap"
	"solitaire/internal/service/promotion/application"
	"solitaire/internal/service/promotion/infrastructure"
	"solitaire/internal/service/promotion/interfaces"
)

const (
	serviceName = "promotion-service"
)

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			db, err := appCtx.OpenMySQL()
			if err != nil {
				return err
			}
			authenticator, err := appCtx.Authenticator()
			if err != nil {
				return err
			}

			loc, err := appCtx.Config.App.Location()
			if err != nil {
				return err
			}

			repo := infrastructure.NewGormRuleRepository(db)
			svc := application.NewPromotionService(repo, otel.Tracer(serviceName)).WithLocation(loc)
			interfaces.NewPromotionHandler(svc, authenticator).RegisterRoutes(appCtx.Mux)
			return nil
		},
	})
}
