// cmd/account-service/main.go
package main

import (
	"go.opentelemetry.io/otel"

	"solitaire/internal/pkg/bootstrap"
	"solitaire/internal/service/account/application"
	"solitaire/internal/service/account/infrastructure"
	"solitaire/internal/service/account/interfaces"
)

const (
	serviceName = "account-service"
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8084,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			tracer := otel.Tracer(serviceName)

			db, err := appCtx.OpenMySQL()
			if err != nil {
				return err
			}
			authenticator, err := appCtx.Authenticator()
			if err != nil {
				return err
			}

			svc := application.NewAccountService(
				infrastructure.NewGormProfileRepository(db),
				infrastructure.NewGormWishlistRepository(db),
				infrastructure.NewGormMessageRepository(db),
				infrastructure.NewCatalogProductChecker(appCtx.ServiceClient(tracer)),
				tracer,
			)
			interfaces.NewAccountHandler(svc, authenticator).RegisterRoutes(appCtx.Mux)
			return nil
		},
	})
}
