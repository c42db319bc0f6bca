package main

import (
	"go.opentelemetry.io/otel"

	"solitaire/internal/gateway"
	"solitaire/internal/pkg/bootstrap"
)

const serviceName = "api-gateway"

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8080,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			gw := gateway.New(appCtx.Resolver(), otel.Tracer(serviceName))
			gw.RegisterRoutes(appCtx.Mux)
			return nil
		},
	})
}
