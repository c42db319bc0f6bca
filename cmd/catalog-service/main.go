// cmd/catalog-service/main.go
package main

import (
	"context"
	"log"
	_ "time/tzdata" // 容器镜像可能没有 zoneinfo

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"solitaire/internal/pkg/bootstrap"
	"solitaire/internal/pkg/firebase"
	"solitaire/internal/service/catalog/application"
	"solitaire/internal/service/catalog/domain"
	"solitaire/internal/service/catalog/infrastructure"
	"solitaire/internal/service/catalog/interfaces"
	"solitaire/internal/zookeeper"
)

const (
	serviceName = "catalog-service"
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			cfg := appCtx.Config
			tracer := otel.Tracer(serviceName)

			db, err := appCtx.OpenMySQL()
			if err != nil {
				return err
			}
			authenticator, err := appCtx.Authenticator()
			if err != nil {
				return err
			}
			loc, err := cfg.App.Location()
			if err != nil {
				return err
			}

			// 对象存储：Firebase 默认存储桶
			app, err := firebase.NewApp(appCtx.Ctx, cfg.Auth.ProjectID, cfg.Storage.Bucket, cfg.Auth.CredentialsFile)
			if err != nil {
				return err
			}
			storageClient, err := app.Storage(appCtx.Ctx)
			if err != nil {
				return errors.Wrap(err, "init firebase storage client")
			}
			bucket, err := storageClient.Bucket(cfg.Storage.Bucket)
			if err != nil {
				return errors.Wrap(err, "open storage bucket")
			}
			store := infrastructure.NewGCSObjectStore(bucket, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)

			// 上传互斥：配置了 ZooKeeper 时使用分布式锁，否则退化为进程内锁
			var locker domain.Locker
			if zkc := cfg.Infra.Zookeeper; len(zkc.Servers) > 0 {
				conn, err := zookeeper.Connect(zkc.Servers, zkc.SessionTimeout)
				if err != nil {
					return err
				}
				zkLocker := zookeeper.NewLocker(conn, zkc.LockTimeout)
				appCtx.OnShutdown(func(context.Context) error {
					zkLocker.Close()
					return nil
				})
				locker = zkLocker
			} else {
				log.Printf("zookeeper not configured, using in-process upload lock")
				locker = infrastructure.NewLocalLocker()
			}

			filters, err := infrastructure.NewCELFilterCompiler()
			if err != nil {
				return err
			}

			svc := application.NewCatalogService(application.Deps{
				Products:      infrastructure.NewGormProductRepository(db),
				Prices:        infrastructure.NewGormPriceRepository(db),
				Discounts:     infrastructure.NewPromotionHTTPAdapter(appCtx.ServiceClient(tracer)),
				Store:         store,
				Locker:        locker,
				Filters:       filters,
				Tracer:        tracer,
				MaxUploadSize: cfg.Storage.MaxUploadSize,
			}).WithLocation(loc)
			interfaces.NewCatalogHandler(svc, authenticator, cfg.Storage.MaxUploadSize).RegisterRoutes(appCtx.Mux)
			return nil
		},
	})
}
