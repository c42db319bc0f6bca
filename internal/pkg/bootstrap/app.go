// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/metrics"
	"solitaire/internal/pkg/nacos"
	"solitaire/internal/pkg/tracing"
)

// AppCtx 是注册路由时可用的运行时依赖
type AppCtx struct {
	Ctx    context.Context // 服务关停时被取消，供后台 goroutine 使用
	Mux    *http.ServeMux
	Nacos  *nacos.Client // 未启用 Nacos 时为 nil
	Config *Config

	hooks *shutdownHooks
}

// OnShutdown 注册一个关停钩子，按注册的逆序执行
func (a AppCtx) OnShutdown(fn func(ctx context.Context) error) {
	a.hooks.add(fn)
}

type shutdownHooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context) error
}

func (h *shutdownHooks) add(fn func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *shutdownHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](ctx); err != nil {
			log.Printf("shutdown hook failed: %v", err)
		}
	}
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int                       // 为 0 时使用配置中的 server.port
	RegisterHandlers func(appCtx AppCtx) error // 一个函数，允许每个服务注册自己独特的 HTTP 路由
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: failed to load config: %v", err)
	}
	if info.Port != 0 && os.Getenv("SERVER_PORT") == "" {
		cfg.Server.Port = info.Port
	}
	SetCurrentConfig(cfg)
	logger.Init(info.ServiceName, cfg.App.LogLevel, cfg.App.LogFormat)

	// 2. 初始化核心组件
	// a. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint, cfg.Infra.Jaeger.SampleRatio)
	if err != nil {
		log.Fatalf("failed to initialize tracer provider: %v", err)
	}

	// b. Nacos (可选): 远程配置 + 服务注册
	var (
		nacosClient *nacos.Client
		ip          string
	)
	if cfg.Infra.Nacos.Enabled {
		nacosClient, err = nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			log.Fatalf("failed to initialize nacos client: %v", err)
		}
		watchRemoteConfig(nacosClient, info.ServiceName+".yaml")

		ip, err = getOutboundIP()
		if err != nil {
			log.Fatalf("failed to get outbound IP address: %v", err)
		}
		if err := nacosClient.RegisterServiceInstance(info.ServiceName, ip, cfg.Server.Port); err != nil {
			log.Fatalf("failed to register service with nacos: %v", err)
		}
	}

	// 3. 创建并启动 HTTP Server
	appCtx, cancelApp := context.WithCancel(context.Background())
	hooks := &shutdownHooks{}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if info.RegisterHandlers != nil {
		err := info.RegisterHandlers(AppCtx{Ctx: appCtx, Mux: mux, Nacos: nacosClient, Config: GetCurrentConfig(), hooks: hooks})
		if err != nil {
			log.Fatalf("failed to register handlers for %s: %v", info.ServiceName, err)
		}
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.Server.Port), Handler: metrics.Middleware(mux)}
	go func() {
		log.Printf("%s listening on :%d", info.ServiceName, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v\n", server.Addr, err)
		}
	}()

	// 4. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 阻塞主 goroutine，直到接收到退出信号
	<-quit
	log.Printf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// a. 从 Nacos 注销服务，停止接收新流量
	if nacosClient != nil {
		if err := nacosClient.DeregisterServiceInstance(info.ServiceName, ip, cfg.Server.Port); err != nil {
			log.Printf("Error deregistering from Nacos: %v", err)
		} else {
			log.Printf("Service %s deregistered from Nacos.", info.ServiceName)
		}
		nacosClient.Close()
	}

	// b. 关闭 HTTP 服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down http server: %v", err)
	} else {
		log.Println("HTTP server shut down.")
	}

	// c. 停止后台任务并执行服务自身的清理 (后进先出)
	cancelApp()
	hooks.run(ctx)

	// d. 关闭 Tracer Provider，确保所有缓冲的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down tracer provider: %v", err)
	} else {
		log.Println("Tracer provider shut down.")
	}

	log.Printf("Service %s gracefully shut down.", info.ServiceName)
}

// watchRemoteConfig 拉取并监听 Nacos 上的服务配置，变更时原子替换当前配置
func watchRemoteConfig(client *nacos.Client, dataID string) {
	apply := func(data string) {
		if data == "" {
			return
		}
		merged, err := MergeRemote(GetCurrentConfig(), data)
		if err != nil {
			log.Printf("ignore invalid remote config %s: %v", dataID, err)
			return
		}
		SetCurrentConfig(merged)
		log.Printf("remote config %s applied", dataID)
	}

	if data, err := client.GetConfig(dataID); err == nil {
		apply(data)
	}
	if err := client.ListenConfig(dataID, apply); err != nil {
		log.Printf("failed to listen remote config %s: %v", dataID, err)
	}
}

// getOutboundIP 获取本机对外通信使用的 IP
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
