// internal/gateway/gateway.go
package gateway

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"solitaire/internal/pkg/httpclient"
	"solitaire/internal/pkg/httpx"
	"solitaire/internal/pkg/logger"
)

// Routes 把对外路径前缀映射到后端服务，单页应用只需要一个源站
var Routes = map[string]string{
	"/products":             "catalog-service",
	"/quote":                "catalog-service",
	"/customizer/":          "catalog-service",
	"/admin/products":       "catalog-service",
	"/admin/pricing":        "catalog-service",
	"/discount_rules/":      "promotion-service",
	"/discounts/":           "promotion-service",
	"/admin/discount_rules": "promotion-service",
	"/cart":                 "order-service",
	"/orders":               "order-service",
	"/admin/orders":         "order-service",
	"/session":              "account-service",
	"/profile":              "account-service",
	"/wishlist":             "account-service",
	"/messages":             "account-service",
	"/admin/messages":       "account-service",
	"/ws":                   "notification-service",
}

// Gateway 是带追踪的反向代理
type Gateway struct {
	resolver httpclient.Resolver
	tracer   trace.Tracer
	client   *http.Client
}

func New(resolver httpclient.Resolver, tracer trace.Tracer) *Gateway {
	return &Gateway{resolver: resolver, tracer: tracer, client: &http.Client{Timeout: 2 * time.Second}}
}

// RegisterRoutes 为每个前缀注册精确路径与子树两个 pattern
func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	for prefix, service := range Routes {
		h := g.proxy(service)
		mux.Handle(prefix, h)
		if prefix[len(prefix)-1] != '/' {
			mux.Handle(prefix+"/", h)
		}
	}
	mux.HandleFunc("GET /readyz", g.handleReady)
}

func (g *Gateway) proxy(service string) http.Handler {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			// 目标地址在 ServeHTTP 中解析后放进 context
			target := pr.In.Context().Value(targetKey{}).(*url.URL)
			pr.SetURL(target)
			pr.SetXForwarded()
			otel.GetTextMapPropagator().Inject(pr.Out.Context(), propagation.HeaderCarrier(pr.Out.Header))
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			httpx.WriteError(r.Context(), w, http.StatusBadGateway, err)
		},
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := httpx.Extract(r)
		ctx, span := g.tracer.Start(ctx, "gateway."+service, trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.route", r.URL.Path), attribute.String("downstream.service", service)))
		defer span.End()

		base, err := g.resolver.Resolve(service)
		if err != nil {
			span.RecordError(err)
			logger.Ctx(ctx).Error().Err(err).Str("service", service).Msg("resolve downstream failed")
			httpx.WriteError(ctx, w, http.StatusBadGateway, err)
			return
		}
		target, err := url.Parse(base)
		if err != nil {
			span.RecordError(err)
			httpx.WriteError(ctx, w, http.StatusBadGateway, err)
			return
		}
		rp.ServeHTTP(w, r.WithContext(context.WithValue(ctx, targetKey{}, target)))
	})
}

type targetKey struct{}

// Services 返回所有后端服务名 (有序)
func Services() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range Routes {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// handleReady 并发检查所有后端的 /healthz
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, service := range Services() {
		eg.Go(func() error {
			base, err := g.resolver.Resolve(service)
			if err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(egCtx, http.MethodGet, base+"/healthz", nil)
			if err != nil {
				return err
			}
			resp, err := g.client.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return &httpclient.StatusError{Service: service, Status: resp.StatusCode}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		httpx.WriteError(ctx, w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
