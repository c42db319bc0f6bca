// internal/pkg/httpclient/client.go

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver 把服务名解析为基地址，例如 "http://10.0.0.3:8082"
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// Discoverer 是服务发现的最小接口 (由 nacos.Client 实现)
type Discoverer interface {
	DiscoverServiceInstance(serviceName string) (string, int, error)
}

// StaticResolver 使用配置中的静态地址
type StaticResolver map[string]string

func (s StaticResolver) Resolve(serviceName string) (string, error) {
	base, ok := s[serviceName]
	if !ok || base == "" {
		return "", fmt.Errorf("no address configured for service %s", serviceName)
	}
	return base, nil
}

// DiscoveryResolver 每次调用都通过注册中心选择一个健康实例
type DiscoveryResolver struct {
	Discoverer Discoverer
}

func (d DiscoveryResolver) Resolve(serviceName string) (string, error) {
	ip, port, err := d.Discoverer.DiscoverServiceInstance(serviceName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d", ip, port), nil
}

// StatusError 表示下游返回了非 2xx 状态码
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service %s returned status %d: %s", e.Service, e.Status, e.Body)
}

// Client 是一个可追踪的、可注入的HTTP客户端
type Client struct {
	Tracer     trace.Tracer
	Resolver   Resolver
	HTTPClient *http.Client
}

// NewClient 创建一个新的客户端实例
func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	// 不设置 Timeout 字段，让其完全受控于每次请求传入的 context
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		Resolver:   resolver,
		HTTPClient: httpClient,
	}
}

// PostJSON 以 JSON 调用下游服务，并把响应解码到 out (out 可为 nil)
func (c *Client) PostJSON(ctx context.Context, serviceName, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, serviceName, path, in, out)
}

// GetJSON 以 GET 调用下游服务
func (c *Client) GetJSON(ctx context.Context, serviceName, path string, out any) error {
	return c.do(ctx, http.MethodGet, serviceName, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, serviceName, path string, in, out any) error {
	ctx, span := c.Tracer.Start(ctx, "call-"+serviceName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	base, err := c.Resolver.Resolve(serviceName)
	if err != nil {
		return fail(errors.Wrapf(err, "resolve %s", serviceName))
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fail(errors.Wrap(err, "encode request"))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return fail(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	span.SetAttributes(
		attribute.String("http.url", req.URL.String()),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fail(&StatusError{Service: serviceName, Status: resp.StatusCode, Body: string(bytes.TrimSpace(msg))})
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(errors.Wrap(err, "decode response"))
	}
	return nil
}
