package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"solitaire/internal/pkg/httpclient"
)

func backend(name string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend", name)
		_, _ = io.WriteString(w, r.Method+" "+r.URL.RequestURI())
	}))
}

func backends(t *testing.T) httpclient.StaticResolver {
	t.Helper()
	resolver := httpclient.StaticResolver{}
	for _, s := range Services() {
		srv := backend(s)
		t.Cleanup(srv.Close)
		resolver[s] = srv.URL
	}
	return resolver
}

func newGateway(t *testing.T, resolver httpclient.StaticResolver) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	New(resolver, noop.NewTracerProvider().Tracer("test")).RegisterRoutes(mux)
	gw := httptest.NewServer(mux)
	t.Cleanup(gw.Close)
	return gw
}

func TestGateway_Routes(t *testing.T) {
	gw := newGateway(t, backends(t))

	cases := []struct {
		method, path, backend string
	}{
		{http.MethodGet, "/products?design=solitaire", "catalog-service"},
		{http.MethodGet, "/customizer/options", "catalog-service"},
		{http.MethodPut, "/admin/pricing/3", "catalog-service"},
		{http.MethodGet, "/discounts/ring-1", "promotion-service"},
		{http.MethodPost, "/cart/items", "order-service"},
		{http.MethodGet, "/orders", "order-service"},
		{http.MethodPatch, "/admin/messages/7/status", "account-service"},
		{http.MethodGet, "/wishlist", "account-service"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, gw.URL+tc.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.backend, resp.Header.Get("X-Backend"))
			assert.Equal(t, tc.method+" "+tc.path, string(body))
		})
	}
}

func TestGateway_UnknownRoute(t *testing.T) {
	gw := newGateway(t, backends(t))
	for _, path := range []string{"/nope", "/internal/profiles/u1"} {
		resp, err := http.Post(gw.URL+path, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestGateway_DownstreamUnavailable(t *testing.T) {
	gw := newGateway(t, httpclient.StaticResolver{})

	resp, err := http.Get(gw.URL + "/products")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGateway_Ready(t *testing.T) {
	resolver := backends(t)
	gw := newGateway(t, resolver)

	resp, err := http.Get(gw.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	degraded := httpclient.StaticResolver{}
	for k, v := range resolver {
		degraded[k] = v
	}
	degraded["order-service"] = down.URL

	resp, err = http.Get(newGateway(t, degraded).URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
