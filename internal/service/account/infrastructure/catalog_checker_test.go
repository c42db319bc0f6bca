package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"solitaire/internal/pkg/httpclient"
)

func TestCatalogProductChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/1":
			_, _ = w.Write([]byte(`{"product":{"id":1}}`))
		case "/products/2":
			http.Error(w, "product not found", http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := httpclient.NewClient(noop.NewTracerProvider().Tracer("test"), httpclient.StaticResolver{catalogService: srv.URL})
	checker := NewCatalogProductChecker(client)
	ctx := context.Background()

	ok, err := checker.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.Exists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = checker.Exists(ctx, 3)
	var se *httpclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}
