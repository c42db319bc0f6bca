package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	ring "solitaire/domain"
	"solitaire/internal/pkg/auth"
	"solitaire/internal/service/catalog/application"
	"solitaire/internal/service/catalog/domain"
)

type sliceProducts struct{ items []domain.Product }

func (s *sliceProducts) List(context.Context) ([]domain.Product, error) { return s.items, nil }
func (s *sliceProducts) Get(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}
func (s *sliceProducts) FindByItem(context.Context, ring.CatalogItem) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}
func (s *sliceProducts) ExistsCombination(_ context.Context, c ring.Combination) (bool, error) {
	for _, p := range s.items {
		if p.Combination() == c {
			return true, nil
		}
	}
	return false, nil
}
func (s *sliceProducts) Create(_ context.Context, p *domain.Product) error {
	p.ID = int64(len(s.items) + 1)
	s.items = append(s.items, *p)
	return nil
}
func (s *sliceProducts) Delete(context.Context, int64) error { return nil }

type fixedPrices struct{}

func (fixedPrices) List(context.Context) ([]domain.PriceTable, error) {
	return []domain.PriceTable{domain.DefaultPriceTable(ring.DesignHaloSetting)}, nil
}
func (fixedPrices) Get(context.Context, ring.Design) (*domain.PriceTable, error) {
	return nil, domain.ErrPriceNotFound
}
func (fixedPrices) Upsert(context.Context, *domain.PriceTable) error { return nil }

type noDiscounts struct{}

func (noDiscounts) ListActiveRules(context.Context) ([]domain.DiscountRule, error) { return nil, nil }

type nullStore struct{ puts int }

func (*nullStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (s *nullStore) Put(_ context.Context, _, _ string, r io.Reader) error {
	s.puts++
	_, err := io.Copy(io.Discard, r)
	return err
}
func (*nullStore) Delete(context.Context, string) error { return nil }
func (*nullStore) PublicURL(p string) string            { return "https://cdn.test/" + p }

type directLocker struct{}

func (directLocker) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

func newTestMux(products *sliceProducts, store *nullStore) *http.ServeMux {
	svc := application.NewCatalogService(application.Deps{
		Products:      products,
		Prices:        fixedPrices{},
		Discounts:     noDiscounts{},
		Store:         store,
		Locker:        directLocker{},
		Tracer:        noop.NewTracerProvider().Tracer("test"),
		MaxUploadSize: 1024,
	}).WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })
	mux := http.NewServeMux()
	NewCatalogHandler(svc, auth.HeaderAuthenticator{}, 1024).RegisterRoutes(mux)
	return mux
}

func asAdmin(req *http.Request) *http.Request {
	req.Header.Set(auth.HeaderUserID, "root")
	req.Header.Set(auth.HeaderUserRole, "admin")
	return req
}

func uploadRequest(t *testing.T, design, metal, shape, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("design", design))
	require.NoError(t, mw.WriteField("metal", metal))
	require.NoError(t, mw.WriteField("shape", shape))
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="ring.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return asAdmin(req)
}

func TestHandleListProducts(t *testing.T) {
	products := &sliceProducts{items: []domain.Product{
		{ID: 1, Design: ring.DesignHaloSetting, Metal: ring.MetalPlatinum, Shape: ring.ShapeRound, Carat: decimal.NewFromInt(2)},
		{ID: 2, Design: ring.DesignThreeStone, Metal: ring.MetalPlatinum, Shape: ring.ShapeRound, Carat: decimal.NewFromInt(1)},
	}}
	mux := newTestMux(products, &nullStore{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?design=halo&carat=2.0", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var views []application.ProductView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.True(t, views[0].FinalPrice.Equal(decimal.NewFromInt(10000)))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?shape=heart", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleQuoteUnpricedDesign(t *testing.T) {
	products := &sliceProducts{items: []domain.Product{
		{ID: 2, Design: ring.DesignThreeStone, Metal: ring.MetalPlatinum, Shape: ring.ShapeRound, Carat: decimal.NewFromInt(1)},
	}}
	mux := newTestMux(products, &nullStore{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quote", bytes.NewBufferString(`{"lines":[{"product_id":2}]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCustomizerQuote(t *testing.T) {
	mux := newTestMux(&sliceProducts{}, &nullStore{})

	rec := httptest.NewRecorder()
	body := `{"design":"vintage","metal":"platinum","shape":"emerald","carat":"2.5"}`
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/customizer/quote", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var q application.CustomizerQuote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, ring.DesignVintageAntique, q.Selection.Design)
	assert.True(t, q.Complete)
	// 1000 + 500 + 400 + 300 + 12500
	assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(14700)), q.FinalPrice.String())
}

func TestHandlePreviewPlaceholder(t *testing.T) {
	mux := newTestMux(&sliceProducts{}, &nullStore{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/customizer/preview", bytes.NewBufferString(`{}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var p application.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.Placeholder)
	assert.Equal(t, domain.PlaceholderImage, p.ImageURL)
}

func TestHandleUpload(t *testing.T) {
	products := &sliceProducts{}
	store := &nullStore{}
	mux := newTestMux(products, store)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, "halo-setting", "rose-gold", "oval", "image/png", []byte("png")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, store.puts)
	require.Len(t, products.items, 1)
	assert.Equal(t, "rings/halo-setting/rose-gold/oval/1.0ct.png", products.items[0].ImagePath)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, "halo-setting", "rose-gold", "oval", "image/png", []byte("png")))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, "halo-setting", "rose-gold", "round", "text/plain", []byte("txt")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, "halo-setting", "rose-gold", "round", "image/png", bytes.Repeat([]byte("x"), 2048)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	mux := newTestMux(&sliceProducts{}, &nullStore{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products/missing", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/products/missing", nil)
	req.Header.Set(auth.HeaderUserID, "shopper")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/admin/products/missing", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var missing []ring.Combination
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &missing))
	assert.Len(t, missing, len(ring.AllDesigns())*len(ring.AllMetals())*len(ring.AllShapes()))

	body := fmt.Sprintf(`{"price_1_0ct":%d,"price_1_5ct":1,"price_2_0ct":1,"price_2_5ct":1}`, 4200)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodPut, "/admin/pricing/three-stone", bytes.NewBufferString(body))))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
