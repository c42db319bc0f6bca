package interfaces

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	ring "solitaire/domain"
	"solitaire/internal/pkg/auth"
	"solitaire/internal/pkg/httpx"
	"solitaire/internal/service/catalog/application"
	"solitaire/internal/service/catalog/domain"
)

// multipartOverhead 是表单字段与边界的额外字节
const multipartOverhead = 1 << 20

// CatalogHandler 封装了目录服务的 HTTP 处理器
type CatalogHandler struct {
	service   *application.CatalogService
	auth      auth.Authenticator
	maxUpload int64
}

// NewCatalogHandler 创建一个新的 HTTP 处理器实例
func NewCatalogHandler(service *application.CatalogService, authenticator auth.Authenticator, maxUpload int64) *CatalogHandler {
	return &CatalogHandler{service: service, auth: authenticator, maxUpload: maxUpload}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("GET /products/{id}", h.handleGetProduct)
	mux.HandleFunc("POST /quote", h.handleQuote)
	mux.HandleFunc("POST /customizer/quote", h.handleCustomizerQuote)
	mux.HandleFunc("POST /customizer/preview", h.handlePreview)

	mux.HandleFunc("GET /admin/products", auth.RequireAdmin(h.auth, h.handleAdminListProducts))
	mux.HandleFunc("POST /admin/products", auth.RequireAdmin(h.auth, h.handleUpload))
	mux.HandleFunc("DELETE /admin/products/{id}", auth.RequireAdmin(h.auth, h.handleDeleteProduct))
	mux.HandleFunc("GET /admin/products/missing", auth.RequireAdmin(h.auth, h.handleMissing))
	mux.HandleFunc("GET /admin/pricing", auth.RequireAdmin(h.auth, h.handleListPricing))
	mux.HandleFunc("PUT /admin/pricing/{design}", auth.RequireAdmin(h.auth, h.handleUpsertPricing))
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	q, err := parseListQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	views, err := h.service.ListProducts(ctx, q)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

// parseListQuery 解析 ?design=&metal=&shape=&carat=&discounted_only=
func parseListQuery(r *http.Request) (application.ListQuery, error) {
	var q application.ListQuery
	v := r.URL.Query()
	var err error
	if s := v.Get("design"); s != "" {
		if q.Filter.Design, err = ring.ParseDesign(s); err != nil {
			return q, err
		}
	}
	if s := v.Get("metal"); s != "" {
		if q.Filter.Metal, err = ring.ParseMetal(s); err != nil {
			return q, err
		}
	}
	if s := v.Get("shape"); s != "" {
		if q.Filter.Shape, err = ring.ParseShape(s); err != nil {
			return q, err
		}
	}
	if s := v.Get("carat"); s != "" {
		c, err := ring.ParseCarat(s)
		if err != nil {
			return q, err
		}
		q.Filter.Carat = &c
	}
	if s := v.Get("discounted_only"); s != "" {
		if q.DiscountedOnly, err = strconv.ParseBool(s); err != nil {
			return q, errors.Wrapf(httpx.ErrBadRequest, "discounted_only %q", s)
		}
	}
	return q, nil
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	view, err := h.service.GetProduct(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *CatalogHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	resp, err := h.service.Quote(ctx, &req)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// decodeSelection 解析定制器选择，兼容旧的款式 ID
func decodeSelection(r *http.Request) (domain.Selection, error) {
	var sel domain.Selection
	if err := httpx.DecodeJSON(r, &sel); err != nil {
		return sel, err
	}
	if sel.Design != "" {
		if d, err := ring.ParseDesign(string(sel.Design)); err == nil {
			sel.Design = d
		}
	}
	return sel, nil
}

func (h *CatalogHandler) handleCustomizerQuote(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	sel, err := decodeSelection(r)
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	quote, err := h.service.QuoteCustomizer(ctx, sel)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quote)
}

func (h *CatalogHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	sel, err := decodeSelection(r)
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	preview, err := h.service.Preview(ctx, sel)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, preview)
}

func (h *CatalogHandler) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	views, err := h.service.AdminListProducts(ctx, r.URL.Query().Get("where"))
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

// handleUpload 接收 multipart 表单：design, metal, shape 和文件字段 image
func (h *CatalogHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, errors.Wrap(domain.ErrInvalidUpload, err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, errors.Wrap(domain.ErrInvalidUpload, "image file is required"))
		return
	}
	defer file.Close()

	view, err := h.service.UploadProduct(ctx, application.UploadInput{
		Design:      r.FormValue("design"),
		Metal:       r.FormValue("metal"),
		Shape:       r.FormValue("shape"),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view)
}

func (h *CatalogHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.DeleteProduct(ctx, id); err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) handleMissing(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	missing, err := h.service.MissingCombinations(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, missing)
}

func (h *CatalogHandler) handleListPricing(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	tables, err := h.service.ListPricing(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tables)
}

func (h *CatalogHandler) handleUpsertPricing(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var in application.PriceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	table, err := h.service.UpsertPricing(ctx, r.PathValue("design"), in)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, table)
}

// statusFor 根据错误类型返回不同的 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateProduct):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPriceNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidUpload),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, ring.ErrInvalidAttribute),
		errors.Is(err, httpx.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
