package interfaces

import (
	"net/http"

	"github.com/pkg/errors"

	ring "solitaire/domain"
	"solitaire/internal/pkg/auth"
	"solitaire/internal/pkg/httpx"
	"solitaire/internal/service/promotion/application"
	"solitaire/internal/service/promotion/domain"
)

// PromotionHandler 封装了 promotion 服务的 HTTP 处理器
type PromotionHandler struct {
	service *application.PromotionService
	auth    auth.Authenticator
}

// NewPromotionHandler 创建一个新的 HTTP 处理器实例
func NewPromotionHandler(service *application.PromotionService, authenticator auth.Authenticator) *PromotionHandler {
	return &PromotionHandler{service: service, auth: authenticator}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /discount_rules/active", h.handleListActive)
	mux.HandleFunc("POST /discounts/resolve", h.handleResolve)

	mux.HandleFunc("GET /admin/discount_rules", auth.RequireAdmin(h.auth, h.handleListRules))
	mux.HandleFunc("POST /admin/discount_rules", auth.RequireAdmin(h.auth, h.handleCreateRule))
	mux.HandleFunc("GET /admin/discount_rules/{id}", auth.RequireAdmin(h.auth, h.handleGetRule))
	mux.HandleFunc("PUT /admin/discount_rules/{id}", auth.RequireAdmin(h.auth, h.handleUpdateRule))
	mux.HandleFunc("DELETE /admin/discount_rules/{id}", auth.RequireAdmin(h.auth, h.handleDeleteRule))
}

func (h *PromotionHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	rules, err := h.service.ListActiveRules(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rules)
}

func (h *PromotionHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.ResolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	resp, err := h.service.Resolve(ctx, &req)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) handleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	rules, err := h.service.ListRules(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rules)
}

func (h *PromotionHandler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	rule, err := h.service.GetRule(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rule)
}

func (h *PromotionHandler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var in application.RuleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	rule, err := h.service.CreateRule(ctx, &in)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rule)
}

func (h *PromotionHandler) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	var in application.RuleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	rule, err := h.service.UpdateRule(ctx, id, &in)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rule)
}

func (h *PromotionHandler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.DeleteRule(ctx, id); err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor 根据错误类型返回不同的 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRule),
		errors.Is(err, ring.ErrInvalidAttribute),
		errors.Is(err, httpx.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
