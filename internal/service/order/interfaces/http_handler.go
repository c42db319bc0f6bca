package interfaces

import (
	"net/http"

	"github.com/pkg/errors"

	ring "solitaire/domain"
	"solitaire/internal/pkg/auth"
	"solitaire/internal/pkg/httpclient"
	"solitaire/internal/pkg/httpx"
	"solitaire/internal/service/order/application"
	"solitaire/internal/service/order/domain"
)

// OrderHandler 封装了购物车与订单的 HTTP 处理器
type OrderHandler struct {
	carts  *application.CartService
	orders *application.OrderApplicationService
	auth   auth.Authenticator
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(carts *application.CartService, orders *application.OrderApplicationService, authenticator auth.Authenticator) *OrderHandler {
	return &OrderHandler{carts: carts, orders: orders, auth: authenticator}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /cart", auth.Require(h.auth, h.handleGetCart))
	mux.HandleFunc("POST /cart/items", auth.Require(h.auth, h.handleAddItem))
	mux.HandleFunc("PATCH /cart/items/{id}", auth.Require(h.auth, h.handleUpdateQuantity))
	mux.HandleFunc("DELETE /cart/items/{id}", auth.Require(h.auth, h.handleRemoveItem))
	mux.HandleFunc("DELETE /cart", auth.Require(h.auth, h.handleClearCart))

	mux.HandleFunc("POST /orders", auth.Require(h.auth, h.handlePlaceOrder))
	mux.HandleFunc("GET /orders", auth.Require(h.auth, h.handleListOrders))
	mux.HandleFunc("GET /orders/{id}", auth.Require(h.auth, h.handleGetOrder))
	mux.HandleFunc("POST /orders/{id}/cancel", auth.Require(h.auth, h.handleCancelOrder))

	mux.HandleFunc("GET /admin/orders", auth.RequireAdmin(h.auth, h.handleAdminListOrders))
	mux.HandleFunc("PATCH /admin/orders/{id}/status", auth.RequireAdmin(h.auth, h.handleAdminUpdateStatus))
	mux.HandleFunc("DELETE /admin/orders/{id}", auth.RequireAdmin(h.auth, h.handleAdminDeleteOrder))
}

func uid(r *http.Request) string {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return ""
	}
	return id.UID
}

func (h *OrderHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	view, err := h.carts.GetCart(ctx, uid(r))
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	view, err := h.carts.AddItem(ctx, uid(r), &req)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.UpdateQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	view, err := h.carts.UpdateQuantity(ctx, uid(r), r.PathValue("id"), req.Quantity)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	view, err := h.carts.RemoveItem(ctx, uid(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	if err := h.carts.Clear(ctx, uid(r)); err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	view, err := h.orders.PlaceOrder(ctx, uid(r), &req)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	views, err := h.orders.ListOrders(ctx, uid(r))
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	view, err := h.orders.GetOrder(ctx, uid(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	view, err := h.orders.CancelOrder(ctx, uid(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleAdminListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	views, err := h.orders.ListAllOrders(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) handleAdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	view, err := h.orders.UpdateStatus(ctx, r.PathValue("id"), req.Status)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleAdminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	if err := h.orders.DeleteOrder(ctx, r.PathValue("id")); err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor 根据错误类型返回不同的 HTTP 状态码
func statusFor(err error) int {
	var downstream *httpclient.StatusError
	switch {
	case errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidShipping),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, ring.ErrInvalidAttribute),
		errors.Is(err, httpx.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.As(err, &downstream):
		// 目录服务拒绝了某一行 (商品不存在或没有价格)
		if downstream.Status < http.StatusInternalServerError {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
