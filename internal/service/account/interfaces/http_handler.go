// internal/service/account/interfaces/http_handler.go
package interfaces

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"solitaire/internal/pkg/auth"
	"solitaire/internal/pkg/httpx"
	"solitaire/internal/service/account/application"
	"solitaire/internal/service/account/domain"
)

// sessionTTL 是会话 cookie 的有效期，身份服务允许的上限为两周
const sessionTTL = 5 * 24 * time.Hour

// AccountHandler 封装了账户相关的 HTTP 处理器
type AccountHandler struct {
	svc  *application.AccountService
	auth auth.Authenticator
}

// NewAccountHandler 创建一个新的 HTTP 处理器实例
func NewAccountHandler(svc *application.AccountService, authenticator auth.Authenticator) *AccountHandler {
	return &AccountHandler{svc: svc, auth: authenticator}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *AccountHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /session", h.handleCreateSession)
	mux.HandleFunc("DELETE /session", h.handleDeleteSession)

	mux.HandleFunc("GET /profile", auth.Require(h.auth, h.handleGetProfile))
	mux.HandleFunc("PUT /profile", auth.Require(h.auth, h.handleUpdateProfile))
	// 服务间调用，网关不转发 /internal
	mux.HandleFunc("POST /internal/profiles/{user_id}", h.handleSaveShippingProfile)

	mux.HandleFunc("GET /wishlist", auth.Require(h.auth, h.handleListWishlist))
	mux.HandleFunc("POST /wishlist", auth.Require(h.auth, h.handleAddWishlist))
	mux.HandleFunc("DELETE /wishlist/{product_id}", auth.Require(h.auth, h.handleRemoveWishlist))

	mux.HandleFunc("POST /messages", h.handleSubmitMessage)
	mux.HandleFunc("GET /admin/messages", auth.RequireAdmin(h.auth, h.handleListMessages))
	mux.HandleFunc("PATCH /admin/messages/{id}/status", auth.RequireAdmin(h.auth, h.handleMessageStatus))
	mux.HandleFunc("POST /admin/messages/{id}/reply", auth.RequireAdmin(h.auth, h.handleReplyMessage))
	mux.HandleFunc("DELETE /admin/messages/{id}", auth.RequireAdmin(h.auth, h.handleDeleteMessage))
}

func identity(r *http.Request) *auth.Identity {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return &auth.Identity{}
	}
	return id
}

// handleCreateSession 用 ID token 换取 HttpOnly 会话 cookie
func (h *AccountHandler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	issuer, ok := h.auth.(auth.SessionIssuer)
	if !ok {
		httpx.WriteError(ctx, w, http.StatusNotImplemented, errors.New("sessions are not supported by this auth mode"))
		return
	}
	var req application.SessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.IDToken == "" {
		httpx.WriteError(ctx, w, http.StatusBadRequest, errors.Wrap(httpx.ErrBadRequest, "id_token is required"))
		return
	}
	cookie, err := issuer.IssueSession(ctx, req.IDToken, sessionTTL)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    cookie,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) handleDeleteSession(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: auth.SessionCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: true})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id := identity(r)
	p, err := h.svc.GetProfile(ctx, id.UID, id.Email)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.ProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	id := identity(r)
	p, err := h.svc.UpdateProfile(ctx, id.UID, id.Email, &req)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) handleSaveShippingProfile(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	userID := r.PathValue("user_id")
	var req application.ShippingProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	p, err := h.svc.UpdateProfile(ctx, userID, req.Email, &req.ProfileRequest)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	items, err := h.svc.ListWishlist(ctx, identity(r).UID)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *AccountHandler) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.WishlistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	items, err := h.svc.AddToWishlist(ctx, identity(r).UID, req.ProductID)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *AccountHandler) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	productID, err := httpx.PathInt64(r, "product_id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	items, err := h.svc.RemoveFromWishlist(ctx, identity(r).UID, productID)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *AccountHandler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	var req application.ContactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	m, err := h.svc.SubmitMessage(ctx, &req)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (h *AccountHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	msgs, err := h.svc.ListMessages(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

func (h *AccountHandler) handleMessageStatus(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	var req application.MessageStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	m, err := h.svc.SetMessageStatus(ctx, id, req.Status)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *AccountHandler) handleReplyMessage(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	var req application.ReplyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	m, err := h.svc.ReplyMessage(ctx, id, req.Reply)
	if err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *AccountHandler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.Extract(r)
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if err := h.svc.DeleteMessage(ctx, id); err != nil {
		httpx.WriteError(ctx, w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor 根据错误类型返回不同的 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidProfile),
		errors.Is(err, domain.ErrInvalidMessage),
		errors.Is(err, domain.ErrInvalidMsgStatus),
		errors.Is(err, httpx.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
