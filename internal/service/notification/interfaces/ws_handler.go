// internal/service/notification/interfaces/ws_handler.go
package interfaces

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"solitaire/internal/pkg/auth"
	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/notification/domain"
	"solitaire/internal/service/notification/infrastructure"
)

// WSHandler 把已登录用户的连接升级为 WebSocket 并交给 Hub
type WSHandler struct {
	hub      *infrastructure.Hub
	auth     auth.Authenticator
	presence domain.Presence // 可为 nil
	nodeID   string
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *infrastructure.Hub, authenticator auth.Authenticator, presence domain.Presence, nodeID string, allowedOrigins []string) *WSHandler {
	h := &WSHandler{hub: hub, auth: authenticator, presence: presence, nodeID: nodeID}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker 未配置白名单时放行所有来源
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

func (h *WSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", auth.Require(h.auth, h.serveWs))
}

func (h *WSHandler) serveWs(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// 连接生命周期长于请求，presence 使用独立的 context
	ctx := context.WithoutCancel(r.Context())
	if h.presence != nil {
		if err := h.presence.Mark(ctx, id.UID, h.nodeID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", id.UID).Msg("failed to record presence")
		}
	}

	h.hub.Serve(conn, id.UID)

	if h.presence != nil {
		if err := h.presence.Clear(ctx, id.UID, h.nodeID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", id.UID).Msg("failed to clear presence")
		}
	}
}
