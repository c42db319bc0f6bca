// internal/service/notification/infrastructure/ws_hub.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"solitaire/internal/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Hub 维护本节点所有活跃的连接，一个用户可以同时有多个连接 (多个标签页)
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	lock       sync.RWMutex
}

// NewHub 创建 Hub，调用方需要在后台运行 Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 处理连接的注册与注销，ctx 取消时关闭所有连接后返回
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.lock.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
					_ = c.conn.Close()
				}
			}
			h.clients = map[string]map[*Client]struct{}{}
			h.lock.Unlock()
			logger.Ctx(ctx).Info().Msg("websocket hub stopped")
			return
		case c := <-h.register:
			h.lock.Lock()
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.lock.Unlock()
			logger.Ctx(ctx).Debug().Str("user_id", c.userID).Msg("client registered")
		case c := <-h.unregister:
			h.lock.Lock()
			if set, ok := h.clients[c.userID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
				}
				if len(set) == 0 {
					delete(h.clients, c.userID)
				}
			}
			h.lock.Unlock()
			logger.Ctx(ctx).Debug().Str("user_id", c.userID).Msg("client unregistered")
		}
	}
}

// Push 把消息放进用户每个连接的发送队列，返回入队成功的连接数。
// 队列已满的连接会丢弃这条消息。
func (h *Hub) Push(userID string, payload []byte) int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	n := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
			n++
		default:
			logger.Ctx(context.Background()).Warn().Str("user_id", userID).Msg("send buffer full, dropping notification")
		}
	}
	return n
}

// Connections 返回用户在本节点上的连接数
func (h *Hub) Connections(userID string) int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients[userID])
}

// Serve 注册连接并阻塞到连接关闭
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// Client 是一个 WebSocket 连接的代表
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// writePump 负责把 send 队列中的消息写入连接，并定期发送 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 只处理心跳，客户端发来的消息直接丢弃
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
