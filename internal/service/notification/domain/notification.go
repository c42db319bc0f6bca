// internal/service/notification/domain/notification.go
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownEvent = errors.New("unknown order event type")
	ErrInvalidEvent = errors.New("invalid order event")
)

// 订单服务发布的事件类型
const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// OrderEvent 是 order-events 主题上的消息体，只保留推送需要的字段
type OrderEvent struct {
	EventID        string          `json:"event_id"`
	Type           string          `json:"type"`
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Notification 是推送给客户端的消息
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

var statusLines = map[string]string{
	"pending":    "is waiting to be processed",
	"processing": "is being prepared by our jewellers",
	"shipped":    "has shipped and is on its way",
	"delivered":  "has been delivered. Enjoy your ring!",
	"cancelled":  "has been cancelled",
}

// Render 把订单事件渲染成面向客户的通知
func Render(e *OrderEvent) (*Notification, error) {
	if e.UserID == "" || e.OrderID == "" {
		return nil, errors.Wrapf(ErrInvalidEvent, "event %s missing user or order id", e.EventID)
	}
	n := &Notification{
		ID:        e.EventID,
		UserID:    e.UserID,
		OrderID:   e.OrderID,
		Kind:      e.Type,
		Status:    e.Status,
		CreatedAt: e.OccurredAt,
	}
	ref := ShortRef(e.OrderID)
	switch e.Type {
	case EventOrderPlaced:
		n.Title = "Order received"
		n.Body = fmt.Sprintf("Thank you! Order #%s for %s totalling $%s has been placed.",
			ref, pluralItems(e.ItemCount), e.Total.StringFixed(2))
	case EventOrderStatusChanged:
		line, ok := statusLines[strings.ToLower(e.Status)]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEvent, "status %q", e.Status)
		}
		n.Title = "Order " + strings.ToLower(e.Status)
		n.Body = fmt.Sprintf("Order #%s %s.", ref, line)
	default:
		return nil, errors.Wrapf(ErrUnknownEvent, "%q", e.Type)
	}
	return n, nil
}

// ShortRef 取订单号前 8 位，与前端展示一致
func ShortRef(orderID string) string {
	if len(orderID) > 8 {
		return strings.ToUpper(orderID[:8])
	}
	return strings.ToUpper(orderID)
}

func pluralItems(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// Pusher 把消息推送到用户在本节点上的连接，返回送达的连接数
type Pusher interface {
	Push(userID string, payload []byte) int
}

// Presence 记录用户的 WebSocket 连接落在哪个节点
type Presence interface {
	Mark(ctx context.Context, userID, nodeID string) error
	Clear(ctx context.Context, userID, nodeID string) error
	Lookup(ctx context.Context, userID string) (nodeID string, online bool, err error)
}
