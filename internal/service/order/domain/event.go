// internal/service/order/domain/event.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType 是 order-events 主题上的事件类型
type EventType string

const (
	EventOrderPlaced        EventType = "OrderPlaced"
	EventOrderStatusChanged EventType = "OrderStatusChanged"
)

// OrderEvent 是发布到 Kafka 的订单事件，以 user_id 作为消息 key
type OrderEvent struct {
	EventID        string          `json:"event_id"`
	Type           EventType       `json:"type"`
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Status         Status          `json:"status"`
	PreviousStatus Status          `json:"previous_status,omitempty"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewOrderPlaced 构造下单成功事件
func NewOrderPlaced(eventID string, o *Order) *OrderEvent {
	return &OrderEvent{
		EventID:    eventID,
		Type:       EventOrderPlaced,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Totals.Total,
		ItemCount:  o.Totals.ItemCount,
		OccurredAt: o.CreatedAt,
	}
}

// NewStatusChanged 构造状态变更事件
func NewStatusChanged(eventID string, o *Order, prev Status) *OrderEvent {
	return &OrderEvent{
		EventID:        eventID,
		Type:           EventOrderStatusChanged,
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: prev,
		Total:          o.Totals.Total,
		ItemCount:      o.Totals.ItemCount,
		OccurredAt:     o.UpdatedAt,
	}
}
