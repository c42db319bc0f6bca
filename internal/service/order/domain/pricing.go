// internal/service/order/domain/pricing.go
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

// LineRef 指向一条待定价的商品：目录商品或完整的定制配置
type LineRef struct {
	ProductID *int64
	Custom    *ring.CatalogItem
}

// PricedLine 是目录服务返回的定价结果
type PricedLine struct {
	ProductID  *int64
	Item       ring.CatalogItem
	Title      string
	ImageURL   string
	Custom     bool
	BasePrice  decimal.Decimal
	UnitPrice  decimal.Decimal
	DiscountID *int64
	Discount   string
}

// Pricer 是目录服务定价接口的出站端口，at 为空时使用目录服务的时钟
type Pricer interface {
	Quote(ctx context.Context, lines []LineRef, at *time.Time) ([]PricedLine, error)
}

// ProfileSaver 把结账时填写的收货信息回写到用户资料
type ProfileSaver interface {
	SaveShipping(ctx context.Context, userID string, shipping ShippingDetails) error
}

// EventPublisher 发布订单事件
type EventPublisher interface {
	Publish(ctx context.Context, event *OrderEvent) error
}
