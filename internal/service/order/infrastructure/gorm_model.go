package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"

	"solitaire/internal/service/order/domain"
)

// OrderModel 对应数据库中的 orders 表，商品行与收货地址以 JSON 存储
type OrderModel struct {
	ID              string                 `gorm:"primaryKey;size:36"`
	UserID          string                 `gorm:"size:128;not null;index:idx_orders_user_created,priority:1"`
	Items           []domain.OrderItem     `gorm:"type:json;serializer:json;not null"`
	ItemCount       int                    `gorm:"not null"`
	Subtotal        decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Shipping        decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Status          string                 `gorm:"size:16;not null;index"`
	ShippingAddress domain.ShippingDetails `gorm:"type:json;serializer:json"`
	CreatedAt       time.Time              `gorm:"index:idx_orders_user_created,priority:2"`
	UpdatedAt       time.Time
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "orders"
}

// CartItemModel 对应数据库中的 cart_items 表
type CartItemModel struct {
	ID        string          `gorm:"primaryKey;size:36"`
	UserID    string          `gorm:"size:128;not null;index"`
	ProductID *int64          `gorm:"index"`
	Design    string          `gorm:"size:32;not null"`
	Metal     string          `gorm:"size:32;not null"`
	Shape     string          `gorm:"size:32;not null"`
	Carat     decimal.Decimal `gorm:"type:decimal(3,1);not null"`
	Custom    bool            `gorm:"not null;default:false"`
	Title     string          `gorm:"size:255;not null"`
	ImageURL  string          `gorm:"size:1024"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Qty       int             `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// Models 返回本服务的全部表模型，供迁移使用
func Models() []any {
	return []any{&OrderModel{}, &CartItemModel{}}
}
