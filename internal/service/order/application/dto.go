// internal/service/order/application/dto.go
package application

import (
	"time"

	"github.com/shopspring/decimal"

	ring "solitaire/domain"
	"solitaire/internal/service/order/domain"
)

// CartView 是购物车及其金额汇总
type CartView struct {
	Items  []domain.CartItem `json:"items"`
	Totals domain.Totals     `json:"totals"`
}

func toCartView(c *domain.Cart) *CartView {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return &CartView{Items: items, Totals: c.Totals()}
}

// AddItemRequest 加入购物车：目录商品给 product_id，定制戒指给完整的 custom 配置
type AddItemRequest struct {
	ProductID *int64      `json:"product_id,omitempty"`
	Custom    *CustomRing `json:"custom,omitempty"`
}

// CustomRing 是定制戒指的完整配置
type CustomRing struct {
	Design string `json:"design"`
	Metal  string `json:"metal"`
	Shape  string `json:"shape"`
	Carat  string `json:"carat"`
}

// UpdateQuantityRequest 修改数量，小于等于 0 时删除该行
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest 是结账请求
type CheckoutRequest struct {
	Shipping domain.ShippingDetails `json:"shipping"`
	// SaveInfo 为 true 时下单成功后把姓名、地址、电话写回个人资料
	SaveInfo bool `json:"save_info"`
}

// OrderView 是返回给客户端的订单
type OrderView struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Items     []domain.OrderItem     `json:"items"`
	Subtotal  decimal.Decimal        `json:"subtotal"`
	Shipping  decimal.Decimal        `json:"shipping"`
	Tax       decimal.Decimal        `json:"tax"`
	Total     decimal.Decimal        `json:"total"`
	ItemCount int                    `json:"item_count"`
	Status    domain.Status          `json:"status"`
	Address   domain.ShippingDetails `json:"shipping_address"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func toOrderView(o *domain.Order) *OrderView {
	return &OrderView{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     o.Items,
		Subtotal:  o.Totals.Subtotal,
		Shipping:  o.Totals.Shipping,
		Tax:       o.Totals.Tax,
		Total:     o.Totals.Total,
		ItemCount: o.Totals.ItemCount,
		Status:    o.Status,
		Address:   o.Shipping,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrderViews(orders []domain.Order) []*OrderView {
	out := make([]*OrderView, len(orders))
	for i := range orders {
		out[i] = toOrderView(&orders[i])
	}
	return out
}

// StatusRequest 是后台修改订单状态的请求体
type StatusRequest struct {
	Status string `json:"status"`
}

func (c *CustomRing) item() (ring.CatalogItem, error) {
	return ring.NewCatalogItem(c.Design, c.Metal, c.Shape, c.Carat)
}
