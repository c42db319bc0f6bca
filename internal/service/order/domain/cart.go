// internal/service/order/domain/cart.go
package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartItem 是购物车中的一行。目录商品按 ProductID 识别，定制戒指按完整配置识别。
type CartItem struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	ProductID *int64           `json:"product_id,omitempty"`
	Item      ring.CatalogItem `json:"item"`
	Custom    bool             `json:"custom"`
	Title     string           `json:"title"`
	ImageURL  string           `json:"image_url,omitempty"`
	Price     decimal.Decimal  `json:"price"` // 加入购物车时的单价，结账时会重新定价
	Quantity  int              `json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
}

// SameLine 判断两行是否应该合并
func (c *CartItem) SameLine(o *CartItem) bool {
	if c.Custom != o.Custom {
		return false
	}
	if !c.Custom {
		return c.ProductID != nil && o.ProductID != nil && *c.ProductID == *o.ProductID
	}
	return c.Item.Design == o.Item.Design &&
		c.Item.Metal == o.Item.Metal &&
		c.Item.Shape == o.Item.Shape &&
		c.Item.Carat.Equal(o.Item.Carat)
}

// Ref 返回用于定价的引用
func (c *CartItem) Ref() LineRef {
	if c.Custom {
		item := c.Item
		return LineRef{Custom: &item}
	}
	return LineRef{ProductID: c.ProductID}
}

// Cart 是某个用户的购物车
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// Find 返回与 candidate 可合并的行
func (c *Cart) Find(candidate *CartItem) *CartItem {
	for i := range c.Items {
		if c.Items[i].SameLine(candidate) {
			return &c.Items[i]
		}
	}
	return nil
}

// Totals 按加入时的价格计算金额汇总
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	count := 0
	for _, it := range c.Items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	return ComputeTotals(subtotal, count)
}
