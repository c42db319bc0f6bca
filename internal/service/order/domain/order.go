// internal/service/order/domain/order.go
package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidShipping   = errors.New("invalid shipping details")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status does not allow this operation")
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// ShippingDetails 是结账时填写的收货信息
type ShippingDetails struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// FullName 是 "名 姓"，用作资料中的姓名
func (s ShippingDetails) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// Validate 校验必填字段、邮箱与电话格式，返回的错误列出所有问题字段
func (s *ShippingDetails) Validate() error {
	required := []struct{ name, value string }{
		{"first_name", s.FirstName},
		{"last_name", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"postal_code", s.PostalCode},
	}
	var problems []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	if s.Email != "" && !emailPattern.MatchString(s.Email) {
		problems = append(problems, "email is invalid")
	}
	if s.Phone != "" && !phonePattern.MatchString(strings.Join(strings.Fields(s.Phone), "")) {
		problems = append(problems, "phone is invalid")
	}
	if len(problems) > 0 {
		return errors.Wrap(ErrInvalidShipping, strings.Join(problems, "; "))
	}
	if s.Country == "" {
		s.Country = "United States"
	}
	return nil
}

// OrderItem 是下单时锁定的一行商品，价格为重新定价后的单价
type OrderItem struct {
	ProductID  *int64           `json:"product_id,omitempty"`
	Item       ring.CatalogItem `json:"item"`
	Title      string           `json:"title"`
	ImageURL   string           `json:"image_url,omitempty"`
	Custom     bool             `json:"custom"`
	Quantity   int              `json:"quantity"`
	BasePrice  decimal.Decimal  `json:"base_price"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	DiscountID *int64           `json:"discount_rule_id,omitempty"`
	Discount   string           `json:"discount_name,omitempty"`
}

// LineTotal 单价 × 数量
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order 是订单聚合的根实体
type Order struct {
	ID        string
	UserID    string
	Items     []OrderItem
	Totals    Totals
	Status    Status
	Shipping  ShippingDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 是订单的工厂函数，按行计算金额，初始状态为 pending
func NewOrder(id, userID string, items []OrderItem, shipping ShippingDetails, now time.Time) (*Order, error) {
	if id == "" || userID == "" {
		return nil, errors.New("cannot create order with empty id or user")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
		count += it.Quantity
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Totals:    ComputeTotals(subtotal, count),
		Status:    StatusPending,
		Shipping:  shipping,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Cancel 用户取消订单，只有 pending 状态可以取消
func (o *Order) Cancel(now time.Time) error {
	if o.Status != StatusPending {
		return errors.Wrapf(ErrInvalidTransition, "cannot cancel a %s order", o.Status)
	}
	o.Status = StatusCancelled
	o.UpdatedAt = now
	return nil
}

// SetStatus 后台修改状态，返回修改前的状态
func (o *Order) SetStatus(s Status, now time.Time) (Status, error) {
	if !s.Valid() {
		return o.Status, errors.Wrapf(ErrInvalidStatus, "%q", s)
	}
	prev := o.Status
	o.Status = s
	o.UpdatedAt = now
	return prev, nil
}
