// internal/service/order/domain/totals.go
package domain

import "github.com/shopspring/decimal"

var (
	// ShippingFlat 是非空购物车的固定运费
	ShippingFlat = decimal.NewFromInt(50)
	// TaxRate 按小计的 8% 计税
	TaxRate = decimal.RequireFromString("0.08")
)

// Totals 是购物车或订单的金额汇总
type Totals struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ComputeTotals 根据小计计算运费、税费与总额。count 为 0 时不收运费。
func ComputeTotals(subtotal decimal.Decimal, count int) Totals {
	shipping := decimal.Zero
	if count > 0 {
		shipping = ShippingFlat
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
	}
}
