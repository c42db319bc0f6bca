// internal/service/promotion/domain/resolver.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

// Resolve 为商品在 now 时刻选出折扣最大的适用规则，没有适用规则时返回 nil。
// 百分比相同时取输入顺序中最先出现的一条。纯函数，不读取系统时钟。
func Resolve(item ring.CatalogItem, now time.Time, rules []DiscountRule) *DiscountRule {
	var best *DiscountRule
	for i := range rules {
		r := &rules[i]
		if !r.Active || !r.Matches(item) || !r.InWindow(now) {
			continue
		}
		if best == nil || r.Percentage.GreaterThan(best.Percentage) {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	winner := *best
	return &winner
}

// FinalPrice 计算折后价，rule 为 nil 时原样返回 base
func FinalPrice(base decimal.Decimal, rule *DiscountRule) decimal.Decimal {
	if rule == nil {
		return base
	}
	factor := decimal.NewFromInt(1).Sub(rule.Percentage.Div(hundred))
	return base.Mul(factor).Round(2)
}

// Resolution 是一次解析的结果。Discounted 为 true 时展示划线价与角标，
// 0% 的规则同样算作 Discounted。
type Resolution struct {
	Rule       *DiscountRule
	BasePrice  decimal.Decimal
	FinalPrice decimal.Decimal
	Discounted bool
}

// Apply 解析规则并计算价格
func Apply(item ring.CatalogItem, base decimal.Decimal, now time.Time, rules []DiscountRule) Resolution {
	rule := Resolve(item, now, rules)
	return Resolution{
		Rule:       rule,
		BasePrice:  base,
		FinalPrice: FinalPrice(base, rule),
		Discounted: rule != nil,
	}
}
