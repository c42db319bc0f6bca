// internal/service/promotion/domain/discount_rule.go
package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

var (
	ErrRuleNotFound = errors.New("discount rule not found")
	ErrInvalidRule  = errors.New("invalid discount rule")
)

var hundred = decimal.NewFromInt(100)

// DiscountRule 是一条促销折扣规则。Design/Metal/Shape 为空表示通配。
// StartDate/EndDate 只取日历日 (UTC)，EndDate 为 nil 表示长期有效。
type DiscountRule struct {
	ID         int64
	Name       string
	Design     ring.Design
	Metal      ring.Metal
	Shape      ring.Shape
	Percentage decimal.Decimal
	StartDate  time.Time
	EndDate    *time.Time
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Matches 判断规则的三个维度是否覆盖该商品 (精确匹配或通配)
func (r *DiscountRule) Matches(item ring.CatalogItem) bool {
	return (r.Design == "" || r.Design == item.Design) &&
		(r.Metal == "" || r.Metal == item.Metal) &&
		(r.Shape == "" || r.Shape == item.Shape)
}

// InWindow 判断 now 所在的日历日是否落在 [StartDate, EndDate] 内，两端均包含
func (r *DiscountRule) InWindow(now time.Time) bool {
	day := calendarDay(now)
	if day.Before(calendarDay(r.StartDate)) {
		return false
	}
	return r.EndDate == nil || !day.After(calendarDay(*r.EndDate))
}

// Validate 在规则录入时校验；Resolve 本身从不校验
func (r *DiscountRule) Validate() error {
	switch {
	case r.Design != "" && !r.Design.Valid():
		return errors.Wrapf(ErrInvalidRule, "unknown design %q", r.Design)
	case r.Metal != "" && !r.Metal.Valid():
		return errors.Wrapf(ErrInvalidRule, "unknown metal %q", r.Metal)
	case r.Shape != "" && !r.Shape.Valid():
		return errors.Wrapf(ErrInvalidRule, "unknown shape %q", r.Shape)
	case r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred):
		return errors.Wrapf(ErrInvalidRule, "percentage %s out of range [0,100]", r.Percentage)
	case r.StartDate.IsZero():
		return errors.Wrap(ErrInvalidRule, "start date is required")
	case r.EndDate != nil && calendarDay(*r.EndDate).Before(calendarDay(r.StartDate)):
		return errors.Wrap(ErrInvalidRule, "end date is before start date")
	}
	return nil
}

// Scope 返回规则作用范围的可读描述，例如 "Platinum" 或 "All rings"
func (r *DiscountRule) Scope() string {
	var parts []string
	if r.Design != "" {
		parts = append(parts, r.Design.Label())
	}
	if r.Metal != "" {
		parts = append(parts, r.Metal.Label())
	}
	if r.Shape != "" {
		parts = append(parts, r.Shape.Label())
	}
	if len(parts) == 0 {
		return "All rings"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " · " + p
	}
	return out
}

// calendarDay 取 t 在其自身时区下的日期。规则日期按录入的日期理解，
// 解析时刻由调用方换算到门店时区。
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RuleRepository 定义了折扣规则的持久化接口
type RuleRepository interface {
	ListActive(ctx context.Context) ([]DiscountRule, error)
	List(ctx context.Context) ([]DiscountRule, error)
	Get(ctx context.Context, id int64) (*DiscountRule, error)
	Create(ctx context.Context, rule *DiscountRule) error
	Update(ctx context.Context, rule *DiscountRule) error
	Delete(ctx context.Context, id int64) error
}
