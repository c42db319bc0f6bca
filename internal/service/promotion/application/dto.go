package application

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	ring "solitaire/domain"
	"solitaire/internal/service/promotion/domain"
)

// RuleDTO 是折扣规则的对外表示，日期格式为 YYYY-MM-DD
type RuleDTO struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Design     string          `json:"design,omitempty"`
	Metal      string          `json:"metal,omitempty"`
	Shape      string          `json:"shape,omitempty"`
	Percentage decimal.Decimal `json:"percentage"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
	Active     bool            `json:"active"`
	Scope      string          `json:"scope"`
}

// RuleInput 是新建/修改规则的请求体
type RuleInput struct {
	Name       string          `json:"name"`
	Design     string          `json:"design"`
	Metal      string          `json:"metal"`
	Shape      string          `json:"shape"`
	Percentage decimal.Decimal `json:"percentage"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date"`
	Active     *bool           `json:"active"`
}

// ResolveRequest 是批量解析折扣的请求体，At 为空时使用服务端时钟
type ResolveRequest struct {
	At    *time.Time    `json:"at,omitempty"`
	Items []ResolveItem `json:"items"`
}

type ResolveItem struct {
	Design    string          `json:"design"`
	Metal     string          `json:"metal"`
	Shape     string          `json:"shape"`
	Carat     string          `json:"carat"`
	BasePrice decimal.Decimal `json:"base_price"`
}

type ResolveResult struct {
	Rule       *RuleDTO        `json:"rule,omitempty"`
	BasePrice  decimal.Decimal `json:"base_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Discounted bool            `json:"discounted"`
}

type ResolveResponse struct {
	At      time.Time       `json:"at"`
	Results []ResolveResult `json:"results"`
}

// ToRuleDTO 将领域规则转换为 DTO
func ToRuleDTO(r *domain.DiscountRule) *RuleDTO {
	if r == nil {
		return nil
	}
	dto := &RuleDTO{
		ID:         r.ID,
		Name:       r.Name,
		Design:     string(r.Design),
		Metal:      string(r.Metal),
		Shape:      string(r.Shape),
		Percentage: r.Percentage,
		StartDate:  r.StartDate.Format(time.DateOnly),
		Active:     r.Active,
		Scope:      r.Scope(),
	}
	if r.EndDate != nil {
		end := r.EndDate.Format(time.DateOnly)
		dto.EndDate = &end
	}
	return dto
}

// ToDomain 解析输入，空的维度表示通配
func (in *RuleInput) ToDomain() (*domain.DiscountRule, error) {
	rule := &domain.DiscountRule{
		Name:       in.Name,
		Percentage: in.Percentage,
		Active:     in.Active == nil || *in.Active,
	}
	var err error
	if in.Design != "" {
		if rule.Design, err = ring.ParseDesign(in.Design); err != nil {
			return nil, errors.Wrap(domain.ErrInvalidRule, err.Error())
		}
	}
	if in.Metal != "" {
		if rule.Metal, err = ring.ParseMetal(in.Metal); err != nil {
			return nil, errors.Wrap(domain.ErrInvalidRule, err.Error())
		}
	}
	if in.Shape != "" {
		if rule.Shape, err = ring.ParseShape(in.Shape); err != nil {
			return nil, errors.Wrap(domain.ErrInvalidRule, err.Error())
		}
	}
	if rule.StartDate, err = time.Parse(time.DateOnly, in.StartDate); err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidRule, "start_date %q", in.StartDate)
	}
	if in.EndDate != nil && *in.EndDate != "" {
		end, err := time.Parse(time.DateOnly, *in.EndDate)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInvalidRule, "end_date %q", *in.EndDate)
		}
		rule.EndDate = &end
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// ToDomain 把对外表示还原为领域规则，供其他服务在本地执行解析
func (d *RuleDTO) ToDomain() (domain.DiscountRule, error) {
	rule := domain.DiscountRule{
		ID:         d.ID,
		Name:       d.Name,
		Design:     ring.Design(d.Design),
		Metal:      ring.Metal(d.Metal),
		Shape:      ring.Shape(d.Shape),
		Percentage: d.Percentage,
		Active:     d.Active,
	}
	start, err := time.Parse(time.DateOnly, d.StartDate)
	if err != nil {
		return rule, errors.Wrapf(domain.ErrInvalidRule, "rule %d start_date %q", d.ID, d.StartDate)
	}
	rule.StartDate = start
	if d.EndDate != nil {
		end, err := time.Parse(time.DateOnly, *d.EndDate)
		if err != nil {
			return rule, errors.Wrapf(domain.ErrInvalidRule, "rule %d end_date %q", d.ID, *d.EndDate)
		}
		rule.EndDate = &end
	}
	return rule, nil
}
