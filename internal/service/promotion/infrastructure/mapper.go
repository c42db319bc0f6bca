package infrastructure

import (
	"database/sql"

	ring "solitaire/domain"
	"solitaire/internal/service/promotion/domain"
)

// ToDomainRule 将数据库模型转换为领域模型
func ToDomainRule(m *DiscountRuleModel) domain.DiscountRule {
	rule := domain.DiscountRule{
		ID:         m.ID,
		Name:       m.Name,
		Design:     ring.Design(m.Design.String),
		Metal:      ring.Metal(m.Metal.String),
		Shape:      ring.Shape(m.Shape.String),
		Percentage: m.Percentage,
		StartDate:  m.StartDate,
		Active:     m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.EndDate.Valid {
		end := m.EndDate.Time
		rule.EndDate = &end
	}
	return rule
}

// FromDomainRule 将领域模型转换为数据库模型
func FromDomainRule(r *domain.DiscountRule) *DiscountRuleModel {
	m := &DiscountRuleModel{
		ID:         r.ID,
		Name:       r.Name,
		Design:     nullString(string(r.Design)),
		Metal:      nullString(string(r.Metal)),
		Shape:      nullString(string(r.Shape)),
		Percentage: r.Percentage,
		StartDate:  r.StartDate,
		IsActive:   r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.EndDate != nil {
		m.EndDate = sql.NullTime{Time: *r.EndDate, Valid: true}
	}
	return m
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
