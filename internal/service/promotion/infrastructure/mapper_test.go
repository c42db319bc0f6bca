package infrastructure

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ring "solitaire/domain"
	"solitaire/internal/service/promotion/domain"
)

func TestRuleMapping_WildcardsBecomeNull(t *testing.T) {
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	rule := domain.DiscountRule{
		ID:         3,
		Name:       "Platinum month",
		Metal:      ring.MetalPlatinum,
		Percentage: decimal.NewFromInt(10),
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    &end,
		Active:     true,
	}

	m := FromDomainRule(&rule)
	assert.False(t, m.Design.Valid)
	assert.False(t, m.Shape.Valid)
	assert.True(t, m.Metal.Valid)
	assert.True(t, m.EndDate.Valid)

	if diff := cmp.Diff(rule, ToDomainRule(m)); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleMapping_OpenEnded(t *testing.T) {
	m := &DiscountRuleModel{ID: 1, Percentage: decimal.NewFromInt(5), IsActive: true}
	assert.Nil(t, ToDomainRule(m).EndDate)
}
