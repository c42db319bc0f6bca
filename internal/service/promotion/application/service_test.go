package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	ring "solitaire/domain"
	"solitaire/internal/service/promotion/domain"
)

type memRuleRepo struct {
	mu     sync.Mutex
	nextID int64
	rules  map[int64]domain.DiscountRule
}

func newMemRuleRepo(rules ...domain.DiscountRule) *memRuleRepo {
	repo := &memRuleRepo{rules: map[int64]domain.DiscountRule{}}
	for _, r := range rules {
		_ = repo.Create(context.Background(), &r)
	}
	return repo
}

func (m *memRuleRepo) sorted(onlyActive bool) []domain.DiscountRule {
	var out []domain.DiscountRule
	for _, r := range m.rules {
		if !onlyActive || r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRuleRepo) ListActive(context.Context) ([]domain.DiscountRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(true), nil
}

func (m *memRuleRepo) List(context.Context) ([]domain.DiscountRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(false), nil
}

func (m *memRuleRepo) Get(_ context.Context, id int64) (*domain.DiscountRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return nil, domain.ErrRuleNotFound
	}
	return &r, nil
}

func (m *memRuleRepo) Create(_ context.Context, r *domain.DiscountRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.rules[r.ID] = *r
	return nil
}

func (m *memRuleRepo) Update(_ context.Context, r *domain.DiscountRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[r.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	m.rules[r.ID] = *r
	return nil
}

func (m *memRuleRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return domain.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func newTestService(repo domain.RuleRepository, now time.Time) *PromotionService {
	return NewPromotionService(repo, noop.NewTracerProvider().Tracer("test")).
		WithClock(func() time.Time { return now })
}

func TestResolve_UsesServerClockWhenAtMissing(t *testing.T) {
	repo := newMemRuleRepo(domain.DiscountRule{
		Name: "January", Percentage: decimal.NewFromInt(20), Active: true,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   ptr(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)),
	})
	svc := newTestService(repo, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	req := &ResolveRequest{Items: []ResolveItem{{
		Design: "halo-setting", Metal: "platinum", Shape: "oval", Carat: "1.0", BasePrice: decimal.NewFromInt(5000),
	}}}
	resp, err := svc.Resolve(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Discounted)
	assert.True(t, resp.Results[0].FinalPrice.Equal(decimal.NewFromInt(4000)))

	later := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	req.At = &later
	resp, err = svc.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Results[0].Discounted)
	assert.Nil(t, resp.Results[0].Rule)
	assert.True(t, resp.Results[0].FinalPrice.Equal(decimal.NewFromInt(5000)))
}

func TestResolve_StoreTimezone(t *testing.T) {
	repo := newMemRuleRepo(domain.DiscountRule{
		Name: "January", Percentage: decimal.NewFromInt(20), Active: true,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   ptr(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)),
	})
	pacific := time.FixedZone("PST", -8*60*60)
	// 服务端时钟是 UTC 的 2 月 1 日 04:00，门店时区仍是 1 月 31 日
	svc := newTestService(repo, time.Date(2024, 2, 1, 4, 0, 0, 0, time.UTC)).WithLocation(pacific)

	req := &ResolveRequest{Items: []ResolveItem{{
		Design: "halo-setting", Metal: "platinum", Shape: "oval", Carat: "1.0", BasePrice: decimal.NewFromInt(5000),
	}}}
	resp, err := svc.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Discounted)

	utc := newTestService(repo, time.Date(2024, 2, 1, 4, 0, 0, 0, time.UTC))
	resp, err = utc.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Results[0].Discounted)
}

func TestResolve_InvalidItem(t *testing.T) {
	svc := newTestService(newMemRuleRepo(), time.Now())
	_, err := svc.Resolve(context.Background(), &ResolveRequest{Items: []ResolveItem{{Design: "halo-ish", Metal: "platinum", Shape: "oval", Carat: "1"}}})
	assert.ErrorIs(t, err, ring.ErrInvalidAttribute)
}

func TestRuleLifecycle(t *testing.T) {
	repo := newMemRuleRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	end := "2024-12-31"
	created, err := svc.CreateRule(ctx, &RuleInput{
		Name: "Platinum", Metal: "platinum", Percentage: decimal.NewFromInt(10), StartDate: "2024-01-01", EndDate: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "Platinum", created.Scope)
	assert.True(t, created.Active)

	disabled := false
	updated, err := svc.UpdateRule(ctx, created.ID, &RuleInput{
		Name: "Everything", Percentage: decimal.NewFromInt(5), StartDate: "2024-01-01", Active: &disabled,
	})
	require.NoError(t, err)
	assert.Equal(t, "All rings", updated.Scope)
	assert.Nil(t, updated.EndDate)

	active, err := svc.ListActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.DeleteRule(ctx, created.ID))
	_, err = svc.GetRule(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)
}

func TestCreateRule_Invalid(t *testing.T) {
	svc := newTestService(newMemRuleRepo(), time.Now())
	cases := []RuleInput{
		{Percentage: decimal.NewFromInt(120), StartDate: "2024-01-01"},
		{Percentage: decimal.NewFromInt(10), StartDate: "01/01/2024"},
		{Design: "halo-ish", Percentage: decimal.NewFromInt(10), StartDate: "2024-01-01"},
	}
	for _, in := range cases {
		_, err := svc.CreateRule(context.Background(), &in)
		assert.ErrorIs(t, err, domain.ErrInvalidRule)
	}
}

func ptr[T any](v T) *T { return &v }
