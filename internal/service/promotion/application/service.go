package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ring "solitaire/domain"
	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/metrics"
	"solitaire/internal/service/promotion/domain"
)

// PromotionService 定义了折扣服务提供的所有业务用例
type PromotionService struct {
	rules  domain.RuleRepository
	tracer trace.Tracer
	now    func() time.Time
	loc    *time.Location
}

// NewPromotionService 创建一个新的折扣服务实例
func NewPromotionService(repo domain.RuleRepository, tracer trace.Tracer) *PromotionService {
	return &PromotionService{rules: repo, tracer: tracer, now: time.Now, loc: time.UTC}
}

// WithLocation 设置门店时区，解析时刻按该时区的日期匹配折扣窗口
func (s *PromotionService) WithLocation(loc *time.Location) *PromotionService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// WithClock 替换服务时钟 (测试用)
func (s *PromotionService) WithClock(now func() time.Time) *PromotionService {
	s.now = now
	return s
}

// ListActiveRules 返回所有启用的规则
func (s *PromotionService) ListActiveRules(ctx context.Context) ([]RuleDTO, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListActiveRules")
	defer span.End()

	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("rules.count", len(rules)))
	return toDTOs(rules), nil
}

// Resolve 为一批商品解析折扣。解析时刻由调用方给出或取服务端时钟。
func (s *PromotionService) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.Resolve")
	defer span.End()

	at := s.now()
	if req.At != nil {
		at = *req.At
	}
	at = at.In(s.loc)
	span.SetAttributes(attribute.Int("items.count", len(req.Items)), attribute.String("resolve.at", at.Format(time.RFC3339)))

	items := make([]ring.CatalogItem, len(req.Items))
	for i, in := range req.Items {
		item, err := ring.NewCatalogItem(in.Design, in.Metal, in.Shape, in.Carat)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrapf(err, "item %d", i)
		}
		items[i] = item
	}

	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := &ResolveResponse{At: at, Results: make([]ResolveResult, len(items))}
	matched := 0
	for i, item := range items {
		res := domain.Apply(item, req.Items[i].BasePrice, at, rules)
		resp.Results[i] = ResolveResult{
			Rule:       ToRuleDTO(res.Rule),
			BasePrice:  res.BasePrice,
			FinalPrice: res.FinalPrice,
			Discounted: res.Discounted,
		}
		if res.Discounted {
			matched++
			metrics.DiscountResolutions.WithLabelValues("matched").Inc()
		} else {
			metrics.DiscountResolutions.WithLabelValues("none").Inc()
		}
	}

	logger.Ctx(ctx).Debug().Int("items", len(items)).Int("matched", matched).Msg("discounts resolved")
	return resp, nil
}

// ListRules 返回全部规则 (后台)
func (s *PromotionService) ListRules(ctx context.Context) ([]RuleDTO, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListRules")
	defer span.End()

	rules, err := s.rules.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toDTOs(rules), nil
}

func (s *PromotionService) GetRule(ctx context.Context, id int64) (*RuleDTO, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetRule")
	defer span.End()

	rule, err := s.rules.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return ToRuleDTO(rule), nil
}

// CreateRule 校验并保存一条新规则
func (s *PromotionService) CreateRule(ctx context.Context, in *RuleInput) (*RuleDTO, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateRule")
	defer span.End()

	rule, err := in.ToDomain()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("rule_id", rule.ID).Str("scope", rule.Scope()).
		Str("percentage", rule.Percentage.String()).Msg("discount rule created")
	return ToRuleDTO(rule), nil
}

// UpdateRule 整体替换一条规则
func (s *PromotionService) UpdateRule(ctx context.Context, id int64, in *RuleInput) (*RuleDTO, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateRule")
	defer span.End()
	span.SetAttributes(attribute.Int64("rule.id", id))

	existing, err := s.rules.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	rule, err := in.ToDomain()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	rule.ID = id
	rule.CreatedAt = existing.CreatedAt
	if err := s.rules.Update(ctx, rule); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("rule_id", id).Msg("discount rule updated")
	return ToRuleDTO(rule), nil
}

func (s *PromotionService) DeleteRule(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "service.DeleteRule")
	defer span.End()
	span.SetAttributes(attribute.Int64("rule.id", id))

	if err := s.rules.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Int64("rule_id", id).Msg("discount rule deleted")
	return nil
}

func toDTOs(rules []domain.DiscountRule) []RuleDTO {
	out := make([]RuleDTO, len(rules))
	for i := range rules {
		out[i] = *ToRuleDTO(&rules[i])
	}
	return out
}
