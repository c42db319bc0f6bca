package infrastructure

import (
	"context"

	"solitaire/internal/pkg/httpclient"
	"solitaire/internal/service/catalog/domain"
	promotion "solitaire/internal/service/promotion/application"
)

const promotionService = "promotion-service"

// PromotionHTTPAdapter 通过 HTTP 从折扣服务读取启用的规则
type PromotionHTTPAdapter struct {
	client *httpclient.Client
}

// NewPromotionHTTPAdapter 创建一个新的折扣服务适配器
func NewPromotionHTTPAdapter(client *httpclient.Client) *PromotionHTTPAdapter {
	return &PromotionHTTPAdapter{client: client}
}

// ListActiveRules 实现了 domain.DiscountSource 接口
func (a *PromotionHTTPAdapter) ListActiveRules(ctx context.Context) ([]domain.DiscountRule, error) {
	var dtos []promotion.RuleDTO
	if err := a.client.GetJSON(ctx, promotionService, "/discount_rules/active", &dtos); err != nil {
		return nil, err
	}
	rules := make([]domain.DiscountRule, 0, len(dtos))
	for i := range dtos {
		rule, err := dtos[i].ToDomain()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
