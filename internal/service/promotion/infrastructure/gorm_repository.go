package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"solitaire/internal/service/promotion/domain"
)

// GormRuleRepository 是 RuleRepository 的 GORM 实现
type GormRuleRepository struct {
	db *gorm.DB
}

// NewGormRuleRepository 创建一个新的 GORM 仓储实例
func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

// ListActive 查询所有启用的规则，按 ID 排序以保证解析结果稳定
func (r *GormRuleRepository) ListActive(ctx context.Context) ([]domain.DiscountRule, error) {
	var models []DiscountRuleModel
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list active discount rules")
	}
	return toDomainRules(models), nil
}

// List 查询全部规则 (后台管理)
func (r *GormRuleRepository) List(ctx context.Context) ([]domain.DiscountRule, error) {
	var models []DiscountRuleModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list discount rules")
	}
	return toDomainRules(models), nil
}

func (r *GormRuleRepository) Get(ctx context.Context, id int64) (*domain.DiscountRule, error) {
	var model DiscountRuleModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, errors.Wrapf(err, "get discount rule %d", id)
	}
	rule := ToDomainRule(&model)
	return &rule, nil
}

func (r *GormRuleRepository) Create(ctx context.Context, rule *domain.DiscountRule) error {
	model := FromDomainRule(rule)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "create discount rule")
	}
	*rule = ToDomainRule(model)
	return nil
}

// Update 整体覆盖一条规则，Save 会写入零值字段 (例如把维度改回通配)
func (r *GormRuleRepository) Update(ctx context.Context, rule *domain.DiscountRule) error {
	model := FromDomainRule(rule)
	res := r.db.WithContext(ctx).Model(&DiscountRuleModel{ID: rule.ID}).Select("*").Omit("created_at").Updates(model)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update discount rule %d", rule.ID)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

func (r *GormRuleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&DiscountRuleModel{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete discount rule %d", id)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

func toDomainRules(models []DiscountRuleModel) []domain.DiscountRule {
	rules := make([]domain.DiscountRule, len(models))
	for i := range models {
		rules[i] = ToDomainRule(&models[i])
	}
	return rules
}
