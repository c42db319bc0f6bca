package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"solitaire/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(fromDomainOrder(o)).Error; err != nil {
		return errors.Wrapf(err, "create order %s", o.ID)
	}
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	o := toDomainOrder(&model)
	return &o, nil
}

func (r *GormOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GormOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *GormOrderRepository) list(_ context.Context, q *gorm.DB) ([]domain.Order, error) {
	var models []OrderModel
	if err := q.Order("created_at DESC, id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	out := make([]domain.Order, len(models))
	for i := range models {
		out[i] = toDomainOrder(&models[i])
	}
	return out, nil
}

// UpdateStatus 只更新状态与更新时间
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *domain.Order) error {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", o.ID).
		Updates(map[string]any{"status": string(o.Status), "updated_at": o.UpdatedAt})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update order %s status", o.ID)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&OrderModel{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete order %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// GormCartRepository 是 CartRepository 的 GORM 实现，所有操作都限定在用户范围内
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var models []CartItemModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "list cart of %s", userID)
	}
	out := make([]domain.CartItem, len(models))
	for i := range models {
		out[i] = toDomainCartItem(&models[i])
	}
	return out, nil
}

func (r *GormCartRepository) Create(ctx context.Context, item *domain.CartItem) error {
	if err := r.db.WithContext(ctx).Create(fromDomainCartItem(item)).Error; err != nil {
		return errors.Wrap(err, "create cart item")
	}
	return nil
}

func (r *GormCartRepository) UpdateQuantity(ctx context.Context, userID, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&CartItemModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("qty", qty)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update cart item %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *GormCartRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&CartItemModel{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete cart item %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *GormCartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItemModel{}).Error; err != nil {
		return errors.Wrapf(err, "clear cart of %s", userID)
	}
	return nil
}
