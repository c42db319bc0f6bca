package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"solitaire/internal/service/account/domain"
)

// GormProfileRepository 是 ProfileRepository 的 GORM 实现
type GormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, errors.Wrapf(err, "get profile %s", userID)
	}
	return toDomainProfile(&model), nil
}

// Create 使用 INSERT IGNORE 语义，并发首读不会冲突
func (r *GormProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fromDomainProfile(p)).Error
	return errors.Wrapf(err, "create profile %s", p.UserID)
}

func (r *GormProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	res := r.db.WithContext(ctx).Model(&ProfileModel{}).Where("user_id = ?", p.UserID).Updates(map[string]any{
		"name":       p.Name,
		"address":    p.Address,
		"phone":      p.Phone,
		"updated_at": p.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update profile %s", p.UserID)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// GormWishlistRepository 是 WishlistRepository 的 GORM 实现
type GormWishlistRepository struct {
	db *gorm.DB
}

func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

func (r *GormWishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	var models []WishlistItemModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "list wishlist for %s", userID)
	}
	out := make([]domain.WishlistItem, len(models))
	for i, m := range models {
		out[i] = domain.WishlistItem{UserID: m.UserID, ProductID: m.ProductID, CreatedAt: m.CreatedAt}
	}
	return out, nil
}

// Add 依赖 (user_id, product_id) 唯一索引实现幂等
func (r *GormWishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) (bool, error) {
	model := &WishlistItemModel{UserID: item.UserID, ProductID: item.ProductID, CreatedAt: item.CreatedAt}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "add product %d to wishlist", item.ProductID)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormWishlistRepository) Remove(ctx context.Context, userID string, productID int64) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItemModel{}).Error
	return errors.Wrapf(err, "remove product %d from wishlist", productID)
}

// GormMessageRepository 是 MessageRepository 的 GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	model := fromDomainMessage(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "create message")
	}
	m.ID = model.ID
	return nil
}

func (r *GormMessageRepository) Get(ctx context.Context, id int64) (*domain.Message, error) {
	var model MessageModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, errors.Wrapf(err, "get message %d", id)
	}
	m := toDomainMessage(&model)
	return &m, nil
}

func (r *GormMessageRepository) List(ctx context.Context) ([]domain.Message, error) {
	var models []MessageModel
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	out := make([]domain.Message, len(models))
	for i := range models {
		out[i] = toDomainMessage(&models[i])
	}
	return out, nil
}

func (r *GormMessageRepository) Update(ctx context.Context, m *domain.Message) error {
	res := r.db.WithContext(ctx).Model(&MessageModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"status":     string(m.Status),
		"reply":      m.Reply,
		"replied_at": m.RepliedAt,
		"updated_at": m.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update message %d", m.ID)
	}
	if res.RowsAffected == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *GormMessageRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&MessageModel{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete message %d", id)
	}
	if res.RowsAffected == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}
