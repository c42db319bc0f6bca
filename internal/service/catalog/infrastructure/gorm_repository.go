package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ring "solitaire/domain"
	"solitaire/internal/service/catalog/domain"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建一个新的 GORM 仓储实例
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// List 按 款式、金属、形状、克拉 排序返回全部商品
func (r *GormProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	var models []RingImageModel
	err := r.db.WithContext(ctx).Order("design, metal, diamond_shape, carat, id").Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list ring images")
	}
	out := make([]domain.Product, len(models))
	for i := range models {
		out[i] = toDomainProduct(&models[i])
	}
	return out, nil
}

func (r *GormProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var model RingImageModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrapf(err, "get ring image %d", id)
	}
	p := toDomainProduct(&model)
	return &p, nil
}

// FindByItem 精确查找某个配置对应的商品
func (r *GormProductRepository) FindByItem(ctx context.Context, item ring.CatalogItem) (*domain.Product, error) {
	var model RingImageModel
	err := r.db.WithContext(ctx).
		Where("design = ? AND metal = ? AND diamond_shape = ? AND carat = ?", item.Design, item.Metal, item.Shape, item.Carat).
		Order("id").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "find ring image by item")
	}
	p := toDomainProduct(&model)
	return &p, nil
}

// ExistsCombination 检查组合是否已有图片 (忽略克拉)
func (r *GormProductRepository) ExistsCombination(ctx context.Context, c ring.Combination) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RingImageModel{}).
		Where("design = ? AND metal = ? AND diamond_shape = ?", c.Design, c.Metal, c.Shape).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check ring image combination")
	}
	return count > 0, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	model := fromDomainProduct(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "create ring image")
	}
	*p = toDomainProduct(model)
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&RingImageModel{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete ring image %d", id)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// GormPriceRepository 是 PriceRepository 的 GORM 实现
type GormPriceRepository struct {
	db *gorm.DB
}

func NewGormPriceRepository(db *gorm.DB) *GormPriceRepository {
	return &GormPriceRepository{db: db}
}

func (r *GormPriceRepository) List(ctx context.Context) ([]domain.PriceTable, error) {
	var models []RingPricingModel
	if err := r.db.WithContext(ctx).Order("design").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list ring pricing")
	}
	out := make([]domain.PriceTable, len(models))
	for i := range models {
		out[i] = toDomainPriceTable(&models[i])
	}
	return out, nil
}

func (r *GormPriceRepository) Get(ctx context.Context, d ring.Design) (*domain.PriceTable, error) {
	var model RingPricingModel
	if err := r.db.WithContext(ctx).Where("design = ?", d).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPriceNotFound
		}
		return nil, errors.Wrapf(err, "get ring pricing %s", d)
	}
	t := toDomainPriceTable(&model)
	return &t, nil
}

// Upsert 以款式为主键插入或覆盖价格
func (r *GormPriceRepository) Upsert(ctx context.Context, t *domain.PriceTable) error {
	model := fromDomainPriceTable(t)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "design"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_1_0ct", "price_1_5ct", "price_2_0ct", "price_2_5ct", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return errors.Wrapf(err, "upsert ring pricing %s", t.Design)
	}
	t.UpdatedAt = model.UpdatedAt
	return nil
}
