package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// RingImageModel 对应数据库中的 ring_images 表
type RingImageModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	Design       string          `gorm:"size:32;not null;index:idx_ring_combo"`
	Metal        string          `gorm:"size:32;not null;index:idx_ring_combo"`
	DiamondShape string          `gorm:"size:32;not null;index:idx_ring_combo"`
	Carat        decimal.Decimal `gorm:"type:decimal(3,1);not null"`
	ImageURL     string          `gorm:"size:512;not null"`
	PublicURL    string          `gorm:"size:1024"`
	CreatedAt    time.Time
}

// TableName 指定 GORM 应该使用的表名
func (RingImageModel) TableName() string {
	return "ring_images"
}

// RingPricingModel 对应数据库中的 ring_pricing 表
type RingPricingModel struct {
	Design    string          `gorm:"primaryKey;size:32"`
	Price10   decimal.Decimal `gorm:"column:price_1_0ct;type:decimal(12,2);not null"`
	Price15   decimal.Decimal `gorm:"column:price_1_5ct;type:decimal(12,2);not null"`
	Price20   decimal.Decimal `gorm:"column:price_2_0ct;type:decimal(12,2);not null"`
	Price25   decimal.Decimal `gorm:"column:price_2_5ct;type:decimal(12,2);not null"`
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (RingPricingModel) TableName() string {
	return "ring_pricing"
}

// Models 返回本服务的全部表模型，供迁移使用
func Models() []any {
	return []any{&RingImageModel{}, &RingPricingModel{}}
}
