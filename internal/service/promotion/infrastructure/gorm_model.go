package infrastructure

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountRuleModel 对应数据库中的 discount_rules 表。通配维度存为 NULL。
type DiscountRuleModel struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	Name       string          `gorm:"size:128"`
	Design     sql.NullString  `gorm:"size:32"`
	Metal      sql.NullString  `gorm:"size:32"`
	Shape      sql.NullString  `gorm:"size:32"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	StartDate  time.Time       `gorm:"type:date;not null"`
	EndDate    sql.NullTime    `gorm:"type:date"`
	IsActive   bool            `gorm:"index;not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定 GORM 应该使用的表名
func (DiscountRuleModel) TableName() string {
	return "discount_rules"
}

// Models 返回本服务的全部表模型，供迁移使用
func Models() []any {
	return []any{&DiscountRuleModel{}}
}
