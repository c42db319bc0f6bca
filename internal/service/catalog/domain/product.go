// internal/service/catalog/domain/product.go
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	ring "solitaire/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("an image for this design, metal and shape already exists")
	ErrInvalidUpload    = errors.New("invalid image upload")
	ErrPriceNotFound    = errors.New("no price configured for design")
	ErrInvalidFilter    = errors.New("invalid filter expression")
)

// Product 是目录中的一行 (一张戒指图片及其配置)
type Product struct {
	ID        int64
	Design    ring.Design
	Metal     ring.Metal
	Shape     ring.Shape
	Carat     decimal.Decimal
	ImagePath string // 对象存储中的路径
	PublicURL string
	CreatedAt time.Time
}

// Item 返回商品对应的目录配置
func (p *Product) Item() ring.CatalogItem {
	return ring.CatalogItem{Design: p.Design, Metal: p.Metal, Shape: p.Shape, Carat: p.Carat}
}

// Combination 返回不含克拉的组合
func (p *Product) Combination() ring.Combination {
	return ring.Combination{Design: p.Design, Metal: p.Metal, Shape: p.Shape}
}

// ImagePathFor 返回组合主图的存放路径，上传的图片统一记为 1.0ct
func ImagePathFor(c ring.Combination) string {
	return fmt.Sprintf("rings/%s/%s/%s/1.0ct.png", c.Design, c.Metal, c.Shape)
}

// ProductFilter 是前台列表的精确匹配过滤条件，零值字段不过滤
type ProductFilter struct {
	Design ring.Design
	Metal  ring.Metal
	Shape  ring.Shape
	Carat  *decimal.Decimal
}

// Match 判断商品是否满足过滤条件
func (f ProductFilter) Match(p *Product) bool {
	return (f.Design == "" || f.Design == p.Design) &&
		(f.Metal == "" || f.Metal == p.Metal) &&
		(f.Shape == "" || f.Shape == p.Shape) &&
		(f.Carat == nil || f.Carat.Equal(p.Carat))
}

// ProductRepository 定义了目录商品的持久化接口
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	FindByItem(ctx context.Context, item ring.CatalogItem) (*Product, error)
	ExistsCombination(ctx context.Context, c ring.Combination) (bool, error)
	Create(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
