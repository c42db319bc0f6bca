// internal/service/catalog/domain/storage.go
package domain

import (
	"context"
	"io"

	promotion "solitaire/internal/service/promotion/domain"
)

// DiscountRule 复用折扣服务的规则模型与解析器
type DiscountRule = promotion.DiscountRule

// ObjectStore 是戒指图片所在的对象存储
type ObjectStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	Put(ctx context.Context, path, contentType string, r io.Reader) error
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

// DiscountSource 提供当前启用的折扣规则
type DiscountSource interface {
	ListActiveRules(ctx context.Context) ([]DiscountRule, error)
}

// Locker 以资源为粒度提供分布式互斥
type Locker interface {
	WithLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error
}

// ProductPredicate 是编译后的后台过滤表达式
type ProductPredicate func(p *Product) (bool, error)

// FilterCompiler 把表达式文本编译为 ProductPredicate
type FilterCompiler interface {
	Compile(expr string) (ProductPredicate, error)
}
