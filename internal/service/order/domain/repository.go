// internal/service/order/domain/repository.go
package domain

import (
	"context"

	"github.com/pkg/errors"
)

// ErrCacheMiss 表示缓存中没有该用户的购物车
var ErrCacheMiss = errors.New("cart cache miss")

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// ListByUser 按创建时间倒序返回用户的订单
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id string) error
}

// CartRepository 是购物车的权威存储
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]CartItem, error)
	Create(ctx context.Context, item *CartItem) error
	UpdateQuantity(ctx context.Context, userID, id string, qty int) error
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) error
}

// CartCache 是购物车的读穿缓存
type CartCache interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Set(ctx context.Context, cart *Cart) error
	Invalidate(ctx context.Context, userID string) error
}
