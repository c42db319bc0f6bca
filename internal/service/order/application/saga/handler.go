package saga

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/order/domain"
)

// Cart 是结账流程对购物车的读写端口
type Cart interface {
	Items(ctx context.Context, userID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

// OrderContext 在 Saga 流程中传递上下文数据。
type OrderContext struct {
	Ctx      context.Context
	Tracer   trace.Tracer
	Now      time.Time
	OrderID  string
	UserID   string
	Shipping domain.ShippingDetails
	SaveInfo bool

	// 流程中逐步填充
	CartItems []domain.CartItem
	Items     []domain.OrderItem
	Order     *domain.Order

	// 出站端口
	Cart      Cart
	Pricer    domain.Pricer
	Orders    domain.OrderRepository
	Publisher domain.EventPublisher
	Profiles  domain.ProfileSaver // 可为 nil
	NewID     func() string

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 注册补偿操作，后注册的先执行
func (c *OrderContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

func (c *OrderContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Warn().Str("order", c.OrderID).Int("compensations", len(c.compensations)).Msg("executing saga compensations")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

type Handler interface {
	SetNext(handler Handler) Handler
	Handle(orderCtx *OrderContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(orderCtx *OrderContext) error {
	if h.next != nil {
		return h.next.Handle(orderCtx)
	}
	return nil
}
