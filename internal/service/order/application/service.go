// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/metrics"
	"solitaire/internal/service/order/application/saga"
	"solitaire/internal/service/order/domain"
)

// OrderApplicationService 负责结账流程编排以及订单的查询与状态管理
type OrderApplicationService struct {
	orders            domain.OrderRepository
	cart              saga.Cart
	pricer            domain.Pricer
	publisher         domain.EventPublisher
	profiles          domain.ProfileSaver
	tracer            trace.Tracer
	processingTimeout time.Duration
	now               func() time.Time
	newID             func() string
}

func NewOrderApplicationService(orders domain.OrderRepository, cart saga.Cart, pricer domain.Pricer, publisher domain.EventPublisher, tracer trace.Tracer, processingTimeout time.Duration) *OrderApplicationService {
	return &OrderApplicationService{
		orders: orders, cart: cart, pricer: pricer, publisher: publisher,
		tracer: tracer, processingTimeout: processingTimeout,
		now: time.Now, newID: uuid.NewString,
	}
}

// WithClock 替换服务时钟 (测试用)
func (s *OrderApplicationService) WithClock(now func() time.Time) *OrderApplicationService {
	s.now = now
	return s
}

// WithProfileSaver 启用结账时回写收货信息
func (s *OrderApplicationService) WithProfileSaver(p domain.ProfileSaver) *OrderApplicationService {
	s.profiles = p
	return s
}

// PlaceOrder 执行结账 Saga：校验 -> 重新定价 -> 落库 -> 保存资料 -> 清空购物车 -> 发布事件
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, userID string, req *CheckoutRequest) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()

	processingCtx := ctx
	if s.processingTimeout > 0 {
		var cancel context.CancelFunc
		processingCtx, cancel = context.WithTimeout(ctx, s.processingTimeout)
		defer cancel()
	}

	orderCtx := &saga.OrderContext{
		Ctx:       processingCtx,
		Tracer:    s.tracer,
		Now:       s.now().UTC(),
		OrderID:   s.newID(),
		UserID:    userID,
		Shipping:  req.Shipping,
		SaveInfo:  req.SaveInfo,
		Cart:      s.cart,
		Pricer:    s.pricer,
		Orders:    s.orders,
		Publisher: s.publisher,
		Profiles:  s.profiles,
		NewID:     s.newID,
	}
	span.SetAttributes(attribute.String("order.id", orderCtx.OrderID), attribute.String("user.id", userID))

	if err := s.buildChain().Handle(orderCtx); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order", orderCtx.OrderID).Msg("checkout saga failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed in chain")
		orderCtx.TriggerCompensation(context.WithoutCancel(ctx))
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	logger.Ctx(ctx).Info().Str("order", orderCtx.OrderID).Str("total", orderCtx.Order.Totals.Total.String()).Msg("order placed")
	return toOrderView(orderCtx.Order), nil
}

func (s *OrderApplicationService) buildChain() saga.Handler {
	chain := new(saga.ValidateHandler)
	chain.
		SetNext(new(saga.PricingHandler)).
		SetNext(new(saga.CreateOrderHandler)).
		SetNext(new(saga.SaveProfileHandler)).
		SetNext(new(saga.ClearCartHandler)).
		SetNext(new(saga.NotificationHandler))
	return chain
}

// ListOrders 返回用户自己的订单，最新的在前
func (s *OrderApplicationService) ListOrders(ctx context.Context, userID string) ([]*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toOrderViews(orders), nil
}

// ownOrder 读取订单并校验归属，不属于该用户时按不存在处理
func (s *OrderApplicationService) ownOrder(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderApplicationService) GetOrder(ctx context.Context, userID, id string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	o, err := s.ownOrder(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toOrderView(o), nil
}

// CancelOrder 用户取消自己的 pending 订单
func (s *OrderApplicationService) CancelOrder(ctx context.Context, userID, id string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.CancelOrder")
	defer span.End()

	o, err := s.ownOrder(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	prev := o.Status
	if err := o.Cancel(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.publishStatusChanged(ctx, o, prev)
	return toOrderView(o), nil
}

// ListAllOrders 后台查看全部订单
func (s *OrderApplicationService) ListAllOrders(ctx context.Context) ([]*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListAllOrders")
	defer span.End()

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toOrderViews(orders), nil
}

// UpdateStatus 后台修改订单状态并发布 OrderStatusChanged
func (s *OrderApplicationService) UpdateStatus(ctx context.Context, id, status string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.UpdateOrderStatus")
	defer span.End()

	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	prev, err := o.SetStatus(st, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if prev == st {
		return toOrderView(o), nil
	}
	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("order", id).Str("from", string(prev)).Str("to", string(st)).Msg("order status changed")
	s.publishStatusChanged(ctx, o, prev)
	return toOrderView(o), nil
}

// DeleteOrder 后台删除订单
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "app.DeleteOrder")
	defer span.End()

	if err := s.orders.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Str("order", id).Msg("order deleted")
	return nil
}

func (s *OrderApplicationService) publishStatusChanged(ctx context.Context, o *domain.Order, prev domain.Status) {
	if err := s.publisher.Publish(ctx, domain.NewStatusChanged(s.newID(), o, prev)); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order", o.ID).Msg("failed to publish order status changed event")
	}
}
