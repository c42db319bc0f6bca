package saga

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/order/domain"
)

// CreateOrderHandler 负责持久化 pending 订单
type CreateOrderHandler struct {
	NextHandler
}

func (h *CreateOrderHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.CreateOrder")
	defer span.End()

	logger.Ctx(ctx).Debug().Str("order", orderCtx.OrderID).Msg("saga step 3: persist pending order")

	order, err := domain.NewOrder(orderCtx.OrderID, orderCtx.UserID, orderCtx.Items, orderCtx.Shipping, orderCtx.Now)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := orderCtx.Orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to save pending order")
	}
	orderCtx.Order = order
	span.SetAttributes(attribute.String("order.total", order.Totals.Total.String()))
	span.AddEvent("Pending order saved to DB.")

	orderCtx.AddCompensation(func(ctx context.Context) {
		if err := orderCtx.Orders.Delete(ctx, order.ID); err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
			logger.Ctx(ctx).Error().Err(err).Str("order", order.ID).Msg("compensation: failed to delete pending order")
		}
	})

	return h.executeNext(orderCtx)
}
