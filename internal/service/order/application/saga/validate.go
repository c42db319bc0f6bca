package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/order/domain"
)

// ValidateHandler 校验收货信息并读取购物车
type ValidateHandler struct {
	NextHandler
}

func (h *ValidateHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.Validate")
	defer span.End()

	logger.Ctx(ctx).Debug().Str("order", orderCtx.OrderID).Msg("saga step 1: validate shipping details")

	if err := orderCtx.Shipping.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid shipping details")
		return err
	}

	items, err := orderCtx.Cart.Items(ctx, orderCtx.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load cart")
		return err
	}
	if len(items) == 0 {
		return domain.ErrEmptyCart
	}
	orderCtx.CartItems = items
	span.SetAttributes(attribute.Int("cart.lines", len(items)))

	return h.executeNext(orderCtx)
}
