package saga

import (
	"solitaire/internal/pkg/logger"
)

// ClearCartHandler 清空购物车。订单已落库，失败只记录日志。
type ClearCartHandler struct {
	NextHandler
}

func (h *ClearCartHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ClearCart")
	defer span.End()

	if err := orderCtx.Cart.Clear(ctx, orderCtx.UserID); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Str("order", orderCtx.OrderID).Msg("failed to clear cart after checkout")
	}

	return h.executeNext(orderCtx)
}
