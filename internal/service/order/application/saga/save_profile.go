package saga

import (
	"solitaire/internal/pkg/logger"
)

// SaveProfileHandler 在订单落库后把收货信息写回用户资料。非关键步骤，失败只记录日志。
type SaveProfileHandler struct {
	NextHandler
}

func (h *SaveProfileHandler) Handle(orderCtx *OrderContext) error {
	if !orderCtx.SaveInfo || orderCtx.Profiles == nil {
		return h.executeNext(orderCtx)
	}

	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.SaveProfile")
	defer span.End()

	if err := orderCtx.Profiles.SaveShipping(ctx, orderCtx.UserID, orderCtx.Shipping); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Str("order", orderCtx.OrderID).Msg("failed to save shipping details to profile")
	}

	return h.executeNext(orderCtx)
}
