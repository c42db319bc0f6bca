package saga

import (
	"go.opentelemetry.io/otel/attribute"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/order/domain"
)

// NotificationHandler 是 Saga 流程的最后一步，发布 OrderPlaced 事件。
type NotificationHandler struct {
	NextHandler
}

func (h *NotificationHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.Notification")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.event", string(domain.EventOrderPlaced)),
	)

	// 发送通知失败是非关键路径，只记录错误
	event := domain.NewOrderPlaced(orderCtx.NewID(), orderCtx.Order)
	if err := orderCtx.Publisher.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order", orderCtx.OrderID).Msg("failed to publish order placed event")
		span.RecordError(err)
	}

	return h.executeNext(orderCtx)
}
