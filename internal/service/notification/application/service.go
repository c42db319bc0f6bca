// internal/service/notification/application/service.go
package application

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/metrics"
	"solitaire/internal/service/notification/domain"
)

// NotificationService 把订单事件转换为通知并推送给在线用户
type NotificationService struct {
	pusher   domain.Pusher
	presence domain.Presence // 可为 nil
	tracer   trace.Tracer
}

// NewNotificationService 创建通知服务
func NewNotificationService(pusher domain.Pusher, presence domain.Presence, tracer trace.Tracer) *NotificationService {
	return &NotificationService{pusher: pusher, presence: presence, tracer: tracer}
}

// HandleOrderEvent 处理一条订单事件。
// 返回错误表示消息需要重试，用户不在线不算失败。
func (s *NotificationService) HandleOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	ctx, span := s.tracer.Start(ctx, "service.HandleOrderEvent", trace.WithAttributes(
		attribute.String("event.type", event.Type),
		attribute.String("order.id", event.OrderID),
	))
	defer span.End()

	n, err := domain.Render(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	delivered := s.pusher.Push(n.UserID, payload)
	span.SetAttributes(attribute.Int("notification.connections", delivered))
	if delivered > 0 {
		metrics.NotificationsPushed.WithLabelValues("delivered").Inc()
		logger.Ctx(ctx).Info().Str("user_id", n.UserID).Str("order_id", n.OrderID).Int("connections", delivered).
			Msg("notification pushed")
		return nil
	}

	metrics.NotificationsPushed.WithLabelValues("offline").Inc()
	l := logger.Ctx(ctx).Info().Str("user_id", n.UserID).Str("order_id", n.OrderID).Str("title", n.Title)
	if s.presence != nil {
		node, online, err := s.presence.Lookup(ctx, n.UserID)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", n.UserID).Msg("presence lookup failed")
		} else if online {
			l = l.Str("node", node)
		}
	}
	l.Msg("user not connected to this node, notification logged only")
	return nil
}
