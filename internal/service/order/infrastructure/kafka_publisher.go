package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"solitaire/internal/pkg/mq"
	"solitaire/internal/service/order/domain"
)

// HeaderEventType 让消费者无需解析消息体即可路由
const HeaderEventType = "event-type"

// OrderEventPublisher 把订单事件写入 order-events 主题，以 user_id 作为 key 保证同一用户的事件有序
type OrderEventPublisher struct {
	writer mq.MessageWriter
}

func NewOrderEventPublisher(writer mq.MessageWriter) *OrderEventPublisher {
	return &OrderEventPublisher{writer: writer}
}

// Publish 实现了 domain.EventPublisher 接口
func (p *OrderEventPublisher) Publish(ctx context.Context, event *domain.OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}
	header := kafka.Header{Key: HeaderEventType, Value: []byte(event.Type)}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.UserID), value, header); err != nil {
		return errors.Wrapf(err, "publish %s for order %s", event.Type, event.OrderID)
	}
	return nil
}
