// internal/service/notification/interfaces/event_consumer.go
package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/mq"
	"solitaire/internal/service/notification/application"
	"solitaire/internal/service/notification/domain"
)

// MessageReader 是 kafka.Reader 的最小抽象
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventConsumer 是一个驱动适配器，监听订单事件并驱动通知服务
type EventConsumer struct {
	name    string
	reader  MessageReader
	svc     *application.NotificationService
	failure *mq.FailureHandler
	delay   time.Duration
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEventConsumer 创建一个新的 Kafka 消费者适配器，name 用于日志
func NewEventConsumer(name string, reader MessageReader, svc *application.NotificationService, failure *mq.FailureHandler) *EventConsumer {
	return &EventConsumer{name: name, reader: reader, svc: svc, failure: failure}
}

// SetDelay 设置消息最早被处理的时间 (相对写入时间)，用于重试 topic
func (a *EventConsumer) SetDelay(d time.Duration) {
	a.delay = d
}

// Start 在后台开始消费，直到 Stop 或 ctx 被取消
func (a *EventConsumer) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Str("consumer", a.name).Msg("✅ kafka consumer started")
		for {
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Str("consumer", a.name).Msg("🛑 kafka consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Str("consumer", a.name).Msg("could not read message, retrying")
				if !sleep(ctx, time.Second) {
					return
				}
				continue
			}

			if a.delay > 0 && !msg.Time.IsZero() {
				if !sleep(ctx, time.Until(msg.Time.Add(a.delay))) {
					return
				}
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			if err := a.process(msgCtx, msg); err != nil {
				a.failure.Handle(msgCtx, msg, err)
			}

			// 无论成功或已移交失败处理器，都提交 offset
			if err := a.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("consumer", a.name).Msg("failed to commit message")
			}
		}
	}()
}

// Stop 优雅地停止消费者
func (a *EventConsumer) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	return a.reader.Close()
}

func (a *EventConsumer) process(ctx context.Context, msg kafka.Message) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return errors.Wrap(err, "decode order event")
	}
	return a.svc.HandleOrderEvent(ctx, &event)
}

// sleep 等待 d，ctx 取消时返回 false
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
