// internal/service/notification/interfaces/dlt_consumer.go
package interfaces

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"

	"solitaire/internal/pkg/logger"
	"solitaire/internal/pkg/mq"
)

// DLTConsumer 监听死信队列并记录日志
type DLTConsumer struct {
	reader MessageReader
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDLTConsumer(reader MessageReader) *DLTConsumer {
	return &DLTConsumer{reader: reader}
}

func (a *DLTConsumer) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Msg("✅ DLT consumer started")
		for {
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 DLT consumer shutting down")
					return
				}
				continue
			}

			logDeadLetter(mq.ExtractTraceContext(ctx, msg.Headers), msg)

			// 死信记录日志即视为已处理
			if err := a.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit dead letter")
			}
		}
	}()
}

func (a *DLTConsumer) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	return a.reader.Close()
}

func logDeadLetter(ctx context.Context, msg kafka.Message) {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	logger.Ctx(ctx).Error().
		Str("reason", "dead_letter_message_received").
		Str("original_topic", headers[mq.HeaderOriginalTopic]).
		Str("original_partition", headers[mq.HeaderOriginalPartition]).
		Str("original_offset", headers[mq.HeaderOriginalOffset]).
		Str("retry_count", headers[mq.HeaderRetryCount]).
		Str("exception_fqcn", headers[mq.HeaderExceptionFqcn]).
		Str("exception_message", headers[mq.HeaderExceptionMessage]).
		Str("key", string(msg.Key)).
		Str("value", string(msg.Value)).
		Msg("🚨 CRITICAL: dead letter message received")
}
