// internal/pkg/mq/failure.go
package mq

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"solitaire/internal/pkg/logger"
)

// 死信与重试消息携带的头部
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderExceptionFqcn     = "x-exception-fqcn"
	HeaderExceptionMessage  = "x-exception-message"
	HeaderRetryCount        = "x-retry-count"
)

// FailureHandler 处理消费失败的消息：未超过最大次数时投递到重试 topic，否则投递到死信 topic
type FailureHandler struct {
	retryWriter MessageWriter
	dltWriter   MessageWriter
	maxAttempts int
}

// NewFailureHandler 创建失败处理器，maxAttempts 为包括首次消费在内的总处理次数
func NewFailureHandler(retryWriter, dltWriter MessageWriter, maxAttempts int) *FailureHandler {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FailureHandler{retryWriter: retryWriter, dltWriter: dltWriter, maxAttempts: maxAttempts}
}

// Handle 根据已重试次数把消息转投到重试或死信 topic
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, cause error) {
	attempts := RetryCount(msg) + 1

	out := kafka.Message{Key: msg.Key, Value: msg.Value}
	for _, hd := range msg.Headers {
		if hd.Key == HeaderRetryCount {
			continue
		}
		out.Headers = append(out.Headers, hd)
	}

	if attempts < h.maxAttempts && h.retryWriter != nil {
		out.Headers = append(out.Headers, kafka.Header{Key: HeaderRetryCount, Value: []byte(strconv.Itoa(attempts))})
		if err := h.retryWriter.WriteMessages(ctx, out); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("failed to publish message to retry topic, sending to DLT")
		} else {
			logger.Ctx(ctx).Warn().Err(cause).Int("attempt", attempts).Msg("message scheduled for retry")
			return
		}
	}

	out.Headers = append(out.Headers,
		kafka.Header{Key: HeaderRetryCount, Value: []byte(strconv.Itoa(attempts))},
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderExceptionFqcn, Value: []byte(fmt.Sprintf("%T", cause))},
		kafka.Header{Key: HeaderExceptionMessage, Value: []byte(cause.Error())},
	)
	if err := h.dltWriter.WriteMessages(ctx, out); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).
			Msg("🚨 failed to publish message to DLT, message is lost")
		return
	}
	logger.Ctx(ctx).Error().Err(cause).Int("attempts", attempts).Msg("message moved to DLT")
}

// RetryCount 返回消息已被重试的次数
func RetryCount(msg kafka.Message) int {
	for _, h := range msg.Headers {
		if h.Key == HeaderRetryCount {
			n, err := strconv.Atoi(string(h.Value))
			if err == nil {
				return n
			}
		}
	}
	return 0
}
