package mq

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func header(msg kafka.Message, key string) string {
	c := KafkaHeaderCarrier(msg.Headers)
	return c.Get(key)
}

func TestFailureHandler_RetryThenDLT(t *testing.T) {
	retry, dlt := &recordingWriter{}, &recordingWriter{}
	h := NewFailureHandler(retry, dlt, 3)
	msg := kafka.Message{Topic: "order-events", Partition: 2, Offset: 41, Key: []byte("u1"), Value: []byte("{}")}

	h.Handle(context.Background(), msg, errors.New("boom"))
	require.Len(t, retry.msgs, 1)
	assert.Equal(t, "1", header(retry.msgs[0], HeaderRetryCount))

	h.Handle(context.Background(), retry.msgs[0], errors.New("boom"))
	require.Len(t, retry.msgs, 2)
	assert.Equal(t, "2", header(retry.msgs[1], HeaderRetryCount))
	assert.Empty(t, dlt.msgs)

	third := retry.msgs[1]
	third.Topic, third.Partition, third.Offset = "order-events-retry", 0, 7
	h.Handle(context.Background(), third, errors.New("boom"))
	require.Len(t, dlt.msgs, 1)
	dead := dlt.msgs[0]
	assert.Equal(t, "order-events-retry", header(dead, HeaderOriginalTopic))
	assert.Equal(t, "7", header(dead, HeaderOriginalOffset))
	assert.Equal(t, "boom", header(dead, HeaderExceptionMessage))
	assert.Equal(t, "3", header(dead, HeaderRetryCount))
	assert.Equal(t, []byte("u1"), dead.Key)
}

func TestFailureHandler_RetryWriterFailureFallsBackToDLT(t *testing.T) {
	retry, dlt := &recordingWriter{err: errors.New("broker down")}, &recordingWriter{}
	h := NewFailureHandler(retry, dlt, 5)

	h.Handle(context.Background(), kafka.Message{Topic: "order-events"}, errors.New("boom"))
	assert.Len(t, dlt.msgs, 1)
}

func TestKafkaHeaderCarrier(t *testing.T) {
	c := KafkaHeaderCarrier{}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "k=v")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent", "baggage"}, c.Keys())
	assert.Equal(t, "", c.Get("missing"))
}
