package tracing

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestSamplerFor(t *testing.T) {
	always := sdktrace.AlwaysSample().Description()
	assert.Equal(t, always, samplerFor(0).Description())
	assert.Equal(t, always, samplerFor(1).Description())
	assert.Equal(t, always, samplerFor(-2).Description())
	assert.Equal(t,
		sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description(),
		samplerFor(0.25).Description())
}

func TestPropagatorCarriesTraceAndBaggage(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "checkout")
	defer span.End()
	member, err := baggage.NewMember("channel", "web")
	require.NoError(t, err)
	bag, err := baggage.New(member)
	require.NoError(t, err)
	ctx = baggage.ContextWithBaggage(ctx, bag)

	header := http.Header{}
	Propagator().Inject(ctx, propagation.HeaderCarrier(header))
	assert.NotEmpty(t, header.Get("traceparent"))

	out := Propagator().Extract(context.Background(), propagation.HeaderCarrier(header))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(out).TraceID())
	assert.Equal(t, "web", baggage.FromContext(out).Member("channel").Value())
}
