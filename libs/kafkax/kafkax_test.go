package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	meta := ExtractEventMeta(kafka.Message{Topic: "cleaning.slot.booked.v1", Key: []byte("k1")})
	assert.Equal(t, "k1", meta.EventID)
	assert.Equal(t, "cleaning.slot.booked.v1", meta.EventType)
}

func TestMessageCarriesMetaAndTrace(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled, Remote: true,
	}))

	msg := Message(ctx, "topic", EventMeta{EventID: "e1", EventType: "cleaning.slot.booked.v1"}, "sched-1", []byte(`{}`))
	assert.Equal(t, "e1", HeaderValue(msg.Headers, HeaderEventID))
	assert.NotEmpty(t, HeaderValue(msg.Headers, "traceparent"))

	restored := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), msg))
	require.True(t, restored.IsValid())
	assert.Equal(t, traceID, restored.TraceID())
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092"))
	assert.Nil(t, SplitBrokers(""))
}

func TestReadyCheckWithoutBrokers(t *testing.T) {
	assert.ErrorIs(t, ReadyCheck(" , ")(context.Background()), ErrNoBrokers)
}
