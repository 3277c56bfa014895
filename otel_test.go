package protocol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedFactory(t *testing.T) (*Factory, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	f := newTestFactory(t,
		WithTracer(tp.Tracer("protocol-test")),
		WithMeter(metricnoop.NewMeterProvider().Meter("protocol-test")),
	)
	return f, recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestErrorHandlerSpan(t *testing.T) {
	f, recorder := tracedFactory(t)

	f.ErrorHandler().Handle(context.Background(),
		xmlResponse(400, `<ErrorResponse><Error><Code>Throttled</Code></Error></ErrorResponse>`))
	f.ErrorHandler().Handle(context.Background(),
		xmlResponse(500, `<ErrorResponse><Error><Code>Other</Code></Error></ErrorResponse>`))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	first := spans[0]
	assert.Equal(t, spanErrorHandle, first.Name())
	assert.Equal(t, codes.Error, first.Status().Code)
	attrs := spanAttrs(first)
	assert.Equal(t, "Throttled", attrs[attrErrorCode].AsString())
	assert.True(t, attrs[attrModeled].AsBool())
	assert.Equal(t, int64(400), attrs[attrStatusCode].AsInt64())
	assert.Equal(t, "query", attrs[attrDialect].AsString())

	second := spanAttrs(spans[1])
	assert.Equal(t, "Other", second[attrErrorCode].AsString())
	assert.False(t, second[attrModeled].AsBool())
}

func TestErrorHandlerSpanRecordsParseFailure(t *testing.T) {
	f, recorder := tracedFactory(t)

	f.ErrorHandler().Handle(context.Background(), xmlResponse(502, `<html>`))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestSuccessAndMarshalSpans(t *testing.T) {
	f, recorder := tracedFactory(t)
	op := getQueueURLOperation()

	_, err := marshaller(t, f, op).Marshal(context.Background(), map[string]any{"QueueName": "jobs"})
	require.NoError(t, err)

	var out queueURLOutput
	_, err = successHandler(t, f, op).Handle(context.Background(),
		xmlResponse(200, `<GetQueueUrlResult><QueueUrl>u</QueueUrl></GetQueueUrlResult>`), &out)
	require.NoError(t, err)

	_, err = successHandler(t, f, op).Handle(context.Background(), xmlResponse(200, `<oops`), &out)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, spanMarshal, spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, "GetQueueUrl", spanAttrs(spans[0])[attrOperation].AsString())

	assert.Equal(t, spanSuccessHandle, spans[1].Name())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)

	assert.Equal(t, spanSuccessHandle, spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}

func TestNewMetricsWithNoopMeter(t *testing.T) {
	m, err := newMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.recordDispatch(context.Background(), "query", "Throttled", true, time.Now())
		m.recordHandled(context.Background(), "query", "GetQueueUrl", nil, time.Now())
	})
}
