package protocol

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the tracer and meter name used when the caller
// supplies providers rather than ready-made instruments.
const instrumentationName = "github.com/zero-day-ai/protocol"

// Span names.
const (
	spanErrorHandle   = "protocol.error.handle"
	spanSuccessHandle = "protocol.response.handle"
	spanMarshal       = "protocol.request.marshal"
)

// Attribute keys.
const (
	attrOperation  = attribute.Key("protocol.operation")
	attrDialect    = attribute.Key("protocol.dialect")
	attrErrorCode  = attribute.Key("error.code")
	attrModeled    = attribute.Key("modeled")
	attrStatusCode = attribute.Key("http.response.status_code")
	attrOutcome    = attribute.Key("outcome")
)

// metrics holds the metric instruments of a factory. They are created once
// in NewFactory and shared by every handler the factory builds.
type metrics struct {
	// dispatched counts error responses by resolved code.
	dispatched metric.Int64Counter

	// handled counts successful responses by operation and outcome.
	handled metric.Int64Counter

	// duration records handler latency in milliseconds.
	duration metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.dispatched, err = meter.Int64Counter(
		"protocol.error.dispatched",
		metric.WithDescription("Error responses turned into exceptions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create dispatched counter: %w", err)
	}

	m.handled, err = meter.Int64Counter(
		"protocol.response.handled",
		metric.WithDescription("Successful responses unmarshalled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create handled counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"protocol.handle.duration",
		metric.WithDescription("Time spent turning a response into a value"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return m, nil
}

func (m *metrics) recordDispatch(ctx context.Context, dialect, code string, modeled bool, start time.Time) {
	attrs := metric.WithAttributes(
		attrDialect.String(dialect),
		attrErrorCode.String(code),
		attrModeled.Bool(modeled),
	)
	m.dispatched.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(
		attrDialect.String(dialect),
		attrOutcome.String("error"),
	))
}

func (m *metrics) recordHandled(ctx context.Context, dialect, op string, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.handled.Add(ctx, 1, metric.WithAttributes(
		attrDialect.String(dialect),
		attrOperation.String(op),
		attrOutcome.String(outcome),
	))
	m.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(
		attrDialect.String(dialect),
		attrOutcome.String(outcome),
	))
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
