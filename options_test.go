package protocol

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/zero-day-ai/protocol/exception"
	"github.com/zero-day-ai/protocol/shape"
)

func TestFactoryOptions(t *testing.T) {
	t.Run("WithDialect", func(t *testing.T) {
		cfg := &factoryConfig{}
		WithDialect(EC2)(cfg)
		assert.Equal(t, "ec2", cfg.dialect.Name)
	})

	t.Run("WithException", func(t *testing.T) {
		s := shape.Exception("Throttled")
		cfg := &factoryConfig{}
		WithException("Throttled", s, exception.NewServiceException)(cfg)
		WithException("Other", nil, nil)(cfg)

		require.Len(t, cfg.entries, 2)
		assert.Equal(t, "Throttled", cfg.entries[0].Code)
		assert.Same(t, s, cfg.entries[0].Shape)
		assert.Equal(t, "Other", cfg.entries[1].Code)
	})

	t.Run("WithDefaultException", func(t *testing.T) {
		s := shape.Structure("Generic")
		cfg := &factoryConfig{}
		WithDefaultException(s, exception.NewServiceException)(cfg)
		assert.Same(t, s, cfg.defaultEntry.Shape)
		assert.NotNil(t, cfg.defaultEntry.New)
	})

	t.Run("strings", func(t *testing.T) {
		cfg := &factoryConfig{}
		WithServiceName("sqs")(cfg)
		WithAPIVersion("2012-11-05")(cfg)
		WithTargetPrefix("DynamoDB_20120810")(cfg)
		assert.Equal(t, "sqs", cfg.serviceName)
		assert.Equal(t, "2012-11-05", cfg.apiVersion)
		assert.Equal(t, "DynamoDB_20120810", cfg.targetPrefix)
	})

	t.Run("WithLogger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		cfg := &factoryConfig{}
		WithLogger(logger)(cfg)
		assert.Same(t, logger, cfg.logger)
	})

	t.Run("telemetry", func(t *testing.T) {
		tracer := tracenoop.NewTracerProvider().Tracer("test")
		meter := metricnoop.NewMeterProvider().Meter("test")
		cfg := &factoryConfig{}
		WithTracer(tracer)(cfg)
		WithMeter(meter)(cfg)
		assert.Equal(t, tracer, cfg.tracer)
		assert.Equal(t, meter, cfg.meter)
	})

	t.Run("WithIdempotencyTokens", func(t *testing.T) {
		cfg := &factoryConfig{}
		WithIdempotencyTokens(func() string { return "t" })(cfg)
		assert.True(t, cfg.tokensSet)
		assert.Equal(t, "t", cfg.tokens())

		WithIdempotencyTokens(nil)(cfg)
		assert.True(t, cfg.tokensSet)
		assert.Nil(t, cfg.tokens)
	})
}
