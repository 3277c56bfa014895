package protocol

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/protocol/exception"
	"github.com/zero-day-ai/protocol/shape"
)

// Option configures a Factory.
type Option func(*factoryConfig)

// factoryConfig holds the options collected by NewFactory.
type factoryConfig struct {
	dialect      Dialect
	entries      []exception.Entry
	defaultEntry exception.Entry
	serviceName  string
	apiVersion   string
	targetPrefix string
	logger       *slog.Logger
	tracer       trace.Tracer
	meter        metric.Meter
	tokens       func() string
	tokensSet    bool
}

// WithDialect selects the wire protocol variant. The default is Query.
func WithDialect(d Dialect) Option {
	return func(c *factoryConfig) {
		c.dialect = d
	}
}

// WithException registers a modeled exception for an error code.
// s describes the modeled members of the error body and may be nil.
// Registering the same code twice makes NewFactory fail.
func WithException(code string, s *shape.Shape, factory exception.Factory) Option {
	return func(c *factoryConfig) {
		c.entries = append(c.entries, exception.Entry{Code: code, Shape: s, New: factory})
	}
}

// WithDefaultException sets the exception used for unregistered codes.
// Without it, a *exception.ServiceException is returned.
func WithDefaultException(s *shape.Shape, factory exception.Factory) Option {
	return func(c *factoryConfig) {
		c.defaultEntry = exception.Entry{Shape: s, New: factory}
	}
}

// WithServiceName sets the service name reported in exception details.
func WithServiceName(name string) Option {
	return func(c *factoryConfig) {
		c.serviceName = name
	}
}

// WithAPIVersion sets the Version parameter of query requests.
func WithAPIVersion(version string) Option {
	return func(c *factoryConfig) {
		c.apiVersion = version
	}
}

// WithTargetPrefix sets the prefix of the X-Amz-Target header of JSON
// requests, e.g. "DynamoDB_20120810".
func WithTargetPrefix(prefix string) Option {
	return func(c *factoryConfig) {
		c.targetPrefix = prefix
	}
}

// WithLogger sets a custom logger.
// If not provided, a JSON logger writing to stdout at info level is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *factoryConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for the handlers and marshallers.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *factoryConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for the factory's instruments.
func WithMeter(meter metric.Meter) Option {
	return func(c *factoryConfig) {
		c.meter = meter
	}
}

// WithIdempotencyTokens sets the generator used to fill empty idempotency
// token members. The default generates random UUIDs; nil disables filling.
func WithIdempotencyTokens(generate func() string) Option {
	return func(c *factoryConfig) {
		c.tokens = generate
		c.tokensSet = true
	}
}
