package protocol

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/zero-day-ai/protocol/exception"
	"github.com/zero-day-ai/protocol/shape"
)

// Factory builds the request marshallers and response handlers of one
// service. It is immutable after NewFactory returns and safe for concurrent
// use; the handlers it builds are as well.
type Factory struct {
	dialect      Dialect
	registry     *exception.Registry
	serviceName  string
	apiVersion   string
	targetPrefix string
	tokens       func() string

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics

	errorHandler *ErrorHandler
}

// NewFactory creates a Factory from the given options.
//
// Example:
//
//	f, err := protocol.NewFactory(
//	    protocol.WithDialect(protocol.Query),
//	    protocol.WithAPIVersion("2012-11-05"),
//	    protocol.WithServiceName("sqs"),
//	    protocol.WithException("AWS.SimpleQueueService.NonExistentQueue", queueMissingShape, newQueueMissing),
//	)
func NewFactory(opts ...Option) (*Factory, error) {
	cfg := &factoryConfig{dialect: Query}
	for _, opt := range opts {
		opt(cfg)
	}

	// Create default logger if not provided
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	if cfg.tracer == nil {
		cfg.tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if cfg.meter == nil {
		cfg.meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	if !cfg.tokensSet {
		cfg.tokens = uuid.NewString
	}

	if err := cfg.dialect.validate(); err != nil {
		return nil, newError("NewFactory", KindConfiguration,
			fmt.Errorf("%w: dialect %q", err, cfg.dialect.Name))
	}
	if cfg.dialect.IsJSON() && cfg.targetPrefix == "" {
		return nil, newError("NewFactory", KindConfiguration,
			fmt.Errorf("%w: JSON dialects need a target prefix", ErrInvalidConfig))
	}

	registry, err := exception.NewRegistry(cfg.defaultEntry, cfg.entries...)
	if err != nil {
		return nil, newError("NewFactory", KindConfiguration, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	m, err := newMetrics(cfg.meter)
	if err != nil {
		return nil, newError("NewFactory", KindConfiguration, err)
	}

	f := &Factory{
		dialect:      cfg.dialect,
		registry:     registry,
		serviceName:  cfg.serviceName,
		apiVersion:   cfg.apiVersion,
		targetPrefix: cfg.targetPrefix,
		tokens:       cfg.tokens,
		logger:       cfg.logger,
		tracer:       cfg.tracer,
		metrics:      m,
	}
	f.errorHandler = &ErrorHandler{
		dialect:     f.dialect,
		registry:    f.registry,
		serviceName: f.serviceName,
		logger:      f.logger,
		tracer:      f.tracer,
		metrics:     f.metrics,
	}

	f.logger.Debug("protocol factory created",
		"dialect", f.dialect.Name,
		"service", f.serviceName,
		"exceptions", registry.Len())
	return f, nil
}

// Dialect returns the dialect of the factory.
func (f *Factory) Dialect() Dialect {
	return f.dialect
}

// ServiceName returns the configured service name.
func (f *Factory) ServiceName() string {
	return f.serviceName
}

// Registry returns the exception registry.
func (f *Factory) Registry() *exception.Registry {
	return f.registry
}

// Logger returns the factory's logger.
func (f *Factory) Logger() *slog.Logger {
	return f.logger
}

// ErrorHandler returns the error handler shared by every operation.
func (f *Factory) ErrorHandler() *ErrorHandler {
	return f.errorHandler
}

// BuildRequestMarshaller returns a marshaller for op.
func (f *Factory) BuildRequestMarshaller(op *shape.Operation) (*RequestMarshaller, error) {
	if op == nil {
		return nil, newError("BuildRequestMarshaller", KindConfiguration, ErrNilOperation)
	}
	return &RequestMarshaller{
		op:           op,
		dialect:      f.dialect,
		apiVersion:   f.apiVersion,
		targetPrefix: f.targetPrefix,
		tokens:       f.tokens,
		tracer:       f.tracer,
	}, nil
}

// BuildSuccessHandler returns the success handler for op.
func (f *Factory) BuildSuccessHandler(op *shape.Operation) (*SuccessHandler, error) {
	if op == nil {
		return nil, newError("BuildSuccessHandler", KindConfiguration, ErrNilOperation)
	}
	return &SuccessHandler{
		op:      op,
		dialect: f.dialect,
		logger:  f.logger,
		tracer:  f.tracer,
		metrics: f.metrics,
	}, nil
}
