// Package client shows the engine at a call site: it sends the requests a
// protocol.Factory builds through a Transport and turns the responses back
// into output values or exceptions.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/zero-day-ai/protocol"
	"github.com/zero-day-ai/protocol/exception"
	"github.com/zero-day-ai/protocol/model"
	"github.com/zero-day-ai/protocol/shape"
)

// ErrUnknownOperation is returned by Call for names the model does not define.
var ErrUnknownOperation = errors.New("unknown operation")

// Client invokes the operations of one service.
//
// Thread-safety: All methods are safe for concurrent use.
type Client struct {
	factory   *protocol.Factory
	transport Transport
	endpoint  *url.URL
	model     *model.Model
	logger    *slog.Logger

	// handlers caches the marshaller and success handler of each operation.
	handlers sync.Map // *shape.Operation -> *opHandlers
}

type opHandlers struct {
	marshal *protocol.RequestMarshaller
	success *protocol.SuccessHandler
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the transport. The default is an HTTPTransport with
// default settings.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithModel lets Call look operations up by name.
func WithModel(m *model.Model) Option {
	return func(c *Client) {
		c.model = m
	}
}

// New creates a client for the service at endpoint.
func New(f *protocol.Factory, endpoint string, opts ...Option) (*Client, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil factory", protocol.ErrInvalidConfig)
	}
	u, err := (&Config{Endpoint: endpoint}).EndpointURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protocol.ErrInvalidConfig, err)
	}

	c := &Client{factory: f, endpoint: u}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = f.Logger()
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil, c.logger)
	}
	return c, nil
}

// NewFromConfig loads the service model named by cfg, builds its factory
// and returns a client using an HTTPTransport configured from cfg.
// factories and opts are passed to protocol.NewFactoryFromModel.
func NewFromConfig(cfg *Config, factories map[string]exception.Factory, opts ...protocol.Option) (*Client, error) {
	if cfg == nil || cfg.Model == "" {
		return nil, fmt.Errorf("%w: config needs a model path", protocol.ErrInvalidConfig)
	}
	m, err := model.Load(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	f, err := protocol.NewFactoryFromModel(m, factories, opts...)
	if err != nil {
		return nil, err
	}
	return New(f, cfg.Endpoint,
		WithModel(m),
		WithTransport(NewHTTPTransport(cfg, f.Logger())),
	)
}

// Factory returns the protocol factory of the client.
func (c *Client) Factory() *protocol.Factory {
	return c.factory
}

// Invoke sends in as a request of op and fills out from a successful
// response. A failed response is returned as the exception the error
// handler produced; use errors.As to reach the modeled type.
func (c *Client) Invoke(ctx context.Context, op *shape.Operation, in, out any) error {
	h, err := c.handlersFor(op)
	if err != nil {
		return err
	}

	req, err := h.marshal.Marshal(ctx, in)
	if err != nil {
		return err
	}

	resp, err := c.transport.RoundTrip(ctx, req, c.endpoint)
	if err != nil {
		return fmt.Errorf("%s: %w", op.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		exc := c.factory.ErrorHandler().Handle(ctx, resp)
		c.logger.Debug("operation failed",
			"operation", op.Name,
			"code", exc.ErrorDetails().Code,
			"status", resp.StatusCode)
		return exc
	}

	meta, err := h.success.Handle(ctx, resp, out)
	if err != nil {
		return err
	}
	c.logger.Debug("operation succeeded",
		"operation", op.Name,
		"request_id", meta.RequestID)
	return nil
}

// Call invokes the model operation with the given name.
func (c *Client) Call(ctx context.Context, name string, in, out any) error {
	if c.model == nil {
		return fmt.Errorf("%w: %s (client has no model)", ErrUnknownOperation, name)
	}
	op, ok := c.model.Operation(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return c.Invoke(ctx, op, in, out)
}

func (c *Client) handlersFor(op *shape.Operation) (*opHandlers, error) {
	if op == nil {
		return nil, protocol.ErrNilOperation
	}
	if h, ok := c.handlers.Load(op); ok {
		return h.(*opHandlers), nil
	}

	marshal, err := c.factory.BuildRequestMarshaller(op)
	if err != nil {
		return nil, err
	}
	success, err := c.factory.BuildSuccessHandler(op)
	if err != nil {
		return nil, err
	}
	h, _ := c.handlers.LoadOrStore(op, &opHandlers{marshal: marshal, success: success})
	return h.(*opHandlers), nil
}
