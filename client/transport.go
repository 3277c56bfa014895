package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/zero-day-ai/protocol"
)

// Transport sends a wire request and returns the complete response.
// Implementations must be safe for concurrent use.
type Transport interface {
	RoundTrip(ctx context.Context, req *protocol.WireRequest, endpoint *url.URL) (*protocol.RawResponse, error)
}

// HTTPTransport is a Transport over an *http.Client. Response bodies are
// read fully and closed before RoundTrip returns.
type HTTPTransport struct {
	Client *http.Client

	// Headers are added to every request unless the request sets them.
	Headers map[string]string

	UserAgent string

	// MaxResponseBytes caps the buffered body. Zero means no cap.
	MaxResponseBytes int64

	Logger *slog.Logger
}

// NewHTTPTransport creates an HTTPTransport configured from cfg.
func NewHTTPTransport(cfg *Config, logger *slog.Logger) *HTTPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	t := &HTTPTransport{
		Client:           &http.Client{Timeout: cfg.GetTimeout()},
		UserAgent:        cfg.GetUserAgent(),
		MaxResponseBytes: cfg.GetMaxResponseBytes(),
		Logger:           logger,
	}
	if cfg != nil {
		t.Headers = cfg.Headers
	}
	return t
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, req *protocol.WireRequest, endpoint *url.URL) (*protocol.RawResponse, error) {
	body, err := requestBody(req)
	if err != nil {
		return nil, err
	}

	target := req.URL(endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	for k, v := range t.Headers {
		if httpReq.Header.Get(k) == "" {
			httpReq.Header.Set(k, v)
		}
	}
	if t.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.UserAgent)
	}

	t.logger().Debug("sending request",
		"operation", req.Operation,
		"method", req.Method,
		"url", target.Redacted())

	resp, err := t.client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer protocol.CloseWithLog(resp.Body, t.logger(), "response body")

	data, err := t.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &protocol.RawResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (t *HTTPTransport) readBody(r io.Reader) ([]byte, error) {
	if t.MaxResponseBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, t.MaxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > t.MaxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", t.MaxResponseBytes)
	}
	return data, nil
}

func (t *HTTPTransport) client() *http.Client {
	if t.Client == nil {
		return http.DefaultClient
	}
	return t.Client
}

func (t *HTTPTransport) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

// requestBody returns the encoded body or the streaming payload of req.
func requestBody(req *protocol.WireRequest) (io.Reader, error) {
	if req.Payload == nil {
		if req.Body == nil {
			return nil, nil
		}
		return bytes.NewReader(req.Body), nil
	}
	switch p := req.Payload.(type) {
	case io.Reader:
		return p, nil
	case []byte:
		return bytes.NewReader(p), nil
	case string:
		return bytes.NewReader([]byte(p)), nil
	}
	return nil, fmt.Errorf("unsupported payload type %T", req.Payload)
}
