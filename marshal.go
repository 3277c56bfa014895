package protocol

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/protocol/codec"
	"github.com/zero-day-ai/protocol/shape"
)

// RequestMarshaller turns input values of one operation into wire requests.
type RequestMarshaller struct {
	op           *shape.Operation
	dialect      Dialect
	apiVersion   string
	targetPrefix string
	tokens       func() string
	tracer       trace.Tracer
}

// Operation returns the operation the marshaller was built for.
func (m *RequestMarshaller) Operation() *shape.Operation {
	return m.op
}

// Marshal encodes in, a struct, string-keyed map or pointer to either, as a
// wire request. in is never modified; generated idempotency tokens only
// appear in the request.
func (m *RequestMarshaller) Marshal(ctx context.Context, in any) (req *WireRequest, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := m.tracer.Start(ctx, spanMarshal, trace.WithAttributes(
		attrOperation.String(m.op.Name),
		attrDialect.String(m.dialect.Name),
	))
	defer func() { endSpan(span, err) }()

	req = &WireRequest{
		Operation: m.op.Name,
		Method:    m.op.Method(),
		Path:      m.op.Path(),
		Header:    http.Header{},
		Query:     url.Values{},
	}

	input := m.op.Input
	req.HostPrefix, err = m.op.ResolveHostPrefix(func(label string) (string, bool) {
		return codec.MemberString(input, in, label)
	})
	if err != nil {
		return nil, m.wrap(fmt.Errorf("%w: %v", ErrMissingHostLabel, err))
	}

	if err := codec.EncodeHeaders(input, in, req.Header); err != nil {
		return nil, m.wrap(err)
	}

	if m.op.HasStreamingInput() {
		if err := m.marshalStreaming(req, in); err != nil {
			return nil, m.wrap(err)
		}
		return req, nil
	}

	if m.dialect.IsJSON() {
		err = m.marshalJSON(req, in)
	} else {
		err = m.marshalQuery(req, in)
	}
	if err != nil {
		return nil, m.wrap(err)
	}
	return req, nil
}

func (m *RequestMarshaller) marshalQuery(req *WireRequest, in any) error {
	params := m.actionParams()
	enc := codec.QueryEncoder{EC2: m.dialect.EC2Names, Token: m.tokens}
	if err := enc.Encode(m.op.Input, in, params); err != nil {
		return err
	}
	req.Body = []byte(params.Encode())
	req.Header.Set("Content-Type", m.dialect.ContentType())
	return nil
}

func (m *RequestMarshaller) marshalJSON(req *WireRequest, in any) error {
	body, err := codec.JSONEncoder{Token: m.tokens}.Encode(m.op.Input, in)
	if err != nil {
		return err
	}
	req.Body = body
	req.Header.Set("Content-Type", m.dialect.ContentType())
	req.Header.Set("X-Amz-Target", m.targetPrefix+"."+m.op.Name)
	return nil
}

// marshalStreaming sends the structural members as URL parameters and the
// stream member as the payload.
func (m *RequestMarshaller) marshalStreaming(req *WireRequest, in any) error {
	if m.dialect.IsJSON() {
		req.Header.Set("X-Amz-Target", m.targetPrefix+"."+m.op.Name)
	} else {
		req.Query = m.actionParams()
	}

	enc := codec.QueryEncoder{EC2: m.dialect.EC2Names, Token: m.tokens}
	if err := enc.Encode(m.op.Input, in, req.Query); err != nil {
		return err
	}

	if payload, ok := codec.StreamingPayload(m.op.Input, in); ok {
		req.Payload = payload
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	return nil
}

func (m *RequestMarshaller) actionParams() url.Values {
	params := url.Values{"Action": {m.op.Name}}
	if m.apiVersion != "" {
		params.Set("Version", m.apiVersion)
	}
	return params
}

func (m *RequestMarshaller) wrap(err error) error {
	return newError("RequestMarshaller.Marshal", KindMarshal, err).
		WithContext(map[string]any{"operation": m.op.Name})
}
