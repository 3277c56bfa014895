package protocol

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/protocol/codec"
	"github.com/zero-day-ai/protocol/document"
	"github.com/zero-day-ai/protocol/shape"
)

// SuccessHandler unmarshals successful responses of one operation.
type SuccessHandler struct {
	op      *shape.Operation
	dialect Dialect
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics
}

// Operation returns the operation the handler was built for.
func (h *SuccessHandler) Operation() *shape.Operation {
	return h.op
}

// Handle fills out from resp and returns the response metadata. out must be
// a non-nil pointer, or nil to only read the metadata. Header members of the
// output are read from the response headers; a streaming output member
// receives a reader over the body instead of the body being parsed.
func (h *SuccessHandler) Handle(ctx context.Context, resp *RawResponse, out any) (meta ResponseMetadata, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if resp == nil {
		resp = &RawResponse{}
	}
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, spanSuccessHandle, trace.WithAttributes(
		attrOperation.String(h.op.Name),
		attrDialect.String(h.dialect.Name),
		attrStatusCode.Int(resp.StatusCode),
	))
	defer func() {
		endSpan(span, err)
		h.metrics.recordHandled(ctx, h.dialect.Name, h.op.Name, err, start)
	}()

	meta.StatusCode = resp.StatusCode
	meta.RequestID = requestID(resp)

	output := h.op.Output
	if output != nil && out != nil {
		if err := codec.DecodeHeaders(output, resp.Header, out, false); err != nil {
			return meta, h.wrap(err)
		}
	}

	if h.op.HasStreamingOutput() {
		if out != nil {
			if err := codec.SetStreamingPayload(output, out, bytes.NewReader(resp.Body)); err != nil {
				return meta, h.wrap(err)
			}
		}
		return meta, nil
	}

	doc, err := h.dialect.parse(resp.Body)
	if err != nil {
		return meta, h.wrap(err)
	}
	if meta.RequestID == "" {
		meta.RequestID = requestID(resp, doc.Root())
	}
	if output == nil || out == nil {
		return meta, nil
	}

	payload := h.payload(doc)
	u := codec.Unmarshaller{Format: h.dialect.Format}
	if err := u.Unmarshal(output, payload, out); err != nil {
		return meta, h.wrap(err)
	}
	return meta, nil
}

func (h *SuccessHandler) wrap(err error) error {
	return newError("SuccessHandler.Handle", KindConfiguration, err).
		WithContext(map[string]any{"operation": h.op.Name})
}

// payload selects the node holding the output members.
//
// With a result wrapper the <Op>Result element is used when present,
// wherever it sits: as the root or directly under it. Otherwise the root
// element holds the members, unless the root element is itself one of the
// output members, in which case the whole document does.
func (h *SuccessHandler) payload(doc *document.Node) *document.Node {
	if h.dialect.IsJSON() {
		return doc
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	if h.dialect.ResultWrapper {
		wrapper := h.op.ResultWrapper()
		if root.Name == wrapper {
			return root
		}
		if c := root.Child(wrapper); c != nil {
			return c
		}
	}
	if h.isOutputMember(root.Name) {
		return doc
	}
	return root
}

func (h *SuccessHandler) isOutputMember(name string) bool {
	for _, m := range h.op.Output.Members {
		if m.Location == shape.LocationBody && m.LocationName() == name {
			return true
		}
	}
	return false
}
