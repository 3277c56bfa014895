package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/protocol/codec"
	"github.com/zero-day-ai/protocol/document"
	"github.com/zero-day-ai/protocol/exception"
)

// ErrorHandler turns failed responses into exceptions. One handler serves
// every operation of a factory.
type ErrorHandler struct {
	dialect     Dialect
	registry    *exception.Registry
	serviceName string
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *metrics
}

// Handle returns the exception described by resp. It never fails: bodies
// that cannot be parsed, codes that are not registered and members that do
// not coerce all degrade to a less specific exception. The result is never
// nil.
func (h *ErrorHandler) Handle(ctx context.Context, resp *RawResponse) (exc exception.Exception) {
	if ctx == nil {
		ctx = context.Background()
	}
	if resp == nil {
		resp = &RawResponse{}
	}
	start := time.Now()
	ctx, span := h.tracer.Start(ctx, spanErrorHandle, trace.WithAttributes(
		attrDialect.String(h.dialect.Name),
		attrStatusCode.Int(resp.StatusCode),
	))

	var (
		code      string
		modeled   bool
		doc, root *document.Node
	)
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("error handler recovered from panic",
				"panic", fmt.Sprint(r),
				"status", resp.StatusCode)
			exc = h.fallback(ctx, resp, code, root, doc.Root())
			modeled = false
		}
		span.SetAttributes(attrErrorCode.String(code), attrModeled.Bool(modeled))
		span.SetStatus(codes.Error, exc.Error())
		span.End()
		h.metrics.recordDispatch(ctx, h.dialect.Name, code, modeled, start)
	}()

	doc, err := h.dialect.parse(resp.Body)
	if err != nil {
		h.logger.Warn("unparsable error response body",
			"dialect", h.dialect.Name,
			"status", resp.StatusCode,
			"error", err)
		span.RecordError(err)
		doc = nil
	}

	root = h.dialect.errorRoot(doc)
	if root == nil {
		root = doc.Root()
	}

	code = h.dialect.resolveCode()(resp, root)
	entry, modeled := h.registry.Lookup(code)
	h.logger.Debug("dispatching error response",
		"code", code,
		"modeled", modeled,
		"status", resp.StatusCode)

	exc = newException(entry)
	if entry.Shape != nil && root != nil {
		h.unmarshal(entry, root, exc)
	}

	details := exception.ErrorDetails{
		Code:        code,
		Message:     h.dialect.message(resp, root),
		ServiceName: h.serviceNameFor(ctx),
		StatusCode:  resp.StatusCode,
		RequestID:   requestID(resp, root, doc.Root()),
		RawBody:     resp.Body,
	}
	exc.SetErrorDetails(details)
	overlayModeled(exc, details)
	return exc
}

func (h *ErrorHandler) unmarshal(entry exception.Entry, root *document.Node, exc exception.Exception) {
	var target any = exc
	if t, ok := exc.(exception.Target); ok {
		target = t.UnmarshalTarget()
	}

	u := codec.Unmarshaller{Format: h.dialect.Format, Lenient: true}
	err := u.Unmarshal(entry.Shape, root, target)
	if err == nil {
		return
	}

	var coercion *codec.TypeCoercionError
	if errors.As(err, &coercion) {
		h.logger.Debug("skipped error members that did not coerce",
			"code", entry.Code,
			"error", err)
		return
	}
	h.logger.Warn("failed to unmarshal modeled error members",
		"code", entry.Code,
		"shape", entry.Shape.String(),
		"error", err)
}

// fallback builds the default exception without unmarshalling members.
// nodes are whatever parts of the body were parsed before the failure.
func (h *ErrorHandler) fallback(ctx context.Context, resp *RawResponse, code string, nodes ...*document.Node) exception.Exception {
	exc := newException(h.registry.Default())
	exc.SetErrorDetails(exception.ErrorDetails{
		Code:        code,
		ServiceName: h.serviceNameFor(ctx),
		StatusCode:  resp.StatusCode,
		RequestID:   requestID(resp, nodes...),
		RawBody:     resp.Body,
	})
	return exc
}

func (h *ErrorHandler) serviceNameFor(ctx context.Context) string {
	if name, ok := ServiceNameFromContext(ctx); ok {
		return name
	}
	return h.serviceName
}

func newException(entry exception.Entry) exception.Exception {
	if entry.New != nil {
		if exc := entry.New(); exc != nil {
			return exc
		}
	}
	return exception.NewServiceException()
}

// overlayModeled copies the resolved code and message over modeled string
// fields of the same name, so the exception reads the same both ways.
func overlayModeled(exc exception.Exception, d exception.ErrorDetails) {
	v := reflect.ValueOf(exc)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	for name, value := range map[string]string{"Code": d.Code, "Message": d.Message} {
		if value == "" {
			continue
		}
		f := v.FieldByName(name)
		if f.IsValid() && f.CanSet() && f.Kind() == reflect.String {
			f.SetString(value)
		}
	}
}
