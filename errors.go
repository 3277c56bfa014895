package protocol

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zero-day-ai/protocol/codec"
	"github.com/zero-day-ai/protocol/document"
)

// Sentinel errors for protocol error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the factory options are inconsistent.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNilOperation indicates a handler was requested for a nil operation.
	ErrNilOperation = errors.New("nil operation")

	// ErrMissingHostLabel indicates a host prefix label had no value.
	ErrMissingHostLabel = errors.New("missing host label")
)

// Error kinds categorize errors by their type.
const (
	// KindMalformedBody represents response bodies that could not be parsed.
	KindMalformedBody = "malformed_body"

	// KindTypeCoercion represents leaf values that did not match their shape.
	KindTypeCoercion = "type_coercion"

	// KindUnsupportedShape represents metadata the engine cannot handle.
	KindUnsupportedShape = "unsupported_shape"

	// KindConfiguration represents factory misconfiguration and Go values
	// that do not fit the shapes they are used with.
	KindConfiguration = "configuration"

	// KindMarshal represents failures to build a wire request.
	KindMarshal = "marshal"
)

// Error is a structured error that records the operation that failed and
// the category of the failure.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &Error{
//		Op:   "SuccessHandler.Handle",
//		Kind: KindMalformedBody,
//		Err:  parseErr,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "RequestMarshaller.Marshal").
	Op string

	// Kind categorizes the error (e.g., KindMalformedBody).
	Kind string

	// Err is the underlying error.
	Err error

	// Context provides additional context such as the API operation name.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("protocol: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("protocol: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind (and Op when the target sets one) and
// otherwise delegates to the wrapped error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with ctx merged into its context.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// newError wraps err with op, picking the kind from the error chain.
// fallbackKind is used when nothing in the chain is recognised.
func newError(op, fallbackKind string, err error) *Error {
	return &Error{Op: op, Kind: classify(err, fallbackKind), Err: err}
}

func classify(err error, fallback string) string {
	var (
		coercion    *codec.TypeCoercionError
		unsupported *codec.UnsupportedShapeError
	)
	switch {
	case errors.Is(err, document.ErrMalformedBody):
		return KindMalformedBody
	case errors.As(err, &unsupported):
		return KindUnsupportedShape
	case errors.As(err, &coercion):
		return KindTypeCoercion
	case errors.Is(err, codec.ErrTargetMismatch), errors.Is(err, ErrInvalidConfig):
		return KindConfiguration
	}
	return fallback
}

// CloseWithLog closes the resource and logs any error at warning level.
// It is meant for defer statements. If logger is nil, slog.Default() is used.
//
//	defer protocol.CloseWithLog(resp.Body, logger, "response body")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
