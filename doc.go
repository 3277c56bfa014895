// Package protocol is the wire protocol engine behind generated service
// clients.
//
// Given an operation description (see package shape) and a protocol dialect,
// the engine does three things:
//
//   - marshals a typed input value into a WireRequest,
//   - unmarshals a successful RawResponse into a typed output value,
//   - unmarshals a failed RawResponse into one of a family of registered
//     exceptions, selected by the error code found in the response.
//
// Transport, retries and request signing are left to the caller; package
// client shows a minimal HTTP call site.
//
// # Dialects
//
// A Dialect is a value describing one protocol variant:
//
//   - Query: form-encoded requests, XML responses wrapped in <Op>Result,
//     errors under <ErrorResponse><Error>.
//   - EC2: like Query but without a result wrapper, with errors under
//     <Response><Errors><Error> and EC2 parameter naming.
//   - JSON10 and JSON11: JSON bodies, X-Amz-Target routing and error codes
//     taken from the X-Amzn-ErrorType header or the __type field.
//
// Variants are made by copying a dialect and replacing its fields, for
// example JSON10.QueryCompatible() for JSON services that still report
// legacy query error codes.
//
// # Factory
//
// A Factory holds a dialect and an immutable exception registry:
//
//	f, err := protocol.NewFactory(
//		protocol.WithDialect(protocol.Query),
//		protocol.WithAPIVersion("2012-11-05"),
//		protocol.WithServiceName("sqs"),
//		protocol.WithException("Throttled", throttledShape, newThrottled),
//	)
//
//	marshaller, _ := f.BuildRequestMarshaller(op)
//	req, err := marshaller.Marshal(ctx, input)
//
//	// ... send req, receive resp ...
//
//	if resp.StatusCode >= 300 {
//		return f.ErrorHandler().Handle(ctx, resp)
//	}
//	handler, _ := f.BuildSuccessHandler(op)
//	_, err = handler.Handle(ctx, resp, &output)
//
// Factories, handlers and marshallers are safe for concurrent use.
//
// # Error handling
//
// Marshalling and success handling return *Error values whose Kind is one of
// KindMalformedBody, KindTypeCoercion, KindUnsupportedShape,
// KindConfiguration or KindMarshal. The error handler never fails: whatever
// the response contains, it returns an exception.Exception.
//
// # Observability
//
// Handlers emit OpenTelemetry spans (protocol.error.handle,
// protocol.response.handle, protocol.request.marshal) and metrics
// (protocol.error.dispatched, protocol.response.handled,
// protocol.handle.duration) through the tracer and meter given to
// WithTracer and WithMeter. Logging goes through log/slog.
package protocol
