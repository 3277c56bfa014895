// Package exception defines the typed errors a service returns and the
// registry that maps wire error codes to them.
//
// # Exceptions
//
// Every service error surfaces as an Exception: a Go error that also carries
// ErrorDetails, the transport-level facts about the failure (code, message,
// HTTP status, request id, raw body and service name). Modeled exceptions
// embed Base and declare their modeled members as exported fields:
//
//	type ThrottledException struct {
//	    exception.Base
//	    RetryAfterSeconds int
//	}
//
// Unmodeled failures, or failures whose code is not registered, surface as a
// *ServiceException whose Fields hold whatever the error body contained.
//
// # Registry
//
// A Registry is built once from a default Entry and the modeled entries:
//
//	reg, err := exception.NewRegistry(
//	    exception.Entry{New: exception.NewServiceException},
//	    exception.Entry{Code: "Throttled", Shape: throttledShape, New: newThrottled},
//	)
//
// Registries are immutable: lookups need no locking and every lookup for a
// code returns the same entry.
//
// # Inspecting errors
//
// Code and As work through wrapped errors:
//
//	if exception.Code(err) == "Throttled" {
//	    // back off
//	}
//
//	var throttled *ThrottledException
//	if errors.As(err, &throttled) {
//	    // use throttled.RetryAfterSeconds
//	}
package exception
