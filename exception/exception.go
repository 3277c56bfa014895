package exception

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorDetails are the transport-level facts about a service error.
// They are set by the error handler after the modeled members have been
// unmarshalled and take precedence over anything the body claims.
type ErrorDetails struct {
	// Code is the resolved error code. Empty when none could be found.
	Code string

	Message     string
	ServiceName string
	StatusCode  int
	RequestID   string

	// RawBody is the unparsed response body.
	RawBody []byte
}

// Fault classifies the error by who caused it.
func (d ErrorDetails) Fault() Fault {
	return DefaultFault(d.Code, d.StatusCode)
}

// Exception is a service error with transport details attached.
type Exception interface {
	error
	ErrorDetails() ErrorDetails
	SetErrorDetails(ErrorDetails)
}

// Target is implemented by exceptions that want modeled members unmarshalled
// into something other than the exception value itself.
type Target interface {
	UnmarshalTarget() any
}

// Factory creates a fresh exception value.
type Factory func() Exception

// Base implements Exception. Modeled exceptions embed it.
type Base struct {
	details ErrorDetails
}

// ErrorDetails returns the transport details of the error.
func (b *Base) ErrorDetails() ErrorDetails {
	return b.details
}

// SetErrorDetails replaces the transport details of the error.
func (b *Base) SetErrorDetails(d ErrorDetails) {
	b.details = d
}

// Error formats the error as
// "Code: message (Service: s, Status Code: 400, Request ID: r)".
// Empty parts are left out.
func (b *Base) Error() string {
	d := b.details

	var sb strings.Builder
	switch {
	case d.Code != "" && d.Message != "":
		sb.WriteString(d.Code + ": " + d.Message)
	case d.Code != "":
		sb.WriteString(d.Code)
	case d.Message != "":
		sb.WriteString(d.Message)
	default:
		sb.WriteString("service error")
	}

	var extra []string
	if d.ServiceName != "" {
		extra = append(extra, "Service: "+d.ServiceName)
	}
	if d.StatusCode != 0 {
		extra = append(extra, fmt.Sprintf("Status Code: %d", d.StatusCode))
	}
	if d.RequestID != "" {
		extra = append(extra, "Request ID: "+d.RequestID)
	}
	if len(extra) > 0 {
		sb.WriteString(" (" + strings.Join(extra, ", ") + ")")
	}
	return sb.String()
}

// ServiceException is the default exception. Fields holds the members of
// the error body that were recognised by the default shape, or nothing when
// no shape is registered for it.
type ServiceException struct {
	Base
	Fields map[string]any
}

// NewServiceException is the default Factory.
func NewServiceException() Exception {
	return &ServiceException{}
}

// UnmarshalTarget implements Target.
func (e *ServiceException) UnmarshalTarget() any {
	return &e.Fields
}

// Code returns the error code of the first Exception in err's chain.
func Code(err error) string {
	var exc Exception
	if errors.As(err, &exc) {
		return exc.ErrorDetails().Code
	}
	return ""
}

// Details returns the error details of the first Exception in err's chain.
func Details(err error) (ErrorDetails, bool) {
	var exc Exception
	if !errors.As(err, &exc) {
		return ErrorDetails{}, false
	}
	return exc.ErrorDetails(), true
}
