package shape

import (
	"fmt"
	"strings"
)

// Operation describes one API operation.
type Operation struct {
	Name string

	// HTTPMethod and RequestURI default to POST and "/".
	HTTPMethod string
	RequestURI string

	Input  *Shape
	Output *Shape

	// HostPrefix is prepended to the endpoint host. It may contain {Label}
	// placeholders that are filled from host-label input members.
	HostPrefix string

	// Errors lists the exception shapes the operation is modeled to return.
	Errors []*Shape
}

// Method returns the HTTP method of the operation.
func (o *Operation) Method() string {
	if o.HTTPMethod == "" {
		return "POST"
	}
	return o.HTTPMethod
}

// Path returns the request URI of the operation.
func (o *Operation) Path() string {
	if o.RequestURI == "" {
		return "/"
	}
	return o.RequestURI
}

// HasStreamingInput reports whether the input carries a streaming payload.
func (o *Operation) HasStreamingInput() bool {
	_, ok := o.Input.StreamingMember()
	return ok
}

// HasStreamingOutput reports whether the output carries a streaming payload.
func (o *Operation) HasStreamingOutput() bool {
	_, ok := o.Output.StreamingMember()
	return ok
}

// ResultWrapper returns the name of the envelope element that wraps a
// successful query response.
func (o *Operation) ResultWrapper() string {
	return o.Name + "Result"
}

// ResolveHostPrefix fills the {Label} placeholders of the host prefix using
// lookup. Every label must resolve to a non-empty value.
func (o *Operation) ResolveHostPrefix(lookup func(label string) (string, bool)) (string, error) {
	prefix := o.HostPrefix
	if !strings.Contains(prefix, "{") {
		return prefix, nil
	}

	var b strings.Builder
	for {
		start := strings.IndexByte(prefix, '{')
		if start < 0 {
			b.WriteString(prefix)
			break
		}
		end := strings.IndexByte(prefix[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("host prefix %q: unterminated label", o.HostPrefix)
		}
		label := prefix[start+1 : start+end]
		value, ok := lookup(label)
		if !ok || value == "" {
			return "", fmt.Errorf("host prefix %q: label %s is empty", o.HostPrefix, label)
		}
		b.WriteString(prefix[:start])
		b.WriteString(value)
		prefix = prefix[start+end+1:]
	}
	return b.String(), nil
}
