package protocol

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/zero-day-ai/protocol/document"
)

// RawResponse is a complete HTTP response as received by the transport.
type RawResponse struct {
	StatusCode int

	// Status is the status line text, e.g. "404 Not Found".
	Status string

	Header http.Header
	Body   []byte
}

// ResponseMetadata carries transport facts about a successful response.
type ResponseMetadata struct {
	RequestID  string
	StatusCode int
}

// WireRequest is the transport-neutral form of an outbound request.
type WireRequest struct {
	// Operation is the API operation name.
	Operation string

	Method string
	Path   string

	// HostPrefix is prepended to the endpoint host when non-empty.
	HostPrefix string

	Header http.Header
	Query  url.Values

	// Body is the encoded structural body. It is nil when the request
	// carries a streaming Payload instead.
	Body []byte

	// Payload is the streaming input member, if the operation has one.
	Payload any
}

// URL returns the request URL relative to endpoint: host prefix applied,
// path joined and query encoded.
func (r *WireRequest) URL(endpoint *url.URL) *url.URL {
	u := *endpoint
	if r.HostPrefix != "" {
		u.Host = r.HostPrefix + u.Host
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + r.Path
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}
	return &u
}

// Request ID headers in lookup order.
var requestIDHeaders = []string{"X-Amzn-Requestid", "X-Amz-Request-Id"}

// requestID finds the request id in the headers, then in the usual body
// locations of the query protocols.
func requestID(resp *RawResponse, nodes ...*document.Node) string {
	for _, h := range requestIDHeaders {
		if v := resp.Header.Get(h); v != "" {
			return v
		}
	}
	for _, n := range nodes {
		for _, name := range []string{"RequestId", "RequestID", "requestId"} {
			if c := n.Child(name); c != nil && c.Text != "" {
				return strings.TrimSpace(c.Text)
			}
		}
		if c := n.Path("ResponseMetadata", "RequestId"); c != nil && c.Text != "" {
			return strings.TrimSpace(c.Text)
		}
	}
	return ""
}

// reasonPhrase returns the text of the status line without the code.
func reasonPhrase(resp *RawResponse) string {
	if resp.Status != "" {
		text := strings.TrimSpace(resp.Status)
		if code, rest, ok := strings.Cut(text, " "); ok {
			if _, err := strconv.Atoi(code); err == nil {
				return strings.TrimSpace(rest)
			}
		}
		return text
	}
	return http.StatusText(resp.StatusCode)
}

type serviceNameKey struct{}

// ContextWithServiceName returns a context that names the service being
// called. The error handler prefers it over the factory's service name.
func ContextWithServiceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, serviceNameKey{}, name)
}

// ServiceNameFromContext returns the service name stored in ctx.
func ServiceNameFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(serviceNameKey{}).(string)
	return name, ok && name != ""
}
