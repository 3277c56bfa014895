package protocol

import (
	"strings"

	"github.com/zero-day-ai/protocol/document"
)

// CodeResolver determines the error code of a failed response. root is the
// error root chosen by the dialect, or the whole document. An empty result
// means no code could be found.
type CodeResolver func(resp *RawResponse, root *document.Node) string

// MessageExtractor determines the human-readable error message.
type MessageExtractor func(resp *RawResponse, root *document.Node) string

// ErrorRootExtractor selects the node holding the error fields. A nil
// result means the whole document carries the error.
type ErrorRootExtractor func(doc *document.Node) *document.Node

// ResolveErrorCode builds a CodeResolver that reads the named header, then
// the named fields of the error root in order, then falls back to the HTTP
// reason phrase. Values are cut at the first ':' or ';' and any
// "namespace#" prefix is removed.
func ResolveErrorCode(header string, fields ...string) CodeResolver {
	return func(resp *RawResponse, root *document.Node) string {
		if resp == nil {
			resp = &RawResponse{}
		}
		if header != "" {
			if code := normalizeCode(resp.Header.Get(header)); code != "" {
				return code
			}
		}
		for _, f := range fields {
			if code := normalizeCode(root.Child(f).Value()); code != "" {
				return code
			}
		}
		return reasonPhrase(resp)
	}
}

func normalizeCode(v string) string {
	if i := strings.IndexAny(v, ":;"); i >= 0 {
		v = v[:i]
	}
	if i := strings.LastIndexByte(v, '#'); i >= 0 {
		v = v[i+1:]
	}
	return strings.TrimSpace(v)
}

// StandardErrorRoot returns the Error element of <ErrorResponse><Error>, or
// the root element itself when it is named Error.
func StandardErrorRoot(doc *document.Node) *document.Node {
	root := doc.Root()
	if root == nil {
		return nil
	}
	if root.Name == "Error" {
		return root
	}
	return root.Child("Error")
}

// EC2ErrorRoot returns the first error of <Response><Errors><Error>.
func EC2ErrorRoot(doc *document.Node) *document.Node {
	root := doc.Root()
	if root == nil || root.Name != "Response" {
		return nil
	}
	return root.Path("Errors", "Error")
}

// DocumentErrorRoot always selects the whole document.
func DocumentErrorRoot(*document.Node) *document.Node {
	return nil
}

// FieldMessage returns a MessageExtractor reading the named field of the
// error root.
func FieldMessage(field string) MessageExtractor {
	return func(_ *RawResponse, root *document.Node) string {
		return strings.TrimSpace(root.Child(field).Value())
	}
}

// JSONMessage reads "message" in any letter case, then "errorMessage",
// then the x-amzn-error-message header.
func JSONMessage(resp *RawResponse, root *document.Node) string {
	for _, name := range []string{"message", "errorMessage"} {
		if n := root.ChildFold(name); n != nil && n.Kind == document.KindScalar {
			return n.Text
		}
	}
	if resp != nil {
		return resp.Header.Get("X-Amzn-Error-Message")
	}
	return ""
}
