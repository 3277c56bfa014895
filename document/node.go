package document

import (
	"errors"
	"mime"
	"strings"
)

// ErrMalformedBody is returned when body bytes cannot be parsed as the
// declared encoding.
var ErrMalformedBody = errors.New("malformed body")

// Kind identifies what a Node was parsed from.
type Kind int

const (
	// KindDocument is the synthetic root returned by the parsers.
	KindDocument Kind = iota

	// KindElement is an XML element.
	KindElement

	// KindObject is a JSON object. Children are named by key.
	KindObject

	// KindArray is a JSON array. Children are unnamed.
	KindArray

	// KindScalar is a JSON string, number or boolean.
	KindScalar

	// KindNull is a JSON null.
	KindNull
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Node is one node of a parsed body.
//
// All accessors are safe to call on a nil *Node and return zero values, so
// lookups can be chained without intermediate checks:
//
//	code := doc.Root().Child("Error").Child("Code").Text
type Node struct {
	Name string
	Kind Kind

	// Text is the character data of an XML element or the literal text of a
	// JSON scalar. JSON strings are unquoted, numbers keep their original form.
	Text string

	attrs    map[string]string
	children []*Node
}

// Children returns the child nodes in document order.
// The returned slice must not be modified.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildFold is like Child but compares names case-insensitively.
func (n *Node) ChildFold(name string) *Node {
	if n == nil {
		return nil
	}
	if c := n.Child(name); c != nil {
		return c
	}
	for _, c := range n.children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child with the given name in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of child names and returns the node at the end,
// or nil if any step is missing.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Root returns the root element of an XML document. For any other node it
// returns the node itself.
func (n *Node) Root() *Node {
	if n == nil {
		return nil
	}
	if n.Kind != KindDocument {
		return n
	}
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Value returns the text of the node, or "" for a nil node.
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// Attr returns the value of an XML attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.attrs == nil {
		return "", false
	}
	v, ok := n.attrs[name]
	return v, ok
}

// IsEmpty reports whether the node carries neither children nor text.
// Null JSON values are empty.
func (n *Node) IsEmpty() bool {
	if n == nil || n.Kind == KindNull {
		return true
	}
	return len(n.children) == 0 && n.Text == "" && n.Kind != KindScalar
}

// Parse parses body according to contentType. Media types containing "json"
// are parsed as JSON, everything else as XML. An empty body produces an empty
// document and no error.
func Parse(body []byte, contentType string) (*Node, error) {
	if isJSON(contentType) {
		return ParseJSON(body)
	}
	return ParseXML(body)
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.Contains(mt, "json")
}

func isBlank(body []byte) bool {
	return len(strings.TrimSpace(string(body))) == 0
}
