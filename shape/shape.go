package shape

import "fmt"

// Kind is the kind of a shape.
type Kind string

// Shape kinds understood by the protocol engine.
const (
	KindStructure Kind = "structure"
	KindList      Kind = "list"
	KindMap       Kind = "map"
	KindString    Kind = "string"
	KindInteger   Kind = "integer"
	KindLong      Kind = "long"
	KindFloat     Kind = "float"
	KindDouble    Kind = "double"
	KindBoolean   Kind = "boolean"
	KindTimestamp Kind = "timestamp"
	KindBlob      Kind = "blob"
)

// IsScalar reports whether k is a leaf kind.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindInteger, KindLong, KindFloat, KindDouble,
		KindBoolean, KindTimestamp, KindBlob:
		return true
	}
	return false
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k.IsScalar() || k == KindStructure || k == KindList || k == KindMap
}

// TimestampFormat selects the textual encoding of a timestamp.
type TimestampFormat string

// Timestamp formats. An empty format means the wire protocol's default.
const (
	TimestampDefault      TimestampFormat = ""
	TimestampISO8601      TimestampFormat = "iso8601"
	TimestampEpochSeconds TimestampFormat = "unixTimestamp"
	TimestampRFC822       TimestampFormat = "rfc822"
)

// Location is where a member is carried on the wire.
type Location string

// Member locations.
const (
	LocationBody   Location = ""
	LocationHeader Location = "header"
)

// Shape describes a structure, list, map or scalar.
type Shape struct {
	// Name is the model name of the shape. Scalars built with the kind
	// constructors are anonymous.
	Name string
	Kind Kind

	// Members of a structure, in model order.
	Members []*Member

	// Member is the element of a list.
	Member *Member

	// Key and Value are the entry parts of a map.
	Key   *Member
	Value *Member

	// Flattened lists and maps repeat their elements directly under the
	// parent instead of nesting them in a wrapper element.
	Flattened bool

	TimestampFormat TimestampFormat

	// Streaming marks a blob whose content travels as an opaque payload
	// rather than inside the structural encoding.
	Streaming bool

	// Exception marks a structure that models a service error. ErrorCode is
	// the wire code of the error; it defaults to Name.
	Exception bool
	ErrorCode string
}

// Member is a named reference from a structure, list or map to a shape.
type Member struct {
	// Name is the model member name. Go struct fields are matched by it.
	Name string

	// WireName overrides Name on the wire.
	WireName string

	// QueryName overrides the request parameter name in the EC2 dialect.
	QueryName string

	Target *Shape

	Flattened bool
	Location  Location

	// HeaderName is the header carrying a header-located member.
	HeaderName string

	// HostLabel members fill the {Name} placeholders of a host prefix.
	HostLabel bool

	// IdempotencyToken members are filled with a fresh token when empty.
	IdempotencyToken bool

	Required bool
}

// LocationName returns the wire name of the member.
func (m *Member) LocationName() string {
	if m.WireName != "" {
		return m.WireName
	}
	return m.Name
}

// IsFlattened reports whether the member or its target list/map is flattened.
func (m *Member) IsFlattened() bool {
	return m.Flattened || (m.Target != nil && m.Target.Flattened)
}

// IsStreaming reports whether the member targets a streaming blob.
func (m *Member) IsStreaming() bool {
	return m.Target != nil && m.Target.Streaming
}

// MemberByName returns the structure member with the given model name.
func (s *Shape) MemberByName(name string) (*Member, bool) {
	if s == nil {
		return nil, false
	}
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// StreamingMember returns the streaming member of a structure, if any.
func (s *Shape) StreamingMember() (*Member, bool) {
	if s == nil {
		return nil, false
	}
	for _, m := range s.Members {
		if m.IsStreaming() {
			return m, true
		}
	}
	return nil, false
}

// Code returns the wire error code of an exception shape.
func (s *Shape) Code() string {
	if s.ErrorCode != "" {
		return s.ErrorCode
	}
	return s.Name
}

// String returns a short description used in error messages.
func (s *Shape) String() string {
	if s == nil {
		return "<nil shape>"
	}
	if s.Name == "" {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s(%s)", s.Name, s.Kind)
}
