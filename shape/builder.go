package shape

// String creates a string shape.
func String() *Shape { return &Shape{Kind: KindString} }

// Integer creates a 32-bit integer shape.
func Integer() *Shape { return &Shape{Kind: KindInteger} }

// Long creates a 64-bit integer shape.
func Long() *Shape { return &Shape{Kind: KindLong} }

// Float creates a single precision shape.
func Float() *Shape { return &Shape{Kind: KindFloat} }

// Double creates a double precision shape.
func Double() *Shape { return &Shape{Kind: KindDouble} }

// Boolean creates a boolean shape.
func Boolean() *Shape { return &Shape{Kind: KindBoolean} }

// Blob creates a binary shape, base64 encoded on the wire.
func Blob() *Shape { return &Shape{Kind: KindBlob} }

// Stream creates a streaming blob shape.
func Stream() *Shape { return &Shape{Kind: KindBlob, Streaming: true} }

// Timestamp creates a timestamp shape. Without a format the wire protocol's
// default is used.
func Timestamp(format ...TimestampFormat) *Shape {
	s := &Shape{Kind: KindTimestamp}
	if len(format) > 0 {
		s.TimestampFormat = format[0]
	}
	return s
}

// List creates a list shape whose elements are described by member.
// The member's wire name is the element name in XML ("member" when empty).
func List(member *Member) *Shape {
	return &Shape{Kind: KindList, Member: member}
}

// FlattenedList creates a list whose elements repeat under the parent.
func FlattenedList(member *Member) *Shape {
	return &Shape{Kind: KindList, Member: member, Flattened: true}
}

// Map creates a map shape from key and value members.
func Map(key, value *Member) *Shape {
	return &Shape{Kind: KindMap, Key: key, Value: value}
}

// Structure creates a named structure shape.
func Structure(name string, members ...*Member) *Shape {
	return &Shape{Name: name, Kind: KindStructure, Members: members}
}

// Exception creates a structure shape that models a service error.
// The error code defaults to the shape name.
func Exception(name string, members ...*Member) *Shape {
	return &Shape{Name: name, Kind: KindStructure, Members: members, Exception: true}
}

// MemberOption configures a Member.
type MemberOption func(*Member)

// NewMember creates a member referring to target.
func NewMember(name string, target *Shape, opts ...MemberOption) *Member {
	m := &Member{Name: name, Target: target}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithWireName overrides the member name on the wire.
func WithWireName(name string) MemberOption {
	return func(m *Member) {
		m.WireName = name
	}
}

// WithQueryName overrides the EC2 request parameter name.
func WithQueryName(name string) MemberOption {
	return func(m *Member) {
		m.QueryName = name
	}
}

// Flattened marks a list or map member as flattened.
func Flattened() MemberOption {
	return func(m *Member) {
		m.Flattened = true
	}
}

// InHeader places the member in the named header.
func InHeader(header string) MemberOption {
	return func(m *Member) {
		m.Location = LocationHeader
		m.HeaderName = header
	}
}

// AsHostLabel marks the member as a host prefix label.
func AsHostLabel() MemberOption {
	return func(m *Member) {
		m.HostLabel = true
	}
}

// AsIdempotencyToken marks the member as an idempotency token.
func AsIdempotencyToken() MemberOption {
	return func(m *Member) {
		m.IdempotencyToken = true
	}
}

// Required marks the member as required by the model. The engine records
// the flag but does not enforce it.
func Required() MemberOption {
	return func(m *Member) {
		m.Required = true
	}
}
