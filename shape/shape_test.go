package shape

import (
	"testing"
)

func TestScalarConstructors(t *testing.T) {
	tests := []struct {
		name string
		got  *Shape
		want Kind
	}{
		{"String", String(), KindString},
		{"Integer", Integer(), KindInteger},
		{"Long", Long(), KindLong},
		{"Float", Float(), KindFloat},
		{"Double", Double(), KindDouble},
		{"Boolean", Boolean(), KindBoolean},
		{"Blob", Blob(), KindBlob},
		{"Timestamp", Timestamp(), KindTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", tt.got.Kind, tt.want)
			}
			if !tt.got.Kind.IsScalar() {
				t.Errorf("%q should be scalar", tt.got.Kind)
			}
			if !tt.got.Kind.Valid() {
				t.Errorf("%q should be valid", tt.got.Kind)
			}
		})
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindStructure, KindList, KindMap} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
		if k.IsScalar() {
			t.Errorf("%q should not be scalar", k)
		}
	}
	if Kind("union").Valid() {
		t.Error("unknown kind reported valid")
	}
}

func TestMemberOptions(t *testing.T) {
	m := NewMember("Name", String(),
		WithWireName("name"),
		WithQueryName("NameQuery"),
		Flattened(),
		Required(),
	)
	if m.LocationName() != "name" {
		t.Errorf("LocationName() = %q, want %q", m.LocationName(), "name")
	}
	if m.QueryName != "NameQuery" || !m.Flattened || !m.Required {
		t.Errorf("options not applied: %+v", m)
	}

	plain := NewMember("Plain", String())
	if plain.LocationName() != "Plain" {
		t.Errorf("LocationName() = %q, want member name", plain.LocationName())
	}

	h := NewMember("Token", String(), InHeader("X-Token"))
	if h.Location != LocationHeader || h.HeaderName != "X-Token" {
		t.Errorf("header option not applied: %+v", h)
	}
}

func TestIsFlattened(t *testing.T) {
	if !NewMember("L", FlattenedList(NewMember("member", String()))).IsFlattened() {
		t.Error("flattened list target not detected")
	}
	if !NewMember("L", List(NewMember("member", String())), Flattened()).IsFlattened() {
		t.Error("flattened member not detected")
	}
	if NewMember("L", List(NewMember("member", String()))).IsFlattened() {
		t.Error("plain list reported flattened")
	}
}

func TestStreamingMember(t *testing.T) {
	in := Structure("PutInput",
		NewMember("Key", String()),
		NewMember("Body", Stream()),
	)
	m, ok := in.StreamingMember()
	if !ok || m.Name != "Body" {
		t.Fatalf("StreamingMember() = %v, %v", m, ok)
	}

	op := &Operation{Name: "Put", Input: in, Output: Structure("PutOutput")}
	if !op.HasStreamingInput() {
		t.Error("HasStreamingInput() = false")
	}
	if op.HasStreamingOutput() {
		t.Error("HasStreamingOutput() = true")
	}

	var nilShape *Shape
	if _, ok := nilShape.StreamingMember(); ok {
		t.Error("nil shape reported a streaming member")
	}
}

func TestExceptionCode(t *testing.T) {
	e := Exception("NotFound")
	if !e.Exception || e.Code() != "NotFound" {
		t.Errorf("Code() = %q", e.Code())
	}
	e.ErrorCode = "ResourceNotFound"
	if e.Code() != "ResourceNotFound" {
		t.Errorf("Code() = %q, want override", e.Code())
	}
}

func TestOperationDefaults(t *testing.T) {
	op := &Operation{Name: "DescribeThings"}
	if op.Method() != "POST" || op.Path() != "/" {
		t.Errorf("defaults = %s %s", op.Method(), op.Path())
	}
	if op.ResultWrapper() != "DescribeThingsResult" {
		t.Errorf("ResultWrapper() = %q", op.ResultWrapper())
	}
}

func TestResolveHostPrefix(t *testing.T) {
	labels := map[string]string{"AccountId": "123456789012", "Region": "us-west-2"}
	lookup := func(label string) (string, bool) {
		v, ok := labels[label]
		return v, ok
	}

	tests := []struct {
		name    string
		prefix  string
		want    string
		wantErr bool
	}{
		{name: "static", prefix: "data.", want: "data."},
		{name: "empty", prefix: "", want: ""},
		{name: "one label", prefix: "{AccountId}.", want: "123456789012."},
		{name: "two labels", prefix: "{AccountId}-{Region}.api.", want: "123456789012-us-west-2.api."},
		{name: "missing label", prefix: "{Bucket}.", wantErr: true},
		{name: "unterminated", prefix: "{AccountId.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{Name: "Op", HostPrefix: tt.prefix}
			got, err := op.ResolveHostPrefix(lookup)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveHostPrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}
