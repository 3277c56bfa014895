package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/zero-day-ai/protocol/document"
	"github.com/zero-day-ai/protocol/shape"
)

// indirect follows pointers and interfaces. It reports false for nil.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// rawMember returns the field or map entry held for m without following
// pointers.
func rawMember(parent reflect.Value, m *shape.Member) (reflect.Value, bool) {
	parent, ok := indirect(parent)
	if !ok {
		return reflect.Value{}, false
	}

	var v reflect.Value
	switch {
	case parent.Kind() == reflect.Struct:
		v = parent.FieldByName(m.Name)
	case parent.Kind() == reflect.Map && parent.Type().Key().Kind() == reflect.String:
		v = parent.MapIndex(reflect.ValueOf(m.Name).Convert(parent.Type().Key()))
	}
	return v, v.IsValid()
}

// memberValue returns the value held for m by a struct or a string-keyed
// map. Nil and zero values are reported as absent.
func memberValue(parent reflect.Value, m *shape.Member) (reflect.Value, bool) {
	v, ok := rawMember(parent, m)
	if !ok {
		return reflect.Value{}, false
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return reflect.Value{}, false
		}
		// An explicit pointer to a zero value is still sent.
		return indirect(v)
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return reflect.Value{}, false
		}
		return v, true
	}
	if v.IsZero() {
		return reflect.Value{}, false
	}
	return v, true
}

// MemberString renders a scalar member of v as text, for example to fill
// host prefix labels. It reports false when the member is absent.
func MemberString(s *shape.Shape, v any, name string) (string, bool) {
	m, ok := s.MemberByName(name)
	if !ok || m.Target == nil || !m.Target.Kind.IsScalar() {
		return "", false
	}
	fv, ok := memberValue(reflect.ValueOf(v), m)
	if !ok {
		return "", false
	}
	return scalarText(m.Target, fv, shape.TimestampISO8601)
}

// EncodeHeaders writes the header-located members of v into h. Timestamps
// default to RFC 822, the HTTP date format.
func EncodeHeaders(s *shape.Shape, v any, h http.Header) error {
	if s == nil {
		return nil
	}
	for _, m := range s.Members {
		if m.Location != shape.LocationHeader {
			continue
		}
		fv, ok := memberValue(reflect.ValueOf(v), m)
		if !ok {
			continue
		}
		if m.Target == nil || !m.Target.Kind.IsScalar() {
			return unsupported(m.Name, m.Target)
		}
		text, ok := scalarText(m.Target, fv, shape.TimestampRFC822)
		if !ok {
			return mismatch(m.Name, m.Target, fv.Type())
		}
		h.Set(headerName(m), text)
	}
	return nil
}

// DecodeHeaders fills the header-located members of v from h. Lenient
// decoding skips values that fail coercion and returns them joined.
func DecodeHeaders(s *shape.Shape, h http.Header, v any, lenient bool) error {
	if s == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: header target must be a non-nil pointer, got %T", ErrTargetMismatch, v)
	}
	w := &walker{u: Unmarshaller{Lenient: lenient}, tsDefault: shape.TimestampRFC822}
	dst, err := structTarget(rv.Elem(), s)
	if err != nil {
		return err
	}
	for _, m := range s.Members {
		if m.Location != shape.LocationHeader {
			continue
		}
		values := h.Values(headerName(m))
		if len(values) == 0 {
			continue
		}
		node := headerNode(values[0])
		if err := w.member(dst, m, m.Name, func(target reflect.Value) error {
			return w.value(m.Target, node, target, m.Name)
		}); err != nil {
			return err
		}
	}
	return errors.Join(w.coercions...)
}

// structTarget resolves v to a struct or a string-keyed map that can take
// members of s, allocating nil pointers and maps on the way.
func structTarget(v reflect.Value, s *shape.Shape) (reflect.Value, error) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	switch {
	case v.Kind() == reflect.Struct:
		return v, nil
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		if v.IsNil() {
			v.Set(reflect.MakeMap(v.Type()))
		}
		return v, nil
	}
	return reflect.Value{}, mismatch("", s, v.Type())
}

func headerNode(text string) *document.Node {
	return &document.Node{Kind: document.KindScalar, Text: text}
}

func headerName(m *shape.Member) string {
	if m.HeaderName != "" {
		return m.HeaderName
	}
	return m.LocationName()
}

// StreamingPayload returns the content of the streaming member of v as a
// reader. Byte slices and strings are wrapped; readers are returned as is.
func StreamingPayload(s *shape.Shape, v any) (io.Reader, bool) {
	m, ok := s.StreamingMember()
	if !ok {
		return nil, false
	}
	raw, ok := rawMember(reflect.ValueOf(v), m)
	if !ok || !raw.CanInterface() {
		return nil, false
	}
	if (raw.Kind() == reflect.Interface || raw.Kind() == reflect.Pointer) && raw.IsNil() {
		return nil, false
	}
	if r, ok := raw.Interface().(io.Reader); ok {
		return r, true
	}
	fv, ok := indirect(raw)
	if !ok {
		return nil, false
	}
	switch x := fv.Interface().(type) {
	case io.Reader:
		return x, true
	case []byte:
		return bytes.NewReader(x), true
	case string:
		return bytes.NewReader([]byte(x)), true
	}
	return nil, false
}

// SetStreamingPayload stores r in the streaming member of v. The member may
// be declared as io.Reader, io.ReadCloser, any or []byte.
func SetStreamingPayload(s *shape.Shape, v any, r io.Reader) error {
	m, ok := s.StreamingMember()
	if !ok {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: payload target must be a non-nil pointer, got %T", ErrTargetMismatch, v)
	}
	dst, err := structTarget(rv.Elem(), s)
	if err != nil {
		return err
	}

	var field reflect.Value
	switch dst.Kind() {
	case reflect.Struct:
		field = dst.FieldByName(m.Name)
		if !field.IsValid() || !field.CanSet() {
			return nil
		}
	default:
		if dst.Type().Elem().Kind() != reflect.Interface {
			return mismatch(m.Name, m.Target, dst.Type())
		}
		dst.SetMapIndex(reflect.ValueOf(m.Name).Convert(dst.Type().Key()), reflect.ValueOf(r))
		return nil
	}

	rc, isCloser := r.(io.ReadCloser)
	if !isCloser {
		rc = io.NopCloser(r)
	}
	switch {
	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8:
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read streaming payload: %w", err)
		}
		field.SetBytes(data)
	case reflect.TypeOf(rc).AssignableTo(field.Type()):
		field.Set(reflect.ValueOf(rc))
	default:
		return mismatch(m.Name, m.Target, field.Type())
	}
	return nil
}
