package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zero-day-ai/protocol/document"
	"github.com/zero-day-ai/protocol/shape"
)

// Unmarshaller converts document trees into Go values by walking shapes.
type Unmarshaller struct {
	Format Format

	// Lenient leaves values that fail type coercion unset and keeps going.
	// The coercion failures are still returned, joined, once the walk ends.
	// Shape and target errors always abort.
	Lenient bool
}

// Unmarshal fills v, which must be a non-nil pointer, from node according
// to s. An empty node leaves v untouched.
func (u Unmarshaller) Unmarshal(s *shape.Shape, node *document.Node, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: unmarshal target must be a non-nil pointer, got %T", ErrTargetMismatch, v)
	}
	w := &walker{u: u, tsDefault: u.Format.DefaultTimestampFormat()}
	if err := w.value(s, node, rv.Elem(), ""); err != nil {
		return err
	}
	return errors.Join(w.coercions...)
}

type walker struct {
	u         Unmarshaller
	tsDefault shape.TimestampFormat
	coercions []error
}

func (w *walker) value(s *shape.Shape, n *document.Node, dst reflect.Value, path string) error {
	if s == nil || !s.Kind.Valid() {
		return unsupported(path, s)
	}
	if n.IsEmpty() && !(s.Kind == shape.KindString && n != nil && n.Kind != document.KindNull) {
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		before := len(w.coercions)
		if err := w.value(s, n, elem.Elem(), path); err != nil {
			return err
		}
		if s.Kind.IsScalar() && len(w.coercions) > before {
			return nil
		}
		dst.Set(elem)
		return nil
	case reflect.Interface:
		if dst.NumMethod() != 0 {
			return mismatch(path, s, dst.Type())
		}
		natural := reflect.New(naturalType(s)).Elem()
		before := len(w.coercions)
		if err := w.value(s, n, natural, path); err != nil {
			return err
		}
		if s.Kind.IsScalar() && len(w.coercions) > before {
			return nil
		}
		dst.Set(natural)
		return nil
	}

	switch s.Kind {
	case shape.KindStructure:
		return w.structure(s, n, dst, path)
	case shape.KindList:
		return w.list(s, w.listElements(s, n), dst, path)
	case shape.KindMap:
		return w.mapValue(s, w.mapEntries(s, n), dst, path)
	default:
		return w.scalar(s, n, dst, path)
	}
}

func (w *walker) structure(s *shape.Shape, n *document.Node, dst reflect.Value, path string) error {
	switch {
	case dst.Kind() == reflect.Struct:
	case dst.Kind() == reflect.Map && dst.Type().Key().Kind() == reflect.String:
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
	default:
		return mismatch(path, s, dst.Type())
	}

	for _, m := range s.Members {
		if m.Location != shape.LocationBody || m.IsStreaming() {
			continue
		}
		memberPath := joinPath(path, m.Name)

		if w.u.Format == FormatXML && m.IsFlattened() && m.Target != nil &&
			(m.Target.Kind == shape.KindList || m.Target.Kind == shape.KindMap) {
			nodes := n.ChildrenNamed(flattenedName(m))
			if len(nodes) == 0 {
				continue
			}
			if err := w.member(dst, m, memberPath, func(target reflect.Value) error {
				if m.Target.Kind == shape.KindList {
					return w.list(m.Target, nodes, target, memberPath)
				}
				return w.mapValue(m.Target, nodes, target, memberPath)
			}); err != nil {
				return err
			}
			continue
		}

		child := n.Child(m.LocationName())
		if child == nil {
			continue
		}
		if err := w.member(dst, m, memberPath, func(target reflect.Value) error {
			return w.value(m.Target, child, target, memberPath)
		}); err != nil {
			return err
		}
	}
	return nil
}

// flattenedName is the element name of a flattened list or map member. A
// list member that names its elements overrides the structure member name.
func flattenedName(m *shape.Member) string {
	if m.Target.Kind == shape.KindList && m.Target.Member != nil && m.Target.Member.WireName != "" {
		return m.Target.Member.WireName
	}
	return m.LocationName()
}

// member resolves the destination of m inside a struct or map and runs fill
// against it. Struct fields the Go type does not declare are skipped.
func (w *walker) member(dst reflect.Value, m *shape.Member, path string, fill func(reflect.Value) error) error {
	if dst.Kind() == reflect.Struct {
		field := dst.FieldByName(m.Name)
		if !field.IsValid() || !field.CanSet() {
			return nil
		}
		return fill(field)
	}

	elem := reflect.New(dst.Type().Elem()).Elem()
	before := len(w.coercions)
	if err := fill(elem); err != nil {
		return err
	}
	if len(w.coercions) > before && m.Target != nil && m.Target.Kind.IsScalar() {
		return nil
	}
	if elem.Kind() == reflect.Interface && elem.IsNil() {
		return nil
	}
	dst.SetMapIndex(reflect.ValueOf(m.Name).Convert(dst.Type().Key()), elem)
	return nil
}

func (w *walker) listElements(s *shape.Shape, n *document.Node) []*document.Node {
	if w.u.Format == FormatJSON {
		return n.Children()
	}
	if s.Flattened {
		return []*document.Node{n}
	}
	return n.ChildrenNamed(listMemberName(s))
}

func listMemberName(s *shape.Shape) string {
	if s.Member == nil || s.Member.LocationName() == "" {
		return "member"
	}
	return s.Member.LocationName()
}

func (w *walker) list(s *shape.Shape, elems []*document.Node, dst reflect.Value, path string) error {
	if s.Member == nil {
		return unsupported(path, s)
	}
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := w.list(s, elems, p.Elem(), path); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		natural := reflect.New(naturalType(s)).Elem()
		if err := w.list(s, elems, natural, path); err != nil {
			return err
		}
		dst.Set(natural)
		return nil
	}
	if dst.Kind() != reflect.Slice {
		return mismatch(path, s, dst.Type())
	}

	out := reflect.MakeSlice(dst.Type(), 0, len(elems))
	for i, el := range elems {
		item := reflect.New(dst.Type().Elem()).Elem()
		if err := w.value(s.Member.Target, el, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
		out = reflect.Append(out, item)
	}
	dst.Set(out)
	return nil
}

type mapEntry struct {
	key   *document.Node
	value *document.Node
}

func (w *walker) mapEntries(s *shape.Shape, n *document.Node) []*document.Node {
	if w.u.Format == FormatJSON {
		return n.Children()
	}
	if s.Flattened {
		return []*document.Node{n}
	}
	return n.ChildrenNamed("entry")
}

func memberNameOr(m *shape.Member, def string) string {
	if m == nil || m.LocationName() == "" {
		return def
	}
	return m.LocationName()
}

func (w *walker) entry(s *shape.Shape, n *document.Node) mapEntry {
	if w.u.Format == FormatJSON {
		return mapEntry{key: &document.Node{Kind: document.KindScalar, Text: n.Name}, value: n}
	}
	return mapEntry{
		key:   n.Child(memberNameOr(s.Key, "key")),
		value: n.Child(memberNameOr(s.Value, "value")),
	}
}

func (w *walker) mapValue(s *shape.Shape, entries []*document.Node, dst reflect.Value, path string) error {
	if s.Key == nil || s.Value == nil {
		return unsupported(path, s)
	}
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := w.mapValue(s, entries, p.Elem(), path); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		natural := reflect.New(naturalType(s)).Elem()
		if err := w.mapValue(s, entries, natural, path); err != nil {
			return err
		}
		dst.Set(natural)
		return nil
	}
	if dst.Kind() != reflect.Map {
		return mismatch(path, s, dst.Type())
	}

	out := reflect.MakeMapWithSize(dst.Type(), len(entries))
	for _, raw := range entries {
		e := w.entry(s, raw)
		if e.key == nil {
			continue
		}
		key := reflect.New(dst.Type().Key()).Elem()
		keyPath := fmt.Sprintf("%s[%s]", path, e.key.Text)
		before := len(w.coercions)
		if err := w.value(s.Key.Target, e.key, key, keyPath); err != nil {
			return err
		}
		if len(w.coercions) > before {
			continue
		}
		val := reflect.New(dst.Type().Elem()).Elem()
		if err := w.value(s.Value.Target, e.value, val, keyPath); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	dst.Set(out)
	return nil
}

func (w *walker) scalar(s *shape.Shape, n *document.Node, dst reflect.Value, path string) error {
	if !scalarTarget(s.Kind, dst.Type()) {
		return mismatch(path, s, dst.Type())
	}
	var err error
	if n.Kind == document.KindObject || n.Kind == document.KindArray {
		err = fmt.Errorf("got a JSON %s", n.Kind)
	} else {
		var v any
		v, err = parseScalar(s, n.Text, w.tsDefault)
		if err == nil && !assignScalar(dst, v) {
			err = fmt.Errorf("value out of range for %s", dst.Type())
		}
	}
	if err == nil {
		return nil
	}

	coercion := &TypeCoercionError{Path: path, Kind: s.Kind, Text: n.Text, Err: err}
	if !w.u.Lenient {
		return coercion
	}
	w.coercions = append(w.coercions, coercion)
	return nil
}

// scalarTarget reports whether a Go type can hold values of kind k.
func scalarTarget(k shape.Kind, t reflect.Type) bool {
	switch k {
	case shape.KindString:
		return t.Kind() == reflect.String
	case shape.KindInteger, shape.KindLong:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		}
	case shape.KindFloat, shape.KindDouble:
		return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	case shape.KindBoolean:
		return t.Kind() == reflect.Bool
	case shape.KindTimestamp:
		return t == timeType
	case shape.KindBlob:
		return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
	}
	return false
}

// naturalType is the Go type used for a shape when the target is untyped.
func naturalType(s *shape.Shape) reflect.Type {
	switch s.Kind {
	case shape.KindStructure, shape.KindMap:
		return reflect.TypeOf(map[string]any(nil))
	case shape.KindList:
		return reflect.TypeOf([]any(nil))
	case shape.KindString:
		return reflect.TypeOf("")
	case shape.KindInteger, shape.KindLong:
		return reflect.TypeOf(int64(0))
	case shape.KindFloat, shape.KindDouble:
		return reflect.TypeOf(float64(0))
	case shape.KindBoolean:
		return reflect.TypeOf(false)
	case shape.KindTimestamp:
		return timeType
	default:
		return reflect.TypeOf([]byte(nil))
	}
}
