package codec

import (
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zero-day-ai/protocol/shape"
)

// QueryEncoder writes a Go value as form parameters of the query protocol.
type QueryEncoder struct {
	// EC2 selects the EC2 dialect: lists are always numbered directly under
	// their name, empty lists are omitted and parameter names come from
	// QueryName or the capitalised wire name.
	EC2 bool

	// Token produces idempotency tokens for empty token members.
	// Nil leaves such members out.
	Token func() string
}

// Encode adds the members of v, described by structure s, to params.
func (e QueryEncoder) Encode(s *shape.Shape, v any, params url.Values) error {
	if s == nil {
		return nil
	}
	if s.Kind != shape.KindStructure {
		return unsupported("", s)
	}
	return e.structure(s, reflect.ValueOf(v), "", params)
}

func (e QueryEncoder) structure(s *shape.Shape, v reflect.Value, prefix string, params url.Values) error {
	for _, m := range s.Members {
		if m.Location != shape.LocationBody || m.IsStreaming() {
			continue
		}
		key := joinPath(prefix, e.paramName(m))

		fv, ok := memberValue(v, m)
		if !ok {
			if m.IdempotencyToken && e.Token != nil {
				params.Set(key, e.Token())
			}
			continue
		}
		if err := e.value(m, fv, key, params); err != nil {
			return err
		}
	}
	return nil
}

func (e QueryEncoder) paramName(m *shape.Member) string {
	if !e.EC2 {
		return m.LocationName()
	}
	if m.QueryName != "" {
		return m.QueryName
	}
	return capitalize(m.LocationName())
}

func (e QueryEncoder) value(m *shape.Member, v reflect.Value, key string, params url.Values) error {
	s := m.Target
	if s == nil || !s.Kind.Valid() {
		return unsupported(key, s)
	}
	v, ok := indirect(v)
	if !ok {
		return nil
	}

	switch s.Kind {
	case shape.KindStructure:
		if v.Kind() != reflect.Struct && v.Kind() != reflect.Map {
			return mismatch(key, s, v.Type())
		}
		return e.structure(s, v, key, params)
	case shape.KindList:
		return e.list(m, v, key, params)
	case shape.KindMap:
		return e.mapValue(m, v, key, params)
	}

	text, ok := scalarText(s, v, shape.TimestampISO8601)
	if !ok {
		return mismatch(key, s, v.Type())
	}
	params.Set(key, text)
	return nil
}

func (e QueryEncoder) list(m *shape.Member, v reflect.Value, key string, params url.Values) error {
	s := m.Target
	if s.Member == nil {
		return unsupported(key, s)
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return mismatch(key, s, v.Type())
	}
	if v.Len() == 0 {
		if !e.EC2 {
			params.Set(key, "")
		}
		return nil
	}

	var itemPrefix string
	switch {
	case e.EC2:
		itemPrefix = key
	case m.IsFlattened():
		itemPrefix = key
		if s.Member.WireName != "" {
			itemPrefix = replaceLast(key, s.Member.WireName)
		}
	default:
		itemPrefix = key + "." + listMemberName(s)
	}

	for i := 0; i < v.Len(); i++ {
		itemKey := itemPrefix + "." + strconv.Itoa(i+1)
		if err := e.value(s.Member, v.Index(i), itemKey, params); err != nil {
			return err
		}
	}
	return nil
}

func (e QueryEncoder) mapValue(m *shape.Member, v reflect.Value, key string, params url.Values) error {
	s := m.Target
	if s.Key == nil || s.Value == nil {
		return unsupported(key, s)
	}
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return mismatch(key, s, v.Type())
	}

	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	entryPrefix := key + ".entry"
	if m.IsFlattened() {
		entryPrefix = key
	}
	keyName := memberNameOr(s.Key, "key")
	valueName := memberNameOr(s.Value, "value")

	for i, k := range keys {
		prefix := entryPrefix + "." + strconv.Itoa(i+1)
		params.Set(prefix+"."+keyName, k)
		item := v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key()))
		if err := e.value(s.Value, item, prefix+"."+valueName, params); err != nil {
			return err
		}
	}
	return nil
}

func replaceLast(key, name string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i+1] + name
	}
	return name
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
