package codec

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/zero-day-ai/protocol/shape"
)

// JSONEncoder writes a Go value as the body of the JSON protocol.
type JSONEncoder struct {
	// Token produces idempotency tokens for empty token members.
	// Nil leaves such members out.
	Token func() string
}

// Encode returns the JSON document for v described by structure s.
// A nil value encodes as an empty object.
func (e JSONEncoder) Encode(s *shape.Shape, v any) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	if s.Kind != shape.KindStructure {
		return nil, unsupported("", s)
	}
	doc, err := e.structure(s, reflect.ValueOf(v), "")
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (e JSONEncoder) structure(s *shape.Shape, v reflect.Value, path string) (map[string]any, error) {
	out := make(map[string]any, len(s.Members))
	for _, m := range s.Members {
		if m.Location != shape.LocationBody || m.IsStreaming() {
			continue
		}
		name := m.LocationName()
		memberPath := joinPath(path, m.Name)

		fv, ok := memberValue(v, m)
		if !ok {
			if m.IdempotencyToken && e.Token != nil {
				out[name] = e.Token()
			}
			continue
		}
		val, err := e.value(m.Target, fv, memberPath)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

func (e JSONEncoder) value(s *shape.Shape, v reflect.Value, path string) (any, error) {
	if s == nil || !s.Kind.Valid() {
		return nil, unsupported(path, s)
	}
	v, ok := indirect(v)
	if !ok {
		return nil, nil
	}

	switch s.Kind {
	case shape.KindStructure:
		if v.Kind() != reflect.Struct && v.Kind() != reflect.Map {
			return nil, mismatch(path, s, v.Type())
		}
		return e.structure(s, v, path)

	case shape.KindList:
		if s.Member == nil {
			return nil, unsupported(path, s)
		}
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return nil, mismatch(path, s, v.Type())
		}
		items := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, err := e.value(s.Member.Target, v.Index(i), path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil

	case shape.KindMap:
		if s.Key == nil || s.Value == nil {
			return nil, unsupported(path, s)
		}
		if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
			return nil, mismatch(path, s, v.Type())
		}
		entries := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			item, err := e.value(s.Value.Target, iter.Value(), path+"["+k+"]")
			if err != nil {
				return nil, err
			}
			entries[k] = item
		}
		return entries, nil
	}

	return jsonScalar(s, v, path)
}

func jsonScalar(s *shape.Shape, v reflect.Value, path string) (any, error) {
	switch s.Kind {
	case shape.KindString:
		if v.Kind() == reflect.String {
			return v.String(), nil
		}
	case shape.KindInteger, shape.KindLong:
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return v.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return v.Uint(), nil
		}
	case shape.KindFloat, shape.KindDouble:
		var f float64
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			f = v.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(v.Int())
		default:
			return nil, mismatch(path, s, v.Type())
		}
		switch {
		case math.IsNaN(f):
			return "NaN", nil
		case math.IsInf(f, 1):
			return "Infinity", nil
		case math.IsInf(f, -1):
			return "-Infinity", nil
		}
		return f, nil
	case shape.KindBoolean:
		if v.Kind() == reflect.Bool {
			return v.Bool(), nil
		}
	case shape.KindTimestamp:
		if v.Type() == timeType {
			t := v.Interface().(time.Time)
			format := timestampFormat(s, shape.TimestampEpochSeconds)
			if format == shape.TimestampEpochSeconds {
				return json.Number(FormatTimestamp(t, format)), nil
			}
			return FormatTimestamp(t, format), nil
		}
	case shape.KindBlob:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes()), nil
		}
		if v.Kind() == reflect.String {
			return base64.StdEncoding.EncodeToString([]byte(v.String())), nil
		}
	}
	return nil, mismatch(path, s, v.Type())
}
