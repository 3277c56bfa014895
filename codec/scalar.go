package codec

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/zero-day-ai/protocol/shape"
)

// Format is the body encoding a codec operates on.
type Format int

const (
	// FormatXML is used by the query protocol and its EC2 dialect.
	FormatXML Format = iota

	// FormatJSON is used by the JSON protocol.
	FormatJSON
)

// DefaultTimestampFormat returns the timestamp encoding of the format when
// a shape does not declare one.
func (f Format) DefaultTimestampFormat() shape.TimestampFormat {
	if f == FormatJSON {
		return shape.TimestampEpochSeconds
	}
	return shape.TimestampISO8601
}

const (
	iso8601Layout  = "2006-01-02T15:04:05.999999999Z"
	iso8601NoZone  = "2006-01-02T15:04:05.999999999"
	rfc822Layout   = "Mon, 02 Jan 2006 15:04:05 GMT"
	rfc822NumZone  = time.RFC1123Z
	rfc822ZoneName = time.RFC1123
)

var timeType = reflect.TypeOf(time.Time{})

func timestampFormat(s *shape.Shape, def shape.TimestampFormat) shape.TimestampFormat {
	if s.TimestampFormat != shape.TimestampDefault {
		return s.TimestampFormat
	}
	return def
}

// ParseTimestamp parses text in the given format.
func ParseTimestamp(text string, format shape.TimestampFormat) (time.Time, error) {
	text = strings.TrimSpace(text)
	switch format {
	case shape.TimestampEpochSeconds:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return time.Time{}, err
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(math.Round(frac*1e3))*int64(time.Millisecond)).UTC(), nil
	case shape.TimestampRFC822:
		for _, layout := range []string{rfc822ZoneName, rfc822NumZone} {
			if t, err := time.Parse(layout, text); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("not an RFC 822 timestamp")
	default:
		if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
			return t.UTC(), nil
		}
		t, err := time.Parse(iso8601NoZone, text)
		if err != nil {
			return time.Time{}, fmt.Errorf("not an ISO 8601 timestamp")
		}
		return t.UTC(), nil
	}
}

// FormatTimestamp renders t in the given format.
func FormatTimestamp(t time.Time, format shape.TimestampFormat) string {
	t = t.UTC()
	switch format {
	case shape.TimestampEpochSeconds:
		return strconv.FormatFloat(float64(t.UnixMilli())/1e3, 'f', -1, 64)
	case shape.TimestampRFC822:
		return t.Format(rfc822Layout)
	default:
		return t.Format(iso8601Layout)
	}
}

// parseScalar converts wire text to the natural Go value of a scalar shape:
// string, int64, float64, bool, time.Time or []byte.
func parseScalar(s *shape.Shape, text string, tsDefault shape.TimestampFormat) (any, error) {
	switch s.Kind {
	case shape.KindString:
		return text, nil
	case shape.KindInteger, shape.KindLong:
		bits := 64
		if s.Kind == shape.KindInteger {
			bits = 32
		}
		return strconv.ParseInt(strings.TrimSpace(text), 10, bits)
	case shape.KindFloat, shape.KindDouble:
		return strconv.ParseFloat(strings.TrimSpace(text), 64)
	case shape.KindBoolean:
		return strconv.ParseBool(strings.TrimSpace(text))
	case shape.KindTimestamp:
		return ParseTimestamp(text, timestampFormat(s, tsDefault))
	case shape.KindBlob:
		return base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	}
	return nil, fmt.Errorf("kind %q is not a scalar", s.Kind)
}

// assignScalar stores a natural scalar value into dst. dst is never a
// pointer; pointers are resolved by the caller.
func assignScalar(dst reflect.Value, v any) bool {
	switch x := v.(type) {
	case string:
		if dst.Kind() == reflect.String {
			dst.SetString(x)
			return true
		}
	case int64:
		switch dst.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if dst.OverflowInt(x) {
				return false
			}
			dst.SetInt(x)
			return true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if x < 0 || dst.OverflowUint(uint64(x)) {
				return false
			}
			dst.SetUint(uint64(x))
			return true
		}
	case float64:
		if dst.Kind() == reflect.Float32 || dst.Kind() == reflect.Float64 {
			if dst.Kind() == reflect.Float32 && !math.IsInf(x, 0) && !math.IsNaN(x) && dst.OverflowFloat(x) {
				return false
			}
			dst.SetFloat(x)
			return true
		}
	case bool:
		if dst.Kind() == reflect.Bool {
			dst.SetBool(x)
			return true
		}
	case time.Time:
		if dst.Type() == timeType {
			dst.Set(reflect.ValueOf(x))
			return true
		}
	case []byte:
		if dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes(x)
			return true
		}
	}
	return false
}

// scalarText renders a Go value held for scalar shape s as wire text.
func scalarText(s *shape.Shape, v reflect.Value, tsDefault shape.TimestampFormat) (string, bool) {
	switch s.Kind {
	case shape.KindString:
		if v.Kind() == reflect.String {
			return v.String(), true
		}
	case shape.KindInteger, shape.KindLong:
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(v.Int(), 10), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(v.Uint(), 10), true
		}
	case shape.KindFloat, shape.KindDouble:
		switch v.Kind() {
		case reflect.Float32:
			return strconv.FormatFloat(v.Float(), 'f', -1, 32), true
		case reflect.Float64:
			return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(v.Int(), 10), true
		}
	case shape.KindBoolean:
		if v.Kind() == reflect.Bool {
			return strconv.FormatBool(v.Bool()), true
		}
	case shape.KindTimestamp:
		if v.Type() == timeType {
			return FormatTimestamp(v.Interface().(time.Time), timestampFormat(s, tsDefault)), true
		}
	case shape.KindBlob:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes()), true
		}
		if v.Kind() == reflect.String {
			return base64.StdEncoding.EncodeToString([]byte(v.String())), true
		}
	}
	return "", false
}
