package model

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/protocol/shape"
)

// kindAliases maps model type names that have no kind of their own.
var kindAliases = map[string]shape.Kind{
	"byte":      shape.KindInteger,
	"short":     shape.KindInteger,
	"character": shape.KindString,
}

func (m *Model) resolve() error {
	switch m.Metadata.GetProtocol() {
	case ProtocolQuery, ProtocolEC2, ProtocolJSON:
	default:
		return fmt.Errorf("%w: unknown protocol %q", ErrInvalidModel, m.Metadata.Protocol)
	}
	if v := m.Metadata.GetJSONVersion(); v != "1.0" && v != "1.1" {
		return fmt.Errorf("%w: unknown json version %q", ErrInvalidModel, v)
	}

	// Allocate first so that recursive shapes can refer to each other.
	m.shapes = make(map[string]*shape.Shape, len(m.Shapes))
	for name := range m.Shapes {
		m.shapes[name] = &shape.Shape{Name: name}
	}
	for name, def := range m.Shapes {
		if err := m.fillShape(m.shapes[name], def); err != nil {
			return fmt.Errorf("%w: shape %s: %v", ErrInvalidModel, name, err)
		}
	}

	m.ops = make(map[string]*shape.Operation, len(m.Operations))
	for name, def := range m.Operations {
		op, err := m.operation(name, def)
		if err != nil {
			return fmt.Errorf("%w: operation %s: %v", ErrInvalidModel, name, err)
		}
		m.ops[name] = op
	}
	return nil
}

func (m *Model) fillShape(s *shape.Shape, def ShapeDef) error {
	kind := shape.Kind(def.Type)
	if alias, ok := kindAliases[def.Type]; ok {
		kind = alias
	}
	// Unknown kinds are kept; they are reported when a value of the shape
	// is actually encoded or decoded.
	s.Kind = kind
	s.Flattened = def.Flattened
	s.Streaming = def.Streaming
	s.Exception = def.Exception || def.Error != nil

	switch tf := shape.TimestampFormat(def.TimestampFormat); tf {
	case shape.TimestampDefault, shape.TimestampISO8601, shape.TimestampEpochSeconds, shape.TimestampRFC822:
		s.TimestampFormat = tf
	default:
		return fmt.Errorf("unknown timestamp format %q", def.TimestampFormat)
	}
	if def.Error != nil {
		s.ErrorCode = def.Error.Code
	}

	required := make(map[string]bool, len(def.Required))
	for _, r := range def.Required {
		required[r] = true
	}

	var err error
	switch kind {
	case shape.KindStructure:
		for _, md := range def.Members {
			mem, err := m.member(md)
			if err != nil {
				return err
			}
			mem.Required = required[md.Name]
			s.Members = append(s.Members, mem)
		}
	case shape.KindList:
		if def.Member == nil {
			return fmt.Errorf("list has no member")
		}
		if s.Member, err = m.member(*def.Member); err != nil {
			return err
		}
	case shape.KindMap:
		if def.Key == nil || def.Value == nil {
			return fmt.Errorf("map needs key and value")
		}
		if s.Key, err = m.member(*def.Key); err != nil {
			return err
		}
		if s.Value, err = m.member(*def.Value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) member(md MemberDef) (*shape.Member, error) {
	target, ok := m.shapes[md.Shape]
	if !ok {
		return nil, fmt.Errorf("member %s: unknown shape %q", md.Name, md.Shape)
	}
	mem := &shape.Member{
		Name:             md.Name,
		WireName:         md.LocationName,
		QueryName:        md.QueryName,
		Target:           target,
		Flattened:        md.Flattened,
		HostLabel:        md.HostLabel,
		IdempotencyToken: md.IdempotencyToken,
	}
	switch strings.ToLower(md.Location) {
	case "":
	case "header":
		mem.Location = shape.LocationHeader
		mem.HeaderName = md.LocationName
	default:
		return nil, fmt.Errorf("member %s: unsupported location %q", md.Name, md.Location)
	}
	return mem, nil
}

func (m *Model) operation(name string, def OperationDef) (*shape.Operation, error) {
	op := &shape.Operation{
		Name:       name,
		HTTPMethod: def.HTTP.Method,
		RequestURI: def.HTTP.RequestURI,
	}
	if def.Endpoint != nil {
		op.HostPrefix = def.Endpoint.HostPrefix
	}

	var err error
	if op.Input, err = m.ref(def.Input); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if op.Output, err = m.ref(def.Output); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	for _, r := range def.Errors {
		s, err := m.ref(&r)
		if err != nil {
			return nil, fmt.Errorf("errors: %w", err)
		}
		if s == nil {
			return nil, fmt.Errorf("errors: missing shape name")
		}
		if !s.Exception {
			return nil, fmt.Errorf("errors: shape %s is not an exception", s.Name)
		}
		op.Errors = append(op.Errors, s)
	}
	return op, nil
}

func (m *Model) ref(r *Ref) (*shape.Shape, error) {
	if r == nil || r.Shape == "" {
		return nil, nil
	}
	s, ok := m.shapes[r.Shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", r.Shape)
	}
	return s, nil
}
