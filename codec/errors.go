package codec

import (
	"errors"
	"fmt"

	"github.com/zero-day-ai/protocol/shape"
)

// ErrTargetMismatch is returned when a Go value cannot hold, or does not
// hold, the kind of data a shape describes.
var ErrTargetMismatch = errors.New("codec: target type mismatch")

// TypeCoercionError reports a leaf value whose text could not be converted
// to the scalar kind declared by its shape.
type TypeCoercionError struct {
	// Path locates the value, e.g. "Instances[2].LaunchTime".
	Path string
	Kind shape.Kind
	Text string
	Err  error
}

func (e *TypeCoercionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("codec: %s: cannot coerce %q to %s", e.Path, e.Text, e.Kind)
	}
	return fmt.Sprintf("codec: %s: cannot coerce %q to %s: %v", e.Path, e.Text, e.Kind, e.Err)
}

func (e *TypeCoercionError) Unwrap() error {
	return e.Err
}

// UnsupportedShapeError reports metadata that references a shape kind the
// engine does not know. It indicates a model/engine version mismatch and is
// never retried.
type UnsupportedShapeError struct {
	Path  string
	Shape string
	Kind  shape.Kind
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("codec: %s: unsupported shape %s (kind %q)", e.Path, e.Shape, e.Kind)
}

func unsupported(path string, s *shape.Shape) error {
	if s == nil {
		return &UnsupportedShapeError{Path: path, Shape: "<nil>"}
	}
	return &UnsupportedShapeError{Path: path, Shape: s.String(), Kind: s.Kind}
}

func mismatch(path string, s *shape.Shape, got any) error {
	return fmt.Errorf("%w: %s: %s cannot be stored in %v", ErrTargetMismatch, path, s, got)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
