package exception

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zero-day-ai/protocol/shape"
)

var (
	// ErrDuplicateCode is returned when two entries claim the same code.
	ErrDuplicateCode = errors.New("exception: duplicate error code")

	// ErrEmptyCode is returned for a modeled entry without a code.
	ErrEmptyCode = errors.New("exception: empty error code")
)

// Entry binds an error code to the shape of its body and the factory that
// creates the Go value. Shape may be nil, in which case no modeled members
// are unmarshalled.
type Entry struct {
	Code  string
	Shape *shape.Shape
	New   Factory
}

// Registry maps error codes to entries. It is immutable once built and safe
// for concurrent use.
type Registry struct {
	byCode   map[string]Entry
	fallback Entry
}

// NewRegistry builds a registry from a default entry and the modeled
// entries. The default entry's code is ignored; a nil default factory
// becomes NewServiceException. Entries without a factory also get
// NewServiceException.
func NewRegistry(def Entry, entries ...Entry) (*Registry, error) {
	if def.New == nil {
		def.New = NewServiceException
	}
	def.Code = ""

	r := &Registry{
		byCode:   make(map[string]Entry, len(entries)),
		fallback: def,
	}
	for _, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("%w (shape %s)", ErrEmptyCode, e.Shape)
		}
		if _, ok := r.byCode[e.Code]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCode, e.Code)
		}
		if e.New == nil {
			e.New = NewServiceException
		}
		r.byCode[e.Code] = e
	}
	return r, nil
}

// Lookup returns the entry registered for code. A miss, including the empty
// code, returns the default entry and false.
func (r *Registry) Lookup(code string) (Entry, bool) {
	if e, ok := r.byCode[code]; ok && code != "" {
		return e, true
	}
	return r.fallback, false
}

// Default returns the default entry.
func (r *Registry) Default() Entry {
	return r.fallback
}

// Codes returns the registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.byCode))
	for c := range r.byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of modeled entries.
func (r *Registry) Len() int {
	return len(r.byCode)
}
