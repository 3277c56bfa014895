// Package model loads service descriptions from YAML files and turns them
// into the shapes and operations used by the protocol engine.
//
// A service file looks like this:
//
//	metadata:
//	  serviceName: sqs
//	  apiVersion: "2012-11-05"
//	  protocol: query
//	operations:
//	  GetQueueUrl:
//	    input: {shape: GetQueueUrlRequest}
//	    output: {shape: GetQueueUrlResult}
//	    errors:
//	      - shape: QueueDoesNotExist
//	shapes:
//	  GetQueueUrlRequest:
//	    type: structure
//	    required: [QueueName]
//	    members:
//	      QueueName: {shape: String}
//	  ...
//
// Member order in the file is preserved.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/protocol/shape"
)

// ErrInvalidModel is returned for service files that cannot be resolved.
var ErrInvalidModel = errors.New("model: invalid service model")

// Protocol names accepted in metadata.
const (
	ProtocolQuery = "query"
	ProtocolEC2   = "ec2"
	ProtocolJSON  = "json"
)

// Model is a parsed and resolved service description.
type Model struct {
	Metadata   Metadata                `yaml:"metadata"`
	Operations map[string]OperationDef `yaml:"operations"`
	Shapes     map[string]ShapeDef     `yaml:"shapes"`

	shapes map[string]*shape.Shape
	ops    map[string]*shape.Operation
}

// Metadata describes the service as a whole.
type Metadata struct {
	ServiceName  string `yaml:"serviceName"`
	APIVersion   string `yaml:"apiVersion"`
	Protocol     string `yaml:"protocol"`
	JSONVersion  string `yaml:"jsonVersion,omitempty"`
	TargetPrefix string `yaml:"targetPrefix,omitempty"`
}

// GetProtocol returns the normalised protocol name, defaulting to query.
func (m Metadata) GetProtocol() string {
	if m.Protocol == "" {
		return ProtocolQuery
	}
	return strings.ToLower(m.Protocol)
}

// GetJSONVersion returns the JSON protocol version, defaulting to 1.0.
func (m Metadata) GetJSONVersion() string {
	if m.JSONVersion == "" {
		return "1.0"
	}
	return m.JSONVersion
}

// OperationDef is the YAML form of an operation.
type OperationDef struct {
	HTTP     HTTPDef      `yaml:"http,omitempty"`
	Input    *Ref         `yaml:"input,omitempty"`
	Output   *Ref         `yaml:"output,omitempty"`
	Errors   []Ref        `yaml:"errors,omitempty"`
	Endpoint *EndpointDef `yaml:"endpoint,omitempty"`
}

// HTTPDef holds the HTTP binding of an operation.
type HTTPDef struct {
	Method     string `yaml:"method,omitempty"`
	RequestURI string `yaml:"requestUri,omitempty"`
}

// EndpointDef holds endpoint customisations of an operation.
type EndpointDef struct {
	HostPrefix string `yaml:"hostPrefix,omitempty"`
}

// Ref names a shape.
type Ref struct {
	Shape string `yaml:"shape"`
}

// ShapeDef is the YAML form of a shape.
type ShapeDef struct {
	Type            string     `yaml:"type"`
	Members         MemberDefs `yaml:"members,omitempty"`
	Required        []string   `yaml:"required,omitempty"`
	Member          *MemberDef `yaml:"member,omitempty"`
	Key             *MemberDef `yaml:"key,omitempty"`
	Value           *MemberDef `yaml:"value,omitempty"`
	Flattened       bool       `yaml:"flattened,omitempty"`
	TimestampFormat string     `yaml:"timestampFormat,omitempty"`
	Streaming       bool       `yaml:"streaming,omitempty"`
	Exception       bool       `yaml:"exception,omitempty"`
	Error           *ErrorDef  `yaml:"error,omitempty"`
}

// ErrorDef carries the wire code of an exception shape.
type ErrorDef struct {
	Code string `yaml:"code,omitempty"`
}

// MemberDef is the YAML form of a member reference.
type MemberDef struct {
	Name             string `yaml:"-"`
	Shape            string `yaml:"shape"`
	LocationName     string `yaml:"locationName,omitempty"`
	QueryName        string `yaml:"queryName,omitempty"`
	Location         string `yaml:"location,omitempty"`
	Flattened        bool   `yaml:"flattened,omitempty"`
	HostLabel        bool   `yaml:"hostLabel,omitempty"`
	IdempotencyToken bool   `yaml:"idempotencyToken,omitempty"`
}

// MemberDefs is an ordered list of structure members. In YAML it is written
// as a mapping from member name to definition.
type MemberDefs []MemberDef

// UnmarshalYAML keeps the mapping order of the members.
func (d *MemberDefs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: members must be a mapping", value.Line)
	}
	out := make(MemberDefs, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var m MemberDef
		if err := value.Content[i+1].Decode(&m); err != nil {
			return err
		}
		m.Name = value.Content[i].Value
		out = append(out, m)
	}
	*d = out
	return nil
}

// Load reads a service model from path. If path is a directory, service.yaml
// or service.yml inside it is used.
func Load(path string) (*Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	modelPath := path
	if info.IsDir() {
		modelPath = ""
		for _, name := range []string{"service.yaml", "service.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				modelPath = candidate
				break
			}
		}
		if modelPath == "" {
			return nil, fmt.Errorf("no service.yaml or service.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return Parse(data)
}

// Parse parses and resolves a service model.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.resolve(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Shape returns the resolved shape with the given name.
func (m *Model) Shape(name string) (*shape.Shape, bool) {
	s, ok := m.shapes[name]
	return s, ok
}

// Operation returns the resolved operation with the given name.
func (m *Model) Operation(name string) (*shape.Operation, bool) {
	op, ok := m.ops[name]
	return op, ok
}

// OperationNames returns the operation names in sorted order.
func (m *Model) OperationNames() []string {
	names := make([]string, 0, len(m.ops))
	for name := range m.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExceptionShapes returns every exception shape, sorted by error code.
func (m *Model) ExceptionShapes() []*shape.Shape {
	var out []*shape.Shape
	for _, s := range m.shapes {
		if s.Exception {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}
