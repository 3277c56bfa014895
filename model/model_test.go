package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/protocol/shape"
)

func TestLoad(t *testing.T) {
	m, err := Load("testdata/service.yaml")
	require.NoError(t, err)

	assert.Equal(t, "queue", m.Metadata.ServiceName)
	assert.Equal(t, "2012-11-05", m.Metadata.APIVersion)
	assert.Equal(t, ProtocolQuery, m.Metadata.GetProtocol())
	assert.Equal(t, "1.0", m.Metadata.GetJSONVersion())
	assert.Equal(t, []string{"GetQueueUrl", "SendMessage"}, m.OperationNames())
}

func TestLoadDirectory(t *testing.T) {
	m, err := Load("testdata")
	require.NoError(t, err)
	_, ok := m.Operation("SendMessage")
	assert.True(t, ok)

	_, err = Load(t.TempDir())
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolvedShapes(t *testing.T) {
	m, err := Load("testdata/service.yaml")
	require.NoError(t, err)

	req, ok := m.Shape("SendMessageRequest")
	require.True(t, ok)
	assert.Equal(t, shape.KindStructure, req.Kind)

	var names []string
	for _, mem := range req.Members {
		names = append(names, mem.Name)
	}
	assert.Equal(t, []string{
		"QueueUrl", "MessageBody", "QueueOwner", "DelaySeconds",
		"Tags", "Attributes", "DeduplicationId", "TraceHeader",
	}, names, "member order follows the file")

	queueURL, _ := req.MemberByName("QueueUrl")
	assert.True(t, queueURL.Required)
	assert.Equal(t, shape.KindString, queueURL.Target.Kind)

	delay, _ := req.MemberByName("DelaySeconds")
	assert.False(t, delay.Required)

	owner, _ := req.MemberByName("QueueOwner")
	assert.True(t, owner.HostLabel)

	token, _ := req.MemberByName("DeduplicationId")
	assert.True(t, token.IdempotencyToken)

	trace, _ := req.MemberByName("TraceHeader")
	assert.Equal(t, shape.LocationHeader, trace.Location)
	assert.Equal(t, "X-Trace", trace.HeaderName)

	tags, _ := req.MemberByName("Tags")
	require.Equal(t, shape.KindList, tags.Target.Kind)
	assert.Equal(t, "Tag", tags.Target.Member.LocationName())

	attrs, _ := req.MemberByName("Attributes")
	assert.Equal(t, "Attribute", attrs.LocationName())
	assert.True(t, attrs.IsFlattened())
	assert.Equal(t, "Name", attrs.Target.Key.LocationName())

	// Shapes are shared, not copied.
	str, _ := m.Shape("String")
	assert.Same(t, str, queueURL.Target)
}

func TestResolvedOperations(t *testing.T) {
	m, err := Load("testdata/service.yaml")
	require.NoError(t, err)

	op, ok := m.Operation("SendMessage")
	require.True(t, ok)
	assert.Equal(t, "POST", op.Method())
	assert.Equal(t, "{QueueOwner}.", op.HostPrefix)
	assert.Equal(t, "SendMessageRequest", op.Input.Name)
	assert.Equal(t, "SendMessageResult", op.Output.Name)
	require.Len(t, op.Errors, 2)
	assert.Equal(t, "AWS.SimpleQueueService.NonExistentQueue", op.Errors[0].Code())
	assert.Equal(t, "Throttled", op.Errors[1].Code())

	_, ok = m.Operation("DeleteQueue")
	assert.False(t, ok)
}

func TestExceptionShapes(t *testing.T) {
	m, err := Load("testdata/service.yaml")
	require.NoError(t, err)

	var codes []string
	for _, s := range m.ExceptionShapes() {
		codes = append(codes, s.Code())
	}
	assert.Equal(t, []string{"AWS.SimpleQueueService.NonExistentQueue", "Throttled"}, codes)
}

func TestRecursiveShapes(t *testing.T) {
	m, err := Parse([]byte(`
metadata: {protocol: json, jsonVersion: "1.1", targetPrefix: Tree_20240101}
shapes:
  Node:
    type: structure
    members:
      Value: {shape: Str}
      Children: {shape: NodeList}
  NodeList:
    type: list
    member: {shape: Node}
  Str: {type: string}
`))
	require.NoError(t, err)
	assert.Equal(t, ProtocolJSON, m.Metadata.GetProtocol())
	assert.Equal(t, "1.1", m.Metadata.GetJSONVersion())

	node, _ := m.Shape("Node")
	children, _ := node.MemberByName("Children")
	assert.Same(t, node, children.Target.Member.Target)
}

func TestUnknownKindIsKept(t *testing.T) {
	m, err := Parse([]byte(`
shapes:
  Doc: {type: document}
  Small: {type: short}
`))
	require.NoError(t, err)

	doc, _ := m.Shape("Doc")
	assert.Equal(t, shape.Kind("document"), doc.Kind)
	assert.False(t, doc.Kind.Valid())

	small, _ := m.Shape("Small")
	assert.Equal(t, shape.KindInteger, small.Kind)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad yaml", yaml: "metadata: ["},
		{name: "unknown protocol", yaml: "metadata: {protocol: rest-xml}"},
		{name: "unknown json version", yaml: "metadata: {protocol: json, jsonVersion: '2.0'}"},
		{name: "unknown member shape", yaml: "shapes: {S: {type: structure, members: {A: {shape: Missing}}}}"},
		{name: "list without member", yaml: "shapes: {L: {type: list}}"},
		{name: "map without value", yaml: "shapes: {S: {type: string}, M: {type: map, key: {shape: S}}}"},
		{name: "bad timestamp format", yaml: "shapes: {T: {type: timestamp, timestampFormat: julian}}"},
		{name: "bad location", yaml: "shapes: {S: {type: string}, R: {type: structure, members: {A: {shape: S, location: uri}}}}"},
		{name: "members not a mapping", yaml: "shapes: {R: {type: structure, members: [a, b]}}"},
		{name: "unknown operation input", yaml: "operations: {Op: {input: {shape: Nope}}}"},
		{name: "error is not an exception", yaml: "shapes: {S: {type: structure}}\noperations: {Op: {errors: [{shape: S}]}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestLoadReadsWrittenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service.yml")
	require.NoError(t, os.WriteFile(path, []byte("metadata: {serviceName: ec2, protocol: EC2}\n"), 0o644))

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ProtocolEC2, m.Metadata.GetProtocol())
	assert.Empty(t, m.OperationNames())
}
