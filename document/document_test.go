package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXML(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<ErrorResponse xmlns="http://example.com/doc/2010-05-08/">
  <Error>
    <Type>Sender</Type>
    <Code>Throttled</Code>
    <Message lang="en">slow down</Message>
  </Error>
  <RequestId>req-1</RequestId>
</ErrorResponse>`)

	doc, err := ParseXML(body)
	require.NoError(t, err)
	assert.Equal(t, KindDocument, doc.Kind)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "ErrorResponse", root.Name)
	assert.Equal(t, KindElement, root.Kind)

	assert.Equal(t, "Throttled", doc.Path("ErrorResponse", "Error", "Code").Text)
	assert.Equal(t, "req-1", root.Child("RequestId").Text)

	msg := root.Path("Error", "Message")
	lang, ok := msg.Attr("lang")
	assert.True(t, ok)
	assert.Equal(t, "en", lang)

	_, ok = msg.Attr("missing")
	assert.False(t, ok)
}

func TestParseXMLChildrenInDocumentOrder(t *testing.T) {
	doc, err := ParseXML([]byte(`<List><member>a</member><other/><member>b</member><member>c</member></List>`))
	require.NoError(t, err)

	root := doc.Root()
	names := make([]string, 0, len(root.Children()))
	for _, c := range root.Children() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"member", "other", "member", "member"}, names)

	var values []string
	for _, c := range root.ChildrenNamed("member") {
		values = append(values, c.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, values)
}

func TestParseXMLMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "truncated", body: `<ErrorResponse><Error><Code>Throttled`},
		{name: "mismatched tags", body: `<a><b></a></b>`},
		{name: "not xml", body: `{"__type":"NotFound"}`},
		{name: "two roots", body: `<a/><b/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseXML([]byte(tt.body))
			assert.Nil(t, doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedBody), "got %v", err)
		})
	}
}

func TestParseJSON(t *testing.T) {
	body := []byte(`{"__type":"com.example#NotFound","message":"missing","count":12,"ratio":1.50,"ok":true,"none":null,"tags":["a","b"],"nested":{"z":1,"a":2}}`)

	doc, err := ParseJSON(body)
	require.NoError(t, err)
	assert.Equal(t, KindObject, doc.Kind)

	assert.Equal(t, "com.example#NotFound", doc.Child("__type").Text)
	assert.Equal(t, "12", doc.Child("count").Text)
	assert.Equal(t, "1.50", doc.Child("ratio").Text, "numbers keep their literal form")
	assert.Equal(t, "true", doc.Child("ok").Text)
	assert.Equal(t, KindNull, doc.Child("none").Kind)
	assert.True(t, doc.Child("none").IsEmpty())

	tags := doc.Child("tags")
	require.Equal(t, KindArray, tags.Kind)
	require.Len(t, tags.Children(), 2)
	assert.Equal(t, "b", tags.Children()[1].Text)

	nested := doc.Child("nested")
	require.Len(t, nested.Children(), 2)
	assert.Equal(t, "z", nested.Children()[0].Name, "object members keep document order")
	assert.Equal(t, "a", nested.Children()[1].Name)

	assert.Same(t, doc, doc.Root())
}

func TestParseJSONMalformed(t *testing.T) {
	for _, body := range []string{`{"a":`, `{"a" 1}`, `[1,2`, `{} {}`, `<xml/>`} {
		t.Run(body, func(t *testing.T) {
			_, err := ParseJSON([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedBody)
		})
	}
}

func TestParseEmptyBody(t *testing.T) {
	for _, ct := range []string{"text/xml", "application/x-amz-json-1.1", ""} {
		doc, err := Parse([]byte("  \n"), ct)
		require.NoError(t, err)
		assert.Equal(t, KindDocument, doc.Kind)
		assert.Nil(t, doc.Root())
		assert.True(t, doc.IsEmpty())
	}
}

func TestParseSelectsEncodingFromContentType(t *testing.T) {
	doc, err := Parse([]byte(`{"a":"b"}`), "application/x-amz-json-1.0; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "b", doc.Child("a").Text)

	doc, err = Parse([]byte(`<a>b</a>`), "text/xml")
	require.NoError(t, err)
	assert.Equal(t, "b", doc.Root().Text)
}

func TestNilNodeAccessors(t *testing.T) {
	var n *Node
	assert.Nil(t, n.Child("x"))
	assert.Nil(t, n.ChildFold("x"))
	assert.Nil(t, n.Children())
	assert.Nil(t, n.ChildrenNamed("x"))
	assert.Nil(t, n.Path("a", "b"))
	assert.Nil(t, n.Root())
	assert.True(t, n.IsEmpty())
	_, ok := n.Attr("x")
	assert.False(t, ok)
}

func TestChildFold(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"Message":"upper"}`))
	require.NoError(t, err)
	assert.Nil(t, doc.Child("message"))
	assert.Equal(t, "upper", doc.ChildFold("message").Text)
}
