package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ParseXML parses an XML body into a document node whose only child is the
// root element. Element and attribute names are reduced to their local part.
func ParseXML(data []byte) (*Node, error) {
	doc := &Node{Kind: KindDocument}
	if isBlank(data) {
		return doc, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	stack := []*Node{doc}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: xml: %v", ErrMalformedBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := stack[len(stack)-1]
			if parent.Kind == KindDocument && len(parent.children) > 0 {
				return nil, fmt.Errorf("%w: xml: multiple root elements", ErrMalformedBody)
			}
			el := &Node{Name: t.Name.Local, Kind: KindElement}
			if len(t.Attr) > 0 {
				el.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					el.attrs[a.Name.Local] = a.Value
				}
			}
			parent.children = append(parent.children, el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			cur := stack[len(stack)-1]
			if cur.Kind == KindElement {
				cur.Text += string(t)
			}
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: xml: unexpected end of document", ErrMalformedBody)
	}
	if len(doc.children) == 0 {
		return nil, fmt.Errorf("%w: xml: no root element", ErrMalformedBody)
	}
	return doc, nil
}
