package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON parses a JSON body. The returned node is the top-level value;
// object members keep their document order. An empty body produces an empty
// document.
func ParseJSON(data []byte) (*Node, error) {
	if isBlank(data) {
		return &Node{Kind: KindDocument}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := readJSONValue(dec, "")
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrMalformedBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: json: trailing data after top-level value", ErrMalformedBody)
	}
	return root, nil
}

func readJSONValue(dec *json.Decoder, name string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readJSONObject(dec, name)
		case '[':
			return readJSONArray(dec, name)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return &Node{Name: name, Kind: KindScalar, Text: t}, nil
	case json.Number:
		return &Node{Name: name, Kind: KindScalar, Text: t.String()}, nil
	case bool:
		text := "false"
		if t {
			text = "true"
		}
		return &Node{Name: name, Kind: KindScalar, Text: text}, nil
	case nil:
		return &Node{Name: name, Kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func readJSONObject(dec *json.Decoder, name string) (*Node, error) {
	obj := &Node{Name: name, Kind: KindObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not string", tok)
		}
		child, err := readJSONValue(dec, key)
		if err != nil {
			return nil, err
		}
		obj.children = append(obj.children, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func readJSONArray(dec *json.Decoder, name string) (*Node, error) {
	arr := &Node{Name: name, Kind: KindArray}
	for dec.More() {
		child, err := readJSONValue(dec, "")
		if err != nil {
			return nil, err
		}
		arr.children = append(arr.children, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
