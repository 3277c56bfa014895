// Package codec converts between document trees, shapes and Go values.
//
// The Unmarshaller walks a shape and a document.Node side by side and writes
// the result into a Go value: a struct whose exported fields are named after
// the shape members, a map[string]any, a slice, or a scalar. The same walk
// serves success responses and modeled exceptions.
//
// QueryEncoder and JSONEncoder are the mirror image: they walk a shape and a
// Go value and produce form parameters or a JSON document.
//
// Nothing in this package keeps state between calls; Unmarshaller and the
// encoders are small value types that may be copied and shared freely.
package codec
