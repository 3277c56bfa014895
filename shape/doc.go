// Package shape describes the data shapes and operations of a service API.
//
// Shapes are static metadata: they are produced offline (by a code generator
// or by loading a service model with package model) and are only read by the
// protocol engine. A Shape is never modified once it has been built and may be
// shared by any number of concurrent requests.
//
// # Building shapes
//
// Scalar shapes are created with the kind constructors:
//
//	name := shape.String()
//	count := shape.Integer()
//	created := shape.Timestamp()
//
// Structures are built from members. Member options control the wire name,
// list flattening and where the member is placed on the wire:
//
//	input := shape.Structure("ListThingsInput",
//		shape.NewMember("MaxItems", shape.Integer()),
//		shape.NewMember("Filters", shape.List(shape.NewMember("member", filter)),
//			shape.WithWireName("Filter")),
//		shape.NewMember("ClientToken", shape.String(), shape.AsIdempotencyToken()),
//	)
//
// Operations tie an input and output shape to a name:
//
//	op := &shape.Operation{Name: "ListThings", Input: input, Output: output}
package shape
