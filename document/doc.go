// Package document provides a protocol-neutral tree for parsed response bodies.
//
// Both XML and JSON payloads are parsed into the same Node type so that the
// structural unmarshaller and the error dispatcher can walk a response without
// knowing which wire format produced it. Trees are immutable after parsing.
package document
