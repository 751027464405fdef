// Package model implements the protocol description compiler's
// intermediate representation: the tagged-variant Encodable tree
// (Primitive | Structure | Packet), the enumeration model, and the
// cross-field validation that turns a parsed XML tree into something the
// emitter can walk.
package model

import "github.com/shapestone/protogen/internal/lengthexpr"

// Length holds the three parallel byte-length expressions threaded through
// every Encodable: the minimum possible encoded size, the maximum, and the
// size ignoring any trailing default fields.
type Length struct {
	Min        string
	Max        string
	NonDefault string
}

// AddLength combines two Length values field-wise with lengthexpr.Add.
func AddLength(a, b Length) Length {
	return Length{
		Min:        lengthexpr.Add(a.Min, b.Min),
		Max:        lengthexpr.Add(a.Max, b.Max),
		NonDefault: lengthexpr.Add(a.NonDefault, b.NonDefault),
	}
}

// Encodable is any node that contributes to the wire representation: a
// primitive field, a structure, or a packet (a structure specialisation).
// Composition plus this shared interface is preferred over a class
// hierarchy — the variant tag lives in the concrete type, not in a field.
type Encodable interface {
	// FieldName is the XML "name" attribute.
	FieldName() string
	// IsPrimitiveField reports whether this node is a leaf (Primitive).
	IsPrimitiveField() bool
	// IsArrayField reports whether this node repeats (fixed or variable
	// array count set).
	IsArrayField() bool
	// UsesBitfields reports whether this node (or, for a Structure, any of
	// its children) packs sub-byte bitfields.
	UsesBitfields() bool
	// UsesDefaults reports whether this node (or, for a Structure, any of
	// its children) has a default-valued trailing field.
	UsesDefaults() bool
	// EncodedLength returns this node's contribution to the enclosing
	// structure's byte-length algebra.
	EncodedLength() Length
}
