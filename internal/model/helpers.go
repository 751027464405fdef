package model

import "strings"

// EmitContext carries the per-structure emission state threaded through
// every Encodable's EmitEncode/EmitDecode call: endianness, the C
// expression used to reach the enclosing struct (or "" for the
// parameter-interface style, where each field is a bare local), and the
// shared byteindex/bitcount cursor names.
type EmitContext struct {
	BigEndian   bool
	Receiver    string // e.g. "user->" ; empty for parameter-interface locals
	CursorVar   string // name of the running byte index, conventionally "byteindex"
	BitCountVar string // name of the running bit offset from the first byte of the current bitfield run
}

// accessor returns the C expression for reading/writing this field: either
// "user->field" (structure interface) or "field" (parameter interface,
// where the field is a bare function argument).
func (ctx EmitContext) accessor(fieldName string) string {
	return ctx.Receiver + fieldName
}

// encodeHelperFor returns the fieldencode.h helper function name for
// encoding a value of the given wire type, honoring endianness for
// multi-byte types.
func encodeHelperFor(wireType string, bigEndian bool) string {
	return helperName("To", wireType, bigEndian)
}

// decodeHelperFor returns the fielddecode.h helper function name for
// decoding a value of the given wire type.
func decodeHelperFor(wireType string, bigEndian bool) string {
	return helperName("From", wireType, bigEndian)
}

func helperName(direction, wireType string, bigEndian bool) string {
	base := strings.ToLower(wireType)

	endian := "Le"
	if bigEndian {
		endian = "Be"
	}

	norm := normalizeWireType(base)

	if direction == "To" {
		return norm + "To" + endian + "Bytes"
	}
	return norm + "From" + endian + "Bytes"
}

// normalizeWireType collapses ProtoGen's alternate spellings ("unsigned16",
// "uint16") onto the canonical helper-name stem used by the shipped
// fieldencode/fielddecode runtime.
func normalizeWireType(t string) string {
	switch t {
	case "unsigned8":
		return "uint8"
	case "unsigned16":
		return "uint16"
	case "unsigned32":
		return "uint32"
	case "unsigned64":
		return "uint64"
	case "signed8":
		return "int8"
	case "signed16":
		return "int16"
	case "signed32":
		return "int32"
	case "signed64":
		return "int64"
	case "float":
		return "float32"
	case "double":
		return "float64"
	default:
		return t
	}
}
