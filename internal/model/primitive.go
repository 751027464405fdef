package model

import (
	"fmt"
	"strings"

	"github.com/shapestone/protogen/internal/lengthexpr"
	"github.com/shapestone/protogen/internal/xmlast"
)

// Primitive is a leaf Encodable: an integer, float, or bitfield field, with
// optional scaling, a fixed or variable-length array, a dependsOn
// predicate, a default or constant value, and not-encoded/not-in-memory
// flags.
type Primitive struct {
	Name          string
	InMemoryType  string
	EncodedType   string
	Array         string
	VariableArray string
	DependsOn     string
	Default       string
	Constant      string
	Comment       string
	NotEncoded    bool
	NotInMemory   bool

	BitfieldBits       int  // 0 when this field is not a bitfield
	StartingBitCount   int  // bit offset within the packed run, set by the owning Structure
	TerminatesBitfield bool // true only for the last member of a bitfield run
	runBytes           int  // set on the terminator: ceil(run total bits / 8)
}

// ParsePrimitive builds a Primitive from a parsed <Data> node.
func ParsePrimitive(node *xmlast.Node) *Primitive {
	p := &Primitive{
		Name:          node.AttrOr("name", ""),
		InMemoryType:  node.AttrOr("inMemoryType", ""),
		EncodedType:   node.AttrOr("encodedType", ""),
		Array:         node.AttrOr("array", ""),
		VariableArray: node.AttrOr("variableArray", ""),
		DependsOn:     node.AttrOr("dependsOn", ""),
		Default:       node.AttrOr("default", ""),
		Constant:      node.AttrOr("constant", ""),
		Comment:       node.AttrOr("comment", ""),
	}

	if v, ok := node.BoolAttr("notEncoded"); ok {
		p.NotEncoded = v
	}
	if v, ok := node.BoolAttr("notInMemory"); ok {
		p.NotInMemory = v
	}
	if bits, ok := node.IntAttr("bits"); ok {
		p.BitfieldBits = bits
	}

	return p
}

// FieldName implements Encodable.
func (p *Primitive) FieldName() string { return p.Name }

// IsPrimitiveField implements Encodable.
func (p *Primitive) IsPrimitiveField() bool { return true }

// IsArrayField implements Encodable.
func (p *Primitive) IsArrayField() bool { return p.Array != "" }

// UsesBitfields implements Encodable.
func (p *Primitive) UsesBitfields() bool { return p.IsBitfield() }

// UsesDefaults implements Encodable.
func (p *Primitive) UsesDefaults() bool { return p.Default != "" }

// IsBitfield reports whether this field packs into a sub-byte run.
func (p *Primitive) IsBitfield() bool { return p.BitfieldBits > 0 }

// IsConstant reports whether this field has a fixed wire value and is
// therefore absent from decode outputs.
func (p *Primitive) IsConstant() bool { return p.Constant != "" }

// wireTypeName returns the type name used to determine the on-wire size:
// the encoded type if given, otherwise the in-memory type.
func (p *Primitive) wireTypeName() string {
	if p.EncodedType != "" {
		return p.EncodedType
	}
	return p.InMemoryType
}

// elementByteSize is the wire size, in bytes, of a single (non-array,
// non-bitfield) instance of this field.
func (p *Primitive) elementByteSize() int {
	if p.IsBitfield() {
		return 0 // accounted for at the run terminator instead
	}
	return byteSizeForType(p.wireTypeName())
}

// EncodedLength implements Encodable. notEncoded fields never occupy wire
// bytes. A bitfield field that is not the run terminator also contributes
// zero — the whole run's size lands on the terminator. Fields with a
// default value contribute zero to Min and NonDefault (the structure may
// omit them from a short packet); fields with dependsOn contribute zero to
// Min (the dependency may not hold) but still count toward Max.
func (p *Primitive) EncodedLength() Length {
	if p.NotEncoded {
		return Length{Min: "0", Max: "0", NonDefault: "0"}
	}

	size := p.elementByteSize()
	if p.IsBitfield() {
		if p.TerminatesBitfield {
			size = p.runBytes
		} else {
			return Length{Min: "0", Max: "0", NonDefault: "0"}
		}
	}

	base := lengthexpr.Int(size)
	if p.Array != "" {
		base = lengthexpr.MultiplyBy(base, p.Array)
	}

	maxLen := base
	minLen := base
	nonDefault := base

	if p.VariableArray != "" {
		minLen = "0"
	}
	if p.Default != "" {
		minLen = "0"
		nonDefault = "0"
	}
	if p.DependsOn != "" {
		minLen = "0"
	}

	return Length{Min: minLen, Max: maxLen, NonDefault: nonDefault}
}

// CType returns the in-memory C type for this field's struct member, or ""
// for notInMemory fields.
func (p *Primitive) CType() string {
	if p.NotInMemory {
		return ""
	}
	return cTypeForType(p.InMemoryType)
}

// StructMemberDeclaration renders the "type name;" struct member line, or ""
// when the field is not stored in memory.
func (p *Primitive) StructMemberDeclaration() string {
	ctype := p.CType()
	if ctype == "" {
		return ""
	}

	name := p.Name
	if p.Array != "" {
		name = fmt.Sprintf("%s[%s]", p.Name, p.Array)
	}

	return fmt.Sprintf("%s %s;", ctype, name)
}

// byteSizeForType derives the wire size in bytes from a ProtoGen primitive
// type name such as "uint16", "unsigned32", "float32", or "double".
func byteSizeForType(t string) int {
	t = strings.ToLower(t)
	switch {
	case strings.HasSuffix(t, "64"):
		return 8
	case strings.HasSuffix(t, "32") && !strings.Contains(t, "float"):
		return 4
	case t == "float" || t == "float32":
		return 4
	case t == "double" || t == "float64":
		return 8
	case strings.HasSuffix(t, "16"):
		return 2
	case strings.HasSuffix(t, "8"):
		return 1
	default:
		return 1
	}
}

// cTypeForType maps a ProtoGen primitive type name to its C spelling.
func cTypeForType(t string) string {
	lower := strings.ToLower(t)
	switch lower {
	case "unsigned8", "uint8":
		return "uint8_t"
	case "unsigned16", "uint16":
		return "uint16_t"
	case "unsigned32", "uint32":
		return "uint32_t"
	case "unsigned64", "uint64":
		return "uint64_t"
	case "signed8", "int8":
		return "int8_t"
	case "signed16", "int16":
		return "int16_t"
	case "signed32", "int32":
		return "int32_t"
	case "signed64", "int64":
		return "int64_t"
	case "float32", "float":
		return "float"
	case "float64", "double":
		return "double"
	case "null", "":
		return ""
	default:
		// User-defined (typically an enum) type name: pass through.
		return t
	}
}

// bitfieldStorageType returns the narrowest unsigned C integer type that can
// hold a run of totalBits packed bits.
func bitfieldStorageType(totalBits int) string {
	switch {
	case totalBits <= 8:
		return "uint8_t"
	case totalBits <= 16:
		return "uint16_t"
	case totalBits <= 32:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}
