package model

import (
	"fmt"
	"strings"

	"github.com/shapestone/protogen/internal/diagnostics"
	"github.com/shapestone/protogen/internal/xmlast"
)

// InterfaceMode selects which C calling convention a Packet emits.
type InterfaceMode int

const (
	// StructureInterface emits encode/decodeXxxPacketStructure(pkt, *user).
	StructureInterface InterfaceMode = iota
	// ParameterInterface emits encode/decodeXxxPacket(pkt, field1, field2, ...)
	// with one C parameter per top-level field.
	ParameterInterface
)

// Packet specializes Structure with an identifier and an interface-style
// choice; it forbids array/dependsOn on itself.
type Packet struct {
	*Structure

	ID     string
	Mode   InterfaceMode
	Prefix string
}

// ParsePacket builds a Packet from a parsed <Packet> node.
func ParsePacket(node *xmlast.Node, prefix string, diag diagnostics.Collector) *Packet {
	s := ParseStructure(node, prefix, diag)

	if s.Array != "" {
		diag.Addf(s.Name, "array is forbidden on a packet; clearing")
		s.Array = ""
	}
	if s.DependsOn != "" {
		diag.Addf(s.Name, "dependsOn is forbidden on a packet; clearing")
		s.DependsOn = ""
	}

	p := &Packet{
		Structure: s,
		ID:        node.AttrOr("ID", ""),
		Prefix:    prefix,
	}

	structureWanted, _ := node.BoolAttr("structureInterface")
	parameterWanted, _ := node.BoolAttr("parameterInterface")

	switch {
	case structureWanted && !parameterWanted:
		p.Mode = StructureInterface
	case parameterWanted && !structureWanted:
		p.Mode = ParameterInterface
	case len(s.Children) > 1:
		p.Mode = StructureInterface
	default:
		p.Mode = ParameterInterface
	}

	return p
}

// IDLiteral is the public form of idLiteral, used by the emitter to render
// Markdown documentation outside this package.
func (p *Packet) IDLiteral() string {
	return p.idLiteral()
}

// idLiteral returns the configured packet-ID literal, or the UPPER_SNAKE
// form of the packet's prefixed name (Prefix + Name) when ID was left unset.
func (p *Packet) idLiteral() string {
	if p.ID != "" {
		return p.ID
	}
	return upperSnake(p.Prefix + p.Name)
}

func upperSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// PacketIDAccessorName returns the name of the get<Prefix><Name>PacketID
// function.
func (p *Packet) PacketIDAccessorName() string {
	return fmt.Sprintf("get%s%sPacketID", p.Prefix, p.Name)
}

// MinDataLengthAccessorName returns the name of the
// get<Prefix><Name>MinDataLength function.
func (p *Packet) MinDataLengthAccessorName() string {
	return fmt.Sprintf("get%s%sMinDataLength", p.Prefix, p.Name)
}

// RenderAccessors renders the two utility accessor function definitions
// specified for every packet.
func (p *Packet) RenderAccessors() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uint32_t %s(void)\n{\n    return (uint32_t)%s;\n}\n\n", p.PacketIDAccessorName(), p.idLiteral())

	minLen := p.EncodedLength().Min
	if minLen == "" {
		minLen = "0"
	}
	fmt.Fprintf(&b, "int %s(void)\n{\n    return %s;\n}\n", p.MinDataLengthAccessorName(), minLen)
	return b.String()
}

// EncodeFunctionName returns the C function name for this packet's encoder,
// which varies with the chosen interface mode.
func (p *Packet) EncodeFunctionName() string {
	if p.Mode == StructureInterface {
		return fmt.Sprintf("encode%s%sPacketStructure", p.Prefix, p.Name)
	}
	return fmt.Sprintf("encode%s%sPacket", p.Prefix, p.Name)
}

// DecodeFunctionName mirrors EncodeFunctionName for the decode direction.
func (p *Packet) DecodeFunctionName() string {
	if p.Mode == StructureInterface {
		return fmt.Sprintf("decode%s%sPacketStructure", p.Prefix, p.Name)
	}
	return fmt.Sprintf("decode%s%sPacket", p.Prefix, p.Name)
}

// ParameterList renders the comma-joined "type name" parameter list used by
// the parameter interface, one entry per top-level primitive/structure
// field.
func (p *Packet) ParameterList() string {
	var parts []string
	for _, child := range p.Children {
		switch c := child.(type) {
		case *Primitive:
			if c.CType() == "" {
				continue
			}
			name := c.Name
			if c.Array != "" {
				name = fmt.Sprintf("%s[%s]", c.Name, c.Array)
			}
			parts = append(parts, fmt.Sprintf("%s %s", c.CType(), name))
		case *Structure:
			name := c.Name
			if c.Array != "" {
				name = fmt.Sprintf("%s[%s]", c.Name, c.Array)
			}
			parts = append(parts, fmt.Sprintf("%s %s", c.TypeName, name))
		}
	}
	return strings.Join(parts, ", ")
}

// RenderEncode emits the full encode function body. An empty packet (zero
// children) reduces to a single finishPacket call.
func (p *Packet) RenderEncode(ctx EmitContext) []string {
	lines := []string{
		fmt.Sprintf("void %s(void* pkt%s)", p.EncodeFunctionName(), p.parameterSuffix()),
		"{",
		"    int byteindex = 0;",
		"    uint8_t* data = getProtoPacketDataPointer(pkt);",
	}
	if p.HasBitfields {
		lines = append(lines, "    int bitcount = 0;")
	}
	if p.NeedsIterator {
		lines = append(lines, "    int i;")
	}

	if len(p.Children) == 0 {
		lines = append(lines, "    finishProtoPacket(pkt, 0, "+p.idLiteral()+");", "}")
		return lines
	}

	for _, l := range p.structureEncodeBody(ctx) {
		lines = append(lines, "    "+l)
	}
	lines = append(lines, "    finishProtoPacket(pkt, byteindex, "+p.idLiteral()+");", "}")
	return lines
}

// RenderDecode emits the full decode function body, including the packet-ID
// and minimum-length checks and, when the packet carries default fields, the
// non-default/default split with a short-packet guard in between.
func (p *Packet) RenderDecode(ctx EmitContext) []string {
	lines := []string{
		fmt.Sprintf("int %s(const void* pkt%s)", p.DecodeFunctionName(), p.parameterSuffix()),
		"{",
		"    int byteindex = 0;",
		"    int numBytes;",
		"    const uint8_t* data = startProtoPacketDecode(pkt, "+p.idLiteral()+", &numBytes);",
	}
	if p.HasBitfields {
		lines = append(lines, "    int bitcount = 0;")
	}
	if p.NeedsIterator {
		lines = append(lines, "    int i;")
	}

	lines = append(lines,
		"    if (data == NULL)",
		"    {",
		"        return 0;",
		"    }",
		fmt.Sprintf("    if (numBytes < %s)", p.minDataLengthExpr()),
		"    {",
		"        return 0;",
		"    }",
	)

	if len(p.Children) == 0 {
		lines = append(lines, "    return 1;", "}")
		return lines
	}

	nonDefault, defaultFields := p.splitDefaultSuffix()

	for _, l := range p.encodeChildrenDecode(ctx, nonDefault) {
		lines = append(lines, "    "+l)
	}

	if len(defaultFields) > 0 {
		for _, l := range p.defaultInitLines(defaultFields) {
			lines = append(lines, "    "+l)
		}

		if length := p.EncodedLength(); length.NonDefault != length.Max && len(nonDefault) > 0 {
			lines = append(lines,
				"    if (numBytes < byteindex)",
				"    {",
				"        return 1;",
				"    }",
			)
		}

		for _, l := range p.encodeChildrenDecode(ctx, defaultFields) {
			lines = append(lines, "    "+l)
		}
	}

	lines = append(lines, "    return 1;", "}")
	return lines
}

// ParameterSuffix is the public form of parameterSuffix, used by the
// emitter to render a matching prototype outside this package.
func (p *Packet) ParameterSuffix() string {
	return p.parameterSuffix()
}

func (p *Packet) parameterSuffix() string {
	if p.Mode == StructureInterface {
		return fmt.Sprintf(", %s* user", p.TypeName)
	}
	if params := p.ParameterList(); params != "" {
		return ", " + params
	}
	return ""
}

func (p *Packet) minDataLengthExpr() string {
	if min := p.EncodedLength().Min; min != "" {
		return min
	}
	return "0"
}

// splitDefaultSuffix partitions the packet's top-level children into the
// non-default prefix and the default-valued trailing suffix (the only shape
// revokeNonTrailingDefaults permits).
func (p *Packet) splitDefaultSuffix() (nonDefault, defaults []Encodable) {
	for _, child := range p.Children {
		if prim, ok := child.(*Primitive); ok && prim.Default != "" {
			defaults = append(defaults, child)
			continue
		}
		nonDefault = append(nonDefault, child)
	}
	return nonDefault, defaults
}

func (p *Packet) defaultInitLines(defaults []Encodable) []string {
	var lines []string
	for _, child := range defaults {
		prim, ok := child.(*Primitive)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("user->%s = %s;", prim.Name, prim.Default))
	}
	return lines
}

func (p *Packet) structureEncodeBody(ctx EmitContext) []string {
	ctx.Receiver = "user->"
	if p.Mode == ParameterInterface {
		ctx.Receiver = ""
	}
	var lines []string
	for _, child := range p.Children {
		switch c := child.(type) {
		case *Primitive:
			lines = append(lines, c.EmitEncode(ctx)...)
		case *Structure:
			lines = append(lines, c.EmitEncode(ctx)...)
		}
	}
	return lines
}

func (p *Packet) encodeChildrenDecode(ctx EmitContext, children []Encodable) []string {
	ctx.Receiver = "user->"
	if p.Mode == ParameterInterface {
		ctx.Receiver = ""
	}
	var lines []string
	for _, child := range children {
		switch c := child.(type) {
		case *Primitive:
			lines = append(lines, c.EmitDecode(ctx)...)
		case *Structure:
			lines = append(lines, c.EmitDecode(ctx)...)
		}
	}
	return lines
}
