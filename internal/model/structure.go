package model

import (
	"fmt"
	"strings"

	"github.com/shapestone/protogen/internal/diagnostics"
	"github.com/shapestone/protogen/internal/lengthexpr"
	"github.com/shapestone/protogen/internal/xmlast"
)

// Structure is a composite Encodable: an ordered list of children, nested
// enumerations, and optional array/variableArray/dependsOn metadata of its
// own (a Structure may itself be a repeated or conditional field of its
// parent).
type Structure struct {
	Name          string
	TypeName      string
	Comment       string
	Array         string
	VariableArray string
	DependsOn     string
	Children      []Encodable
	Enums         []*Enum

	HasBitfields  bool
	NeedsIterator bool
	HasDefaults   bool

	length Length
}

// typeNameFor computes a structure's TypeName as prefix+name+"_t", where
// prefix is threaded in from the enclosing Protocol's "prefix" attribute.
func typeNameFor(prefix, name string) string {
	return prefix + name + "_t"
}

// ParseStructure builds a Structure from a parsed <Structure> node. prefix
// is the protocol-wide type-name prefix; diag collects non-fatal findings
// scoped to this structure's name.
func ParseStructure(node *xmlast.Node, prefix string, diag diagnostics.Collector) *Structure {
	s := &Structure{
		Name:    node.AttrOr("name", ""),
		Comment: node.AttrOr("comment", ""),
	}
	s.TypeName = typeNameFor(prefix, s.Name)

	s.Array, _ = node.Attr("array")
	s.VariableArray, _ = node.Attr("variableArray")
	s.DependsOn, _ = node.Attr("dependsOn")

	if s.VariableArray != "" && s.DependsOn != "" {
		diag.Addf(s.Name, "variableArray and dependsOn both set; clearing dependsOn")
		s.DependsOn = ""
	}

	for _, e := range node.ChildrenByTag("Enum") {
		s.Enums = append(s.Enums, ParseEnum(e))
	}
	for _, e := range s.Enums {
		e.ComputeNumberList()
	}

	for _, child := range node.Children {
		switch child.Tag {
		case "Data":
			s.Children = append(s.Children, ParsePrimitive(child))
		case "Structure":
			s.Children = append(s.Children, ParseStructure(child, prefix, diag))
		case "Enum":
			// Already handled above.
		default:
			diag.Addf(s.Name, "unknown child element %q ignored", child.Tag)
		}
	}

	s.validateReferences(diag)
	s.detectBitfieldRuns()
	s.revokeNonTrailingDefaults(diag)
	s.computeFlags()
	s.computeLength()

	return s
}

// validateReferences enforces that every variableArray and dependsOn names a
// prior sibling that is a primitive, in memory and encoded; offending
// attributes are cleared with a diagnostic.
func (s *Structure) validateReferences(diag diagnostics.Collector) {
	seen := map[string]*Primitive{}

	for _, child := range s.Children {
		switch c := child.(type) {
		case *Primitive:
			if c.VariableArray != "" {
				if !s.validSiblingPredicate(seen, c.VariableArray) {
					diag.Addf(s.Name, "%s: variableArray references unknown or invalid sibling %q; clearing", c.Name, c.VariableArray)
					c.VariableArray = ""
				}
			}
			if c.DependsOn != "" {
				if c.IsBitfield() {
					diag.Addf(s.Name, "%s: dependsOn is forbidden on bitfields; clearing", c.Name)
					c.DependsOn = ""
				} else if c.VariableArray != "" {
					diag.Addf(s.Name, "%s: variableArray and dependsOn both set; clearing dependsOn", c.Name)
					c.DependsOn = ""
				} else if !s.validSiblingPredicate(seen, c.DependsOn) {
					diag.Addf(s.Name, "%s: dependsOn references unknown or invalid sibling %q; clearing", c.Name, c.DependsOn)
					c.DependsOn = ""
				}
			}
			seen[c.Name] = c

		case *Structure:
			if c.VariableArray != "" && !s.validSiblingPredicate(seen, c.VariableArray) {
				diag.Addf(s.Name, "%s: variableArray references unknown or invalid sibling %q; clearing", c.Name, c.VariableArray)
				c.VariableArray = ""
			}
			if c.DependsOn != "" && !s.validSiblingPredicate(seen, c.DependsOn) {
				diag.Addf(s.Name, "%s: dependsOn references unknown or invalid sibling %q; clearing", c.Name, c.DependsOn)
				c.DependsOn = ""
			}
		}
	}
}

// validSiblingPredicate reports whether name refers to a previously seen
// primitive field that is both in memory and encoded.
func (s *Structure) validSiblingPredicate(seen map[string]*Primitive, name string) bool {
	sib, ok := seen[name]
	if !ok {
		return false
	}
	return !sib.NotInMemory && !sib.NotEncoded
}

// detectBitfieldRuns performs the single left-to-right sweep that groups
// adjacent bitfield primitives into runs: only the last member of each run
// is marked TerminatesBitfield, and each member's StartingBitCount is the
// prior member's ending bit count, counted from the start of the run (not
// reduced mod 8) and reset to 0 for the next run.
func (s *Structure) detectBitfieldRuns() {
	var run []*Primitive
	bitOffset := 0

	flush := func() {
		if len(run) == 0 {
			return
		}
		run[len(run)-1].TerminatesBitfield = true
		totalBits := 0
		for _, f := range run {
			totalBits += f.BitfieldBits
		}
		run[len(run)-1].runBytes = (totalBits + 7) / 8
		run = nil
		bitOffset = 0
	}

	for _, child := range s.Children {
		p, ok := child.(*Primitive)
		if !ok || !p.IsBitfield() {
			flush()
			continue
		}
		p.StartingBitCount = bitOffset
		bitOffset += p.BitfieldBits
		run = append(run, p)
	}
	flush()
}

// revokeNonTrailingDefaults enforces that default-valued fields are only
// permitted as a contiguous suffix: the first non-default field found after
// an earlier default silently clears every earlier default, with a
// diagnostic.
func (s *Structure) revokeNonTrailingDefaults(diag diagnostics.Collector) {
	var defaultsSoFar []*Primitive

	for _, child := range s.Children {
		p, ok := child.(*Primitive)
		if !ok {
			// A nested Structure child with no default concept of its own
			// still breaks the run, same as a non-default primitive.
			if len(defaultsSoFar) > 0 {
				s.revoke(defaultsSoFar, diag)
				defaultsSoFar = nil
			}
			continue
		}

		if p.Default != "" {
			defaultsSoFar = append(defaultsSoFar, p)
			continue
		}

		if len(defaultsSoFar) > 0 {
			s.revoke(defaultsSoFar, diag)
			defaultsSoFar = nil
		}
	}
}

func (s *Structure) revoke(fields []*Primitive, diag diagnostics.Collector) {
	for _, f := range fields {
		diag.Addf(s.Name, "%s: default value revoked; a non-default field follows it", f.Name)
		f.Default = ""
	}
}

func (s *Structure) computeFlags() {
	for _, child := range s.Children {
		s.HasBitfields = s.HasBitfields || child.UsesBitfields()
		s.HasDefaults = s.HasDefaults || child.UsesDefaults()

		if child.IsArrayField() {
			s.NeedsIterator = true
		}
		if cs, ok := child.(*Structure); ok && cs.NeedsIterator && cs.IsArrayField() {
			s.NeedsIterator = true
		}
	}
}

// computeLength aggregates child lengths: Max is the straightforward sum;
// Min treats any dependsOn field as absent (zero) and, when
// variableArray/array are both set, scales by the variableArray-to-array
// ratio rather than assuming the full fixed capacity is present.
func (s *Structure) computeLength() {
	var total Length
	for _, child := range s.Children {
		total = AddLength(total, child.EncodedLength())
	}

	if s.Array != "" {
		total.Max = lengthexpr.MultiplyBy(total.Max, s.Array)
		total.NonDefault = lengthexpr.MultiplyBy(total.NonDefault, s.Array)

		if s.VariableArray != "" {
			total.Min = lengthexpr.MultiplyBy(total.Min, s.VariableArray)
		} else {
			total.Min = lengthexpr.MultiplyBy(total.Min, s.Array)
		}
	}

	if s.DependsOn != "" {
		total.Min = "0"
	}

	s.length = total
}

// FieldName implements Encodable.
func (s *Structure) FieldName() string { return s.Name }

// IsPrimitiveField implements Encodable.
func (s *Structure) IsPrimitiveField() bool { return false }

// IsArrayField implements Encodable.
func (s *Structure) IsArrayField() bool { return s.Array != "" }

// UsesBitfields implements Encodable.
func (s *Structure) UsesBitfields() bool { return s.HasBitfields }

// UsesDefaults implements Encodable.
func (s *Structure) UsesDefaults() bool { return s.HasDefaults }

// EncodedLength implements Encodable.
func (s *Structure) EncodedLength() Length { return s.length }

// RenderStructDeclaration returns a "typedef struct { ... } TypeName;" for
// this structure, preceded by any nested structure declarations. When the
// structure has exactly one field and alwaysCreate is false, no declaration
// is emitted at all — callers inline the single field instead.
func (s *Structure) RenderStructDeclaration(alwaysCreate bool) string {
	var b strings.Builder

	for _, child := range s.Children {
		if nested, ok := child.(*Structure); ok {
			if decl := nested.RenderStructDeclaration(false); decl != "" {
				b.WriteString(decl)
				b.WriteString("\n")
			}
		}
	}

	if len(s.Children) == 1 && !alwaysCreate {
		return b.String()
	}

	lines := s.memberLines()
	if len(lines) == 0 {
		return b.String()
	}

	typeCol, semiCol := alignColumns(lines)

	if s.Comment != "" {
		fmt.Fprintf(&b, "/*! %s */\n", s.Comment)
	}
	b.WriteString("typedef struct\n{\n")
	for _, ln := range lines {
		b.WriteString("    ")
		b.WriteString(padMember(ln, typeCol, semiCol))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "} %s;\n", s.TypeName)

	return b.String()
}

type memberLine struct {
	ctype   string
	name    string
	comment string
}

func (s *Structure) memberLines() []memberLine {
	var lines []memberLine

	for _, child := range s.Children {
		switch c := child.(type) {
		case *Primitive:
			if c.CType() == "" {
				continue
			}
			name := c.Name
			if c.Array != "" {
				name = fmt.Sprintf("%s[%s]", c.Name, c.Array)
			}
			lines = append(lines, memberLine{ctype: c.CType(), name: name, comment: c.Comment})

		case *Structure:
			name := c.Name
			if c.Array != "" {
				name = fmt.Sprintf("%s[%s]", c.Name, c.Array)
			}
			ctype := c.TypeName
			if len(c.Children) == 1 {
				if p, ok := c.Children[0].(*Primitive); ok && p.CType() != "" {
					ctype = p.CType()
				}
			}
			lines = append(lines, memberLine{ctype: ctype, name: name, comment: c.Comment})
		}
	}

	return lines
}

func alignColumns(lines []memberLine) (typeCol, semiCol int) {
	for _, ln := range lines {
		if len(ln.ctype)+1 > typeCol {
			typeCol = len(ln.ctype) + 1
		}
	}
	for _, ln := range lines {
		width := typeCol + len(ln.name) + 1
		if width > semiCol {
			semiCol = width
		}
	}
	return typeCol, semiCol
}

func padMember(ln memberLine, typeCol, semiCol int) string {
	s := ln.ctype + strings.Repeat(" ", typeCol-len(ln.ctype)) + ln.name + ";"
	if ln.comment != "" {
		pad := semiCol + 1 - len(s)
		if pad < 1 {
			pad = 1
		}
		s += strings.Repeat(" ", pad) + "/*!< " + ln.comment + " */"
	}
	return s
}
