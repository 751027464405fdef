package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/protogen/internal/xmlast"
)

// EnumValue is one <Value> child of an <Enum>.
type EnumValue struct {
	Name     string
	RawValue string // the literal attribute text, verbatim; may be empty
	Numeric  string // resolved form: a decimal literal, or "base + offset"
	Comment  string
}

// Enum models an <Enum> element: its ordered value list and the numeric
// resolution/bit-width derived from it.
type Enum struct {
	Name        string
	Comment     string
	Values      []EnumValue
	MinBitWidth int
}

// ParseEnum builds an Enum from a parsed <Enum> node. It does not resolve
// numeric values; call ComputeNumberList for that.
func ParseEnum(node *xmlast.Node) *Enum {
	e := &Enum{
		Name:    node.AttrOr("name", ""),
		Comment: node.AttrOr("comment", ""),
	}

	for _, v := range node.ChildrenByTag("Value") {
		e.Values = append(e.Values, EnumValue{
			Name:     v.AttrOr("name", ""),
			RawValue: v.AttrOr("value", ""),
			Comment:  v.AttrOr("comment", ""),
		})
	}

	return e
}

// ComputeNumberList resolves each value's Numeric field by walking the list
// left to right: an empty raw value increments a running counter; a literal
// that parses as decimal, 0x-hex, or 0b-binary becomes that number and
// resets the counter to it+1; anything else (an unresolved forward
// reference) becomes a new symbolic base, and subsequent empty values are
// rendered "base + offset" until the next resolvable literal. It also sets
// MinBitWidth = max(8, ceil(log2(max_numeric_value + 1))), or 8 if no value
// ever resolved to a concrete number.
func (e *Enum) ComputeNumberList() {
	var (
		counter     int
		symBase     string
		symOffset   int
		haveSymBase bool
		maxNumeric  = -1
		haveNumeric bool
	)

	for i := range e.Values {
		v := &e.Values[i]
		raw := strings.TrimSpace(v.RawValue)

		switch {
		case raw == "":
			if haveSymBase {
				v.Numeric = symbolicForm(symBase, symOffset)
				symOffset++
			} else {
				v.Numeric = strconv.Itoa(counter)
				if counter > maxNumeric {
					maxNumeric = counter
					haveNumeric = true
				}
				counter++
			}

		default:
			if n, ok := parseEnumLiteral(raw); ok {
				v.Numeric = strconv.Itoa(n)
				counter = n + 1
				haveSymBase = false
				symOffset = 0
				if n > maxNumeric {
					maxNumeric = n
					haveNumeric = true
				}
			} else {
				// Unresolved symbol: becomes a new symbolic base.
				v.Numeric = raw
				symBase = raw
				symOffset = 1
				haveSymBase = true
			}
		}
	}

	if !haveNumeric {
		e.MinBitWidth = 8
		return
	}

	e.MinBitWidth = bitWidth(maxNumeric)
}

func symbolicForm(base string, offset int) string {
	if offset == 0 {
		return base
	}
	return fmt.Sprintf("%s + %d", base, offset)
}

// parseEnumLiteral parses a decimal, 0x-hex, or 0b-binary integer literal.
func parseEnumLiteral(raw string) (int, bool) {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "0x"):
		n, err := strconv.ParseInt(raw[2:], 16, 64)
		return int(n), err == nil
	case strings.HasPrefix(lower, "0b"):
		n, err := strconv.ParseInt(raw[2:], 2, 64)
		return int(n), err == nil
	default:
		n, err := strconv.Atoi(raw)
		return n, err == nil
	}
}

func bitWidth(maxValue int) int {
	width := 8
	need := 1
	for (1 << need) < maxValue+1 {
		need++
	}
	if need > width {
		width = need
	}
	return width
}

// RenderDeclaration returns a C "typedef enum { ... } Name;" with inline
// comments aligned to a column padded to a multiple of 4.
func (e *Enum) RenderDeclaration() string {
	if len(e.Values) == 0 {
		return ""
	}

	nameCol := 0
	for _, v := range e.Values {
		label := e.Name + "_" + v.Name
		if len(label)+1 > nameCol {
			nameCol = len(label) + 1
		}
	}
	nameCol = ((nameCol + 3) / 4) * 4

	var b strings.Builder
	if e.Comment != "" {
		fmt.Fprintf(&b, "/*! %s */\n", e.Comment)
	}
	fmt.Fprintf(&b, "typedef enum\n{\n")

	for i, v := range e.Values {
		label := e.Name + "_" + v.Name
		line := "    " + label + " = " + v.Numeric
		if i < len(e.Values)-1 {
			line += ","
		}
		if v.Comment != "" {
			pad := nameCol - len(label)
			if pad < 1 {
				pad = 1
			}
			line = "    " + label + strings.Repeat(" ", pad) + "= " + v.Numeric
			if i < len(e.Values)-1 {
				line += ","
			}
			line += " /*!< " + v.Comment + " */"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "} %s;\n", e.Name)

	return b.String()
}

// RenderMarkdown returns a three-column (Name | Value | Description) table.
// packetIDs maps an enumerator name to its anchor target when it is known to
// also be a packet ID, producing a Markdown link for that row's Name cell.
func (e *Enum) RenderMarkdown(packetIDs map[string]string) string {
	if len(e.Values) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", e.Name)
	if e.Comment != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Comment)
	}
	b.WriteString("| Name | Value | Description |\n")
	b.WriteString("| --- | --- | --- |\n")

	for _, v := range e.Values {
		label := v.Name
		if anchor, ok := packetIDs[v.Name]; ok {
			label = fmt.Sprintf("[%s](#%s)", v.Name, anchor)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, v.Numeric, v.Comment)
	}

	return b.String()
}
