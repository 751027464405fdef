package emit

import (
	"fmt"
	"strings"

	"github.com/shapestone/protogen/internal/lengthexpr"
	"github.com/shapestone/protogen/internal/model"
)

// row is one line of the five-column encoding table, collected during the
// depth-first walk before column widths are known.
type row struct {
	bytes    string
	name     string
	encoding string
	repeat   string
	desc     string
}

// MarkdownForPacket renders a packet's documentation section: a heading
// anchored on its packet ID, identifier/length bullets, nested-enum tables,
// and the five-column encoding table.
func MarkdownForPacket(pkt *model.Packet, idLiteral, resolvedNumericID string) string {
	var b strings.Builder

	anchor := strings.ToLower(strings.Map(func(r rune) rune {
		if r == ' ' {
			return '-'
		}
		return r
	}, resolvedNumericID))

	fmt.Fprintf(&b, "## %s {#%s}\n\n", pkt.Name, anchor)
	fmt.Fprintf(&b, "* Packet ID: `%s`", idLiteral)
	if resolvedNumericID != "" && resolvedNumericID != idLiteral {
		fmt.Fprintf(&b, " (%s)", resolvedNumericID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "* Minimum data length: %s bytes\n\n", pkt.EncodedLength().Min)

	for _, e := range pkt.Enums {
		if md := e.RenderMarkdown(nil); md != "" {
			b.WriteString(md)
			b.WriteString("\n")
		}
	}

	rows := walkEncodables(pkt.Children, "", "0", 1)
	b.WriteString(renderRows(rows))

	return b.String()
}

// walkEncodables performs the depth-first walk that threads a nested
// outline (1, 1.1, 1.2, 2, …) and a running startByte expression through
// every field, producing one table row per leaf/structure field.
func walkEncodables(children []model.Encodable, outlinePrefix, startByte string, startIndex int) []row {
	var rows []row
	cursor := startByte

	for i, child := range children {
		outline := fmt.Sprintf("%d", startIndex+i)
		if outlinePrefix != "" {
			outline = outlinePrefix + "." + outline
		}

		length := child.EncodedLength()
		bytesCell := lengthexpr.Markdown(length.Max)

		repeatCell := ""
		if child.IsArrayField() {
			repeatCell = "*"
		}

		switch c := child.(type) {
		case *model.Primitive:
			rows = append(rows, row{
				bytes:    bytesCell,
				name:     outline + ") " + c.Name,
				encoding: encodingLabel(c),
				repeat:   repeatCell,
				desc:     c.Comment,
			})

		case *model.Structure:
			rows = append(rows, row{
				bytes:    bytesCell,
				name:     outline + ") " + c.Name,
				encoding: "Structure",
				repeat:   repeatCell,
				desc:     c.Comment,
			})
			rows = append(rows, walkEncodables(c.Children, outline, cursor, 1)...)
		}

		cursor = lengthexpr.Add(cursor, length.Max)
	}

	return rows
}

func encodingLabel(p *model.Primitive) string {
	if p.IsBitfield() {
		return fmt.Sprintf("B(%d)", p.BitfieldBits)
	}
	return p.InMemoryType
}

// renderRows emits the five-column table with widths computed in a first
// pass and the body written in a second, and empty encoding/repeat cells
// rendered with the merged-cell marker.
func renderRows(rows []row) string {
	headers := []string{"Bytes", "Name", "Enc", "Repeat", "Description"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	cells := make([][5]string, len(rows))
	for i, r := range rows {
		enc := r.encoding
		if enc == "" {
			enc = "||"
		}
		repeat := r.repeat
		if repeat == "" {
			repeat = "||"
		}
		cells[i] = [5]string{r.bytes, r.name, enc, repeat, r.desc}
		for j, v := range cells[i] {
			if len(v) > widths[j] {
				widths[j] = len(v)
			}
		}
	}

	var b strings.Builder
	writeRow := func(vals [5]string) {
		b.WriteString("|")
		for i, v := range vals {
			fmt.Fprintf(&b, " %-*s |", widths[i], v)
		}
		b.WriteString("\n")
	}

	writeRow([5]string{headers[0], headers[1], headers[2], headers[3], headers[4]})

	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(" " + strings.Repeat("-", w) + " |")
	}
	b.WriteString("\n")

	for _, c := range cells {
		writeRow(c)
	}

	return b.String()
}
