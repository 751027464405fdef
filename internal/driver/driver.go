// Package driver implements the top-level document walk: it owns the parsed
// XML tree for the lifetime of one invocation, resolves per-element "file"
// overrides, dispatches Enum/Structure/Packet declarations to the model
// package, and exposes the global enum symbol table used to substitute an
// enumerator name with its resolved numeric form in generated Markdown.
package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shapestone/protogen/internal/diagnostics"
	"github.com/shapestone/protogen/internal/model"
	"github.com/shapestone/protogen/internal/xmlast"
)

// ErrMalformedXML wraps every xmlast parse failure surfaced by Load.
var ErrMalformedXML = errors.New("malformed protocol description")

// ErrMissingRoot is returned when the document has no <Protocol> root.
var ErrMissingRoot = errors.New("missing Protocol root element")

// Module is one emittable unit: a top-level Structure or Packet, together
// with the output file stem it was assigned (the "file" attribute override,
// or <Prefix><Name> by default).
type Module struct {
	FileStem string
	Packet   *model.Packet   // nil when this module is a plain Structure
	Structure *model.Structure
}

// Document is the fully-resolved result of one XML protocol description:
// the protocol metadata, every top-level enum, and every top-level
// structure/packet module in declaration order.
type Document struct {
	Name      string
	Prefix    string
	API       string
	Version   string
	BigEndian bool

	Enums   []*model.Enum
	Modules []Module

	enumValueIndex map[string]string // enumerator name -> resolved numeric form
}

// Load parses input and walks the resulting tree into a Document. Parse
// failures are fatal per the error taxonomy (§7): the caller should treat a
// non-nil error as "exit 0, no partial output", never attempt to salvage a
// partial Document.
func Load(input string, diag diagnostics.Collector) (*Document, error) {
	root, err := xmlast.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	if root.Tag != "Protocol" {
		return nil, fmt.Errorf("%w: root element is %q", ErrMissingRoot, root.Tag)
	}

	doc := &Document{
		Name:           root.AttrOr("name", ""),
		Prefix:         root.AttrOr("prefix", ""),
		API:            root.AttrOr("api", ""),
		Version:        root.AttrOr("version", ""),
		BigEndian:      root.AttrOr("endian", "big") != "little",
		enumValueIndex: map[string]string{},
	}

	for _, child := range root.Children {
		switch child.Tag {
		case "Enum":
			e := model.ParseEnum(child)
			e.ComputeNumberList()
			doc.Enums = append(doc.Enums, e)
			doc.indexEnum(e)

		case "Structure":
			s := model.ParseStructure(child, doc.Prefix, diag)
			doc.Modules = append(doc.Modules, Module{
				FileStem:  doc.fileStem(child, s.Name),
				Structure: s,
			})

		case "Packet":
			p := model.ParsePacket(child, doc.Prefix, diag)
			doc.Modules = append(doc.Modules, Module{
				FileStem: doc.fileStem(child, p.Name),
				Packet:   p,
			})

		default:
			diag.Addf(doc.Name, "unknown top-level element %q ignored", child.Tag)
		}
	}

	for _, m := range doc.Modules {
		if m.Structure != nil {
			for _, e := range m.Structure.Enums {
				doc.indexEnum(e)
			}
		}
		if m.Packet != nil {
			for _, e := range m.Packet.Enums {
				doc.indexEnum(e)
			}
		}
	}

	return doc, nil
}

// indexEnum records every value of e in the global symbol table used by
// ReplaceEnumerationNameWithValue.
func (d *Document) indexEnum(e *model.Enum) {
	for _, v := range e.Values {
		d.enumValueIndex[v.Name] = v.Numeric
	}
}

// fileStem resolves a module's "file" attribute override, defaulting to
// <Prefix><Name>.
func (d *Document) fileStem(node *xmlast.Node, name string) string {
	if override, ok := node.Attr("file"); ok && override != "" {
		return override
	}
	return d.Prefix + name
}

// ReplaceEnumerationNameWithValue scans text for any enumerator name from
// the global symbol table and substitutes its resolved numeric form,
// longest names first so a prefix enumerator name cannot shadow a longer
// one that contains it. Used by the Markdown emitter to show a packet ID's
// symbolic name alongside its numeric value.
func (d *Document) ReplaceEnumerationNameWithValue(text string) string {
	if len(d.enumValueIndex) == 0 {
		return text
	}

	names := make([]string, 0, len(d.enumValueIndex))
	for name := range d.enumValueIndex {
		names = append(names, name)
	}
	// Longest-first so "FOO_BAR" is substituted before "FOO" would
	// accidentally match inside it.
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}

	result := text
	for _, name := range names {
		if strings.Contains(result, name) {
			result = strings.ReplaceAll(result, name, d.enumValueIndex[name])
		}
	}
	return result
}

// IncludeDirectives returns the headers every emitted module for this
// document must include: the protocol-wide header is always present, per
// §4.7's "ProtocolName.h always included" rule.
func (d *Document) IncludeDirectives() []string {
	return []string{d.Prefix + d.Name + ".h"}
}
