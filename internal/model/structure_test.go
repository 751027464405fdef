package model

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/protogen/internal/diagnostics"
)

func discardCollector() *diagnostics.SlogCollector {
	return diagnostics.NewSlogCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStructure_BitfieldRunDetection(t *testing.T) {
	node := parseXML(t, `<Structure name="Flags">
		<Data name="a" inMemoryType="unsigned8" bits="3"/>
		<Data name="b" inMemoryType="unsigned8" bits="5"/>
		<Data name="c" inMemoryType="unsigned8" bits="8"/>
	</Structure>`)

	diag := discardCollector()
	s := ParseStructure(node, "", diag)
	require.Len(t, s.Children, 3)

	a := s.Children[0].(*Primitive)
	b := s.Children[1].(*Primitive)
	c := s.Children[2].(*Primitive)

	assert.False(t, a.TerminatesBitfield)
	assert.False(t, b.TerminatesBitfield)
	assert.True(t, c.TerminatesBitfield)

	assert.Equal(t, 0, a.StartingBitCount)
	assert.Equal(t, 3, b.StartingBitCount)
	assert.Equal(t, 8, c.StartingBitCount)

	assert.True(t, s.HasBitfields)
}

func TestStructure_DefaultRevocation(t *testing.T) {
	node := parseXML(t, `<Structure name="Weird">
		<Data name="a" inMemoryType="unsigned32" default="1"/>
		<Data name="b" inMemoryType="unsigned32"/>
	</Structure>`)

	diag := discardCollector()
	s := ParseStructure(node, "", diag)

	a := s.Children[0].(*Primitive)
	assert.Equal(t, "", a.Default, "default must be revoked because a non-default field follows it")
	assert.Len(t, diag.All(), 1)
}

func TestStructure_DependsOnValidation(t *testing.T) {
	node := parseXML(t, `<Structure name="Opt">
		<Data name="hasOpt" inMemoryType="unsigned8"/>
		<Data name="opt" inMemoryType="unsigned32" dependsOn="hasOpt"/>
		<Data name="bad" inMemoryType="unsigned32" dependsOn="doesNotExist"/>
	</Structure>`)

	diag := discardCollector()
	s := ParseStructure(node, "", diag)

	opt := s.Children[1].(*Primitive)
	bad := s.Children[2].(*Primitive)

	assert.Equal(t, "hasOpt", opt.DependsOn)
	assert.Equal(t, "", bad.DependsOn)
	assert.NotEmpty(t, diag.All())
}

func TestStructure_VariableLengthArrayLength(t *testing.T) {
	node := parseXML(t, `<Structure name="Blob">
		<Data name="count" inMemoryType="uint8"/>
		<Data name="payload" inMemoryType="uint8" array="16" variableArray="count"/>
	</Structure>`)

	diag := discardCollector()
	s := ParseStructure(node, "", diag)

	length := s.EncodedLength()
	assert.Equal(t, "17", length.Max, "count(1) + payload(16), collapsed to a plain constant")
	assert.Equal(t, "1", length.Min)
}

func TestStructure_EmitEncode_ArrayOfMultiFieldStructure(t *testing.T) {
	node := parseXML(t, `<Structure name="Path">
		<Structure name="points" array="4">
			<Data name="x" inMemoryType="unsigned16"/>
			<Data name="y" inMemoryType="unsigned16"/>
		</Structure>
	</Structure>`)

	diag := discardCollector()
	s := ParseStructure(node, "", diag)
	require.Len(t, s.Children, 1)
	nested := s.Children[0].(*Structure)
	require.Len(t, nested.Children, 2)

	ctx := EmitContext{Receiver: "user->", CursorVar: "byteindex", BitCountVar: "bitcount"}
	encode := nested.EmitEncode(ctx)
	joined := ""
	for _, l := range encode {
		joined += l + "\n"
	}

	assert.Contains(t, joined, "user->points[i].x")
	assert.Contains(t, joined, "user->points[i].y")
	assert.NotContains(t, joined, "points[i].points", "the structure's own name must not be appended twice onto an array-of-structure receiver")

	decode := nested.EmitDecode(ctx)
	joinedDecode := ""
	for _, l := range decode {
		joinedDecode += l + "\n"
	}
	assert.Contains(t, joinedDecode, "user->points[i].x")
	assert.Contains(t, joinedDecode, "user->points[i].y")
	assert.NotContains(t, joinedDecode, "points[i].points")
}

func TestStructure_RenderStructDeclaration(t *testing.T) {
	node := parseXML(t, `<Structure name="Point" comment="A point">
		<Data name="x" inMemoryType="unsigned16"/>
		<Data name="y" inMemoryType="unsigned16"/>
	</Structure>`)

	diag := discardCollector()
	s := ParseStructure(node, "My", diag)

	decl := s.RenderStructDeclaration(true)
	assert.Contains(t, decl, "typedef struct")
	assert.Contains(t, decl, "MyPoint_t")
	assert.Contains(t, decl, "uint16_t")
}
