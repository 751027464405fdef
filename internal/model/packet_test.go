package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacket_EmptyPacket(t *testing.T) {
	node := parseXML(t, `<Packet name="Ping" ID="0x01"/>`)
	diag := discardCollector()
	p := ParsePacket(node, "", diag)

	assert.Equal(t, "encodePingPacket", p.EncodeFunctionName())
	assert.Equal(t, "decodePingPacket", p.DecodeFunctionName())

	ctx := EmitContext{BigEndian: true, CursorVar: "byteindex"}
	encode := strings.Join(p.RenderEncode(ctx), "\n")
	assert.Contains(t, encode, "finishProtoPacket(pkt, 0, 0x01);")

	decode := strings.Join(p.RenderDecode(ctx), "\n")
	assert.Contains(t, decode, "return 1;")
}

func TestPacket_SingleParameterInterface(t *testing.T) {
	node := parseXML(t, `<Packet name="Echo" ID="ECHO_ID"><Data name="n" inMemoryType="unsigned16"/></Packet>`)
	diag := discardCollector()
	p := ParsePacket(node, "", diag)

	assert.Equal(t, ParameterInterface, p.Mode)
	assert.Equal(t, "uint16_t n", p.ParameterList())
	assert.Equal(t, "2", p.EncodedLength().Min)

	ctx := EmitContext{BigEndian: true, CursorVar: "byteindex"}
	sig := p.RenderEncode(ctx)[0]
	assert.Equal(t, "void encodeEchoPacket(void* pkt, uint16_t n)", sig)
}

func TestPacket_VariableLengthArray(t *testing.T) {
	node := parseXML(t, `<Packet name="Blob" ID="2">
		<Data name="count" inMemoryType="uint8"/>
		<Data name="payload" inMemoryType="uint8" array="16" variableArray="count"/>
	</Packet>`)
	diag := discardCollector()
	p := ParsePacket(node, "", diag)

	ctx := EmitContext{BigEndian: true, CursorVar: "byteindex"}
	encode := strings.Join(p.RenderEncode(ctx), "\n")
	assert.Contains(t, encode, "for (i = 0; i < (int)user->count && i < 16; i++)")

	length := p.EncodedLength()
	assert.Equal(t, "1", length.Min)
	assert.Equal(t, "17", length.Max)
}

func TestPacket_TrailingDefaults(t *testing.T) {
	node := parseXML(t, `<Packet name="Triple" ID="3">
		<Data name="a" inMemoryType="unsigned32"/>
		<Data name="b" inMemoryType="unsigned32"/>
		<Data name="c" inMemoryType="unsigned32" default="0"/>
	</Packet>`)
	diag := discardCollector()
	p := ParsePacket(node, "", diag)
	assert.Equal(t, StructureInterface, p.Mode)

	ctx := EmitContext{BigEndian: true, CursorVar: "byteindex"}
	decode := strings.Join(p.RenderDecode(ctx), "\n")

	assert.Contains(t, decode, "user->c = 0;")
	assert.Contains(t, decode, "if (numBytes < byteindex)")
}

func TestPacket_RejectsArrayAndDependsOn(t *testing.T) {
	node := parseXML(t, `<Packet name="Bad" ID="9" array="4" dependsOn="x">
		<Data name="v" inMemoryType="unsigned8"/>
	</Packet>`)
	diag := discardCollector()
	p := ParsePacket(node, "", diag)

	assert.Equal(t, "", p.Array)
	assert.Equal(t, "", p.DependsOn)
	assert.Len(t, diag.All(), 2)
}
