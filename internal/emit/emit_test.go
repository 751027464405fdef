package emit

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/protogen/internal/diagnostics"
	"github.com/shapestone/protogen/internal/model"
	"github.com/shapestone/protogen/internal/xmlast"
)

func discardCollector() *diagnostics.SlogCollector {
	return diagnostics.NewSlogCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustParse(t *testing.T, input string) *xmlast.Node {
	t.Helper()
	n, err := xmlast.Parse(input)
	require.NoError(t, err)
	return n
}

func TestHeaderFor_WritesGuardAndPrototypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "EchoPacket.h")

	node := mustParse(t, `<Packet name="Echo" ID="ECHO_ID"><Data name="n" inMemoryType="unsigned16"/></Packet>`)
	diag := discardCollector()
	pkt := model.ParsePacket(node, "", diag)

	w := NewHeaderWriter(path)
	err := HeaderFor(w, []string{"Protocol.h"}, nil, pkt.Structure, pkt, "Echo packet")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "#ifndef ECHOPACKET_H")
	assert.Contains(t, string(content), "encodeEchoPacket(void* pkt, uint16_t n);")
	assert.Contains(t, string(content), "#endif // ECHOPACKET_H")
}

func TestSourceFor_WritesEncodeAndDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "EchoPacket.c")

	node := mustParse(t, `<Packet name="Echo" ID="ECHO_ID"><Data name="n" inMemoryType="unsigned16"/></Packet>`)
	diag := discardCollector()
	pkt := model.ParsePacket(node, "", diag)

	w := NewSourceWriter(path)
	err := SourceFor(w, "EchoPacket.h", pkt, true)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "void encodeEchoPacket(void* pkt, uint16_t n)")
	assert.Contains(t, string(content), "int decodeEchoPacket(const void* pkt, uint16_t n)")
	assert.Contains(t, string(content), "getEchoPacketID")
}

func TestHeaderFor_AppendsSecondModuleWithoutDuplicatingGuardOrBanner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ProtocolPacket.h")

	firstNode := mustParse(t, `<Packet name="Echo" ID="ECHO_ID"><Data name="n" inMemoryType="unsigned16"/></Packet>`)
	diag := discardCollector()
	firstPkt := model.ParsePacket(firstNode, "", diag)

	w := NewHeaderWriter(path)
	require.False(t, w.isAppending())
	require.NoError(t, HeaderFor(w, []string{"Protocol.h"}, nil, firstPkt.Structure, firstPkt, "Echo packet"))

	secondNode := mustParse(t, `<Packet name="Ping" ID="PING_ID"/>`)
	secondPkt := model.ParsePacket(secondNode, "", diag)

	w2 := NewHeaderWriter(path)
	require.True(t, w2.isAppending())
	require.NoError(t, HeaderFor(w2, []string{"Protocol.h"}, nil, secondPkt.Structure, secondPkt, "Ping packet"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Equal(t, 1, strings.Count(text, "#ifndef PROTOCOLPACKET_H"), "guard should open exactly once across both emissions")
	assert.Equal(t, 1, strings.Count(text, "/*!"), "banner should only be written on the first emission")
	assert.Contains(t, text, "encodeEchoPacket(void* pkt, uint16_t n);")
	assert.Contains(t, text, "encodePingPacket(void* pkt);")
	assert.Contains(t, text, "#endif // PROTOCOLPACKET_H")
}

func TestMarkdownForPacket_RendersTable(t *testing.T) {
	node := mustParse(t, `<Packet name="Echo" ID="1"><Data name="n" inMemoryType="unsigned16" comment="the value"/></Packet>`)
	diag := discardCollector()
	pkt := model.ParsePacket(node, "", diag)

	md := MarkdownForPacket(pkt, "1", "1")
	assert.Contains(t, md, "## Echo")
	assert.Contains(t, md, "| Bytes")
	assert.Contains(t, md, "the value")
}
