package driver

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

func TestLoad_DispatchesEnumsStructuresAndPackets(t *testing.T) {
	input := `<Protocol name="Demo" prefix="Demo" api="1" version="1.0" endian="big">
		<Enum name="Status">
			<Value name="Ok"/>
			<Value name="Error"/>
		</Enum>
		<Structure name="Point">
			<Data name="x" inMemoryType="unsigned16"/>
			<Data name="y" inMemoryType="unsigned16"/>
		</Structure>
		<Packet name="Ping" ID="0x01"/>
	</Protocol>`

	diag := discardCollector()
	doc, err := Load(input, diag)
	require.NoError(t, err)

	assert.Equal(t, "Demo", doc.Name)
	assert.True(t, doc.BigEndian)
	require.Len(t, doc.Enums, 1)
	require.Len(t, doc.Modules, 2)

	assert.NotNil(t, doc.Modules[0].Structure)
	assert.Equal(t, "DemoPoint", doc.Modules[0].FileStem)

	assert.NotNil(t, doc.Modules[1].Packet)
	assert.Equal(t, "DemoPing", doc.Modules[1].FileStem)
}

func TestLoad_FileAttributeOverride(t *testing.T) {
	input := `<Protocol name="Demo" prefix="Demo">
		<Packet name="Ping" ID="1" file="CustomPing"/>
	</Protocol>`

	diag := discardCollector()
	doc, err := Load(input, diag)
	require.NoError(t, err)
	require.Len(t, doc.Modules, 1)
	assert.Equal(t, "CustomPing", doc.Modules[0].FileStem)
}

func TestLoad_RejectsNonProtocolRoot(t *testing.T) {
	diag := discardCollector()
	_, err := Load(`<Something/>`, diag)
	require.Error(t, err)
}

func TestLoad_RejectsMalformedXML(t *testing.T) {
	diag := discardCollector()
	_, err := Load(`<Protocol name="Demo"><Unclosed></Protocol>`, diag)
	require.Error(t, err)
}

func TestReplaceEnumerationNameWithValue(t *testing.T) {
	input := `<Protocol name="Demo" prefix="Demo">
		<Enum name="Ids">
			<Value name="PING_ID" value="1"/>
			<Value name="PING_ID_EXTENDED" value="2"/>
		</Enum>
	</Protocol>`

	diag := discardCollector()
	doc, err := Load(input, diag)
	require.NoError(t, err)

	assert.Equal(t, "packet 1", doc.ReplaceEnumerationNameWithValue("packet PING_ID"))
	assert.Equal(t, "packet 2", doc.ReplaceEnumerationNameWithValue("packet PING_ID_EXTENDED"))
}

func TestIncludeDirectives_AlwaysIncludesProtocolHeader(t *testing.T) {
	diag := discardCollector()
	doc, err := Load(`<Protocol name="Demo" prefix="Demo"></Protocol>`, diag)
	require.NoError(t, err)

	assert.Equal(t, []string{"DemoDemo.h"}, doc.IncludeDirectives())
}
