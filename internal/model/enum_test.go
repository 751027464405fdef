package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/protogen/internal/xmlast"
)

func parseXML(t *testing.T, input string) *xmlast.Node {
	t.Helper()
	node, err := xmlast.Parse(input)
	require.NoError(t, err)
	return node
}

func TestEnum_UnresolvedBase(t *testing.T) {
	node := parseXML(t, `<Enum name="Status">
		<Value name="A"/>
		<Value name="B" value="SOMEWHERE"/>
		<Value name="C"/>
	</Enum>`)

	e := ParseEnum(node)
	e.ComputeNumberList()

	require.Len(t, e.Values, 3)
	assert.Equal(t, "0", e.Values[0].Numeric)
	assert.Equal(t, "SOMEWHERE", e.Values[1].Numeric)
	assert.Equal(t, "SOMEWHERE + 1", e.Values[2].Numeric)
	assert.Equal(t, 8, e.MinBitWidth)
}

func TestEnum_AutoIncrementAndHex(t *testing.T) {
	node := parseXML(t, `<Enum name="Code">
		<Value name="Zero"/>
		<Value name="Ten" value="0x0A"/>
		<Value name="Eleven"/>
	</Enum>`)

	e := ParseEnum(node)
	e.ComputeNumberList()

	assert.Equal(t, "0", e.Values[0].Numeric)
	assert.Equal(t, "10", e.Values[1].Numeric)
	assert.Equal(t, "11", e.Values[2].Numeric)
	assert.Equal(t, 8, e.MinBitWidth)
}

func TestEnum_MinBitWidthGrowsWithMaxValue(t *testing.T) {
	node := parseXML(t, `<Enum name="Big">
		<Value name="Large" value="300"/>
	</Enum>`)

	e := ParseEnum(node)
	e.ComputeNumberList()

	assert.Equal(t, 9, e.MinBitWidth)
}

func TestEnum_EmptyIsTolerated(t *testing.T) {
	node := parseXML(t, `<Enum name="Nothing"></Enum>`)

	e := ParseEnum(node)
	e.ComputeNumberList()

	assert.Empty(t, e.Values)
	assert.Equal(t, 8, e.MinBitWidth)
}
