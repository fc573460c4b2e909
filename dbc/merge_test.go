package dbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionOrdered_DedupesPreservingFirstSeenOrder(t *testing.T) {
	got := unionOrdered([]string{"a", "b"}, []string{"b", "c", "a", "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestMergeReplace_ReplacesOnCollisionAppendsNew(t *testing.T) {
	type item struct {
		key string
		val int
	}
	self := []item{{"a", 1}, {"b", 2}}
	incoming := []item{{"b", 20}, {"c", 3}}
	got := mergeReplace(self, incoming, func(i item) string { return i.key })
	assert.Equal(t, []item{{"a", 1}, {"b", 20}, {"c", 3}}, got)
}

func TestCompareSet_OverwritesOnlyWhenDifferent(t *testing.T) {
	v := 5
	compareSet(&v, 5)
	assert.Equal(t, 5, v)
	compareSet(&v, 0)
	assert.Equal(t, 0, v)
}

func TestSignalMerge_ReplacesScalarsUnionsReceiversMergesEncodings(t *testing.T) {
	a := mustSignal(t, SignalParams{
		Name: "S", StartBit: 0, BitSize: 8, Factor: 1,
		Receivers:      []string{"ECU1"},
		ValueEncodings: []ValueEncoding{{Value: 0, Description: "off"}},
	})
	b := mustSignal(t, SignalParams{
		Name: "S", StartBit: 0, BitSize: 8, Factor: 2,
		Receivers:      []string{"ECU2"},
		ValueEncodings: []ValueEncoding{{Value: 0, Description: "OFF"}, {Value: 1, Description: "on"}},
	})

	a.merge(b)

	assert.Equal(t, 2.0, a.Factor())
	assert.Equal(t, []string{"ECU1", "ECU2"}, a.Receivers())
	label0, ok := a.Label(0)
	require.True(t, ok)
	assert.Equal(t, "OFF", label0)
	label1, ok := a.Label(1)
	require.True(t, ok)
	assert.Equal(t, "on", label1)
}

func TestMergeExtendedMuxRanges_AddsNewRangeToExistingSwitch(t *testing.T) {
	self := []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 0, To: 9}}}}
	incoming := []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 10, To: 20}}}}

	got := mergeExtendedMuxRanges(self, incoming)

	require.Len(t, got, 1)
	assert.ElementsMatch(t, []MuxValueRange{{From: 0, To: 9}, {From: 10, To: 20}}, got[0].Ranges)
}

func TestMergeExtendedMuxRanges_OverwritesMatchingRange(t *testing.T) {
	self := []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 0, To: 9}}}}
	incoming := []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 0, To: 9}}}}

	got := mergeExtendedMuxRanges(self, incoming)

	require.Len(t, got, 1)
	require.Len(t, got[0].Ranges, 1)
	assert.Equal(t, MuxValueRange{From: 0, To: 9}, got[0].Ranges[0])
}
