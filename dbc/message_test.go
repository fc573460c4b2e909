package dbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMessage(t *testing.T, p MessageParams) *Message {
	t.Helper()
	m, err := NewMessage(p)
	require.NoError(t, err)
	return m
}

func simpleSignal(t *testing.T, name string, start, size uint64) *Signal {
	t.Helper()
	return mustSignal(t, SignalParams{Name: name, StartBit: start, BitSize: size, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1})
}

func TestMessage_SimpleMultiplex(t *testing.T) {
	mux := mustSignal(t, SignalParams{Name: "M", StartBit: 0, BitSize: 4, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxSwitch})
	a := mustSignal(t, SignalParams{Name: "A", StartBit: 8, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxValue, MuxSwitchValue: 0})
	b := mustSignal(t, SignalParams{Name: "B", StartBit: 8, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxValue, MuxSwitchValue: 1})

	msg := mustMessage(t, MessageParams{ID: 1, Name: "MUX", Size: 8, Signals: []*Signal{mux, a, b}})

	payload := [8]byte{0x00, 0x2A, 0, 0, 0, 0, 0, 0}
	got := msg.Decode(payload)
	assert.Equal(t, map[string]uint64{"M": 0, "A": 0x2A}, got)

	payload[0] = 0x01
	got = msg.Decode(payload)
	assert.Equal(t, map[string]uint64{"M": 1, "B": 0x2A}, got)
}

func TestMessage_ExtendedMultiplex(t *testing.T) {
	mux := mustSignal(t, SignalParams{Name: "M", StartBit: 0, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxSwitch})
	low := mustSignal(t, SignalParams{
		Name: "LOW", StartBit: 8, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1,
		MuxIndicator: MuxValue,
		ExtendedMuxRanges: []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 0, To: 9}}}},
	})
	high := mustSignal(t, SignalParams{
		Name: "HIGH", StartBit: 8, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1,
		MuxIndicator: MuxValue,
		ExtendedMuxRanges: []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 10, To: 255}}}},
	})

	msg := mustMessage(t, MessageParams{ID: 2, Name: "EXT", Size: 8, Signals: []*Signal{mux, low, high}})

	payload := [8]byte{9, 0x11, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, map[string]uint64{"M": 9, "LOW": 0x11}, msg.Decode(payload))

	payload[0] = 10
	assert.Equal(t, map[string]uint64{"M": 10, "HIGH": 0x11}, msg.Decode(payload))

	payload[0] = 9
	payload[1] = 0x22
	got := msg.DecodePhys(payload)
	assert.Equal(t, map[string]float64{"M": 9, "LOW": 0x22}, got)
}

func TestMessage_MuxRangeBoundaryIsInclusiveOnBothEnds(t *testing.T) {
	mux := mustSignal(t, SignalParams{Name: "M", StartBit: 0, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxSwitch})
	s := mustSignal(t, SignalParams{
		Name: "S", StartBit: 8, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1,
		MuxIndicator: MuxValue,
		ExtendedMuxRanges: []ExtendedMuxRange{{SwitchName: "M", Ranges: []MuxValueRange{{From: 5, To: 5}}}},
	})
	msg := mustMessage(t, MessageParams{ID: 3, Name: "BOUND", Size: 8, Signals: []*Signal{mux, s}})

	for _, v := range []byte{4, 6} {
		payload := [8]byte{v, 1, 0, 0, 0, 0, 0, 0}
		_, present := msg.Decode(payload)["S"]
		assert.False(t, present, "mux value %d should not select S", v)
	}

	payload := [8]byte{5, 1, 0, 0, 0, 0, 0, 0}
	_, present := msg.Decode(payload)["S"]
	assert.True(t, present)
}

func TestMessage_MuxValueWithoutSwitchSetsErrorBit(t *testing.T) {
	orphan := mustSignal(t, SignalParams{Name: "A", StartBit: 0, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxValue, MuxSwitchValue: 0})
	msg := mustMessage(t, MessageParams{ID: 4, Name: "ORPHAN", Size: 8, Signals: []*Signal{orphan}})

	assert.True(t, msg.HasError(MuxValueWithoutMuxSignal))
	assert.False(t, msg.HasError(NoError))
}

func TestMessage_DuplicateSignalNameIsDroppedAndFlagged(t *testing.T) {
	a1 := simpleSignal(t, "A", 0, 8)
	a2 := simpleSignal(t, "A", 8, 8)
	msg := mustMessage(t, MessageParams{ID: 5, Name: "DUP", Size: 8, Signals: []*Signal{a1, a2}})

	assert.Len(t, msg.Signals(), 1)
	assert.True(t, msg.HasError(SignalNameDuplicated))
}

func TestMessage_Clone_RecomputesDerivedState(t *testing.T) {
	mux := mustSignal(t, SignalParams{Name: "M", StartBit: 0, BitSize: 4, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1, MuxIndicator: MuxSwitch})
	msg := mustMessage(t, MessageParams{ID: 6, Name: "M1", Size: 8, Signals: []*Signal{mux}})
	clone := msg.Clone()

	sw, ok := clone.MuxSwitch()
	require.True(t, ok)
	assert.Equal(t, "M", sw.Name())
	assert.True(t, msg.Equal(clone))
}

func TestMessage_IDExtendedFlagRoundTrips(t *testing.T) {
	msg := mustMessage(t, MessageParams{ID: 0x1ABCDEF | extendedIDFlag, Name: "EXT", Size: 8})
	assert.True(t, msg.IsExtended())
	assert.Equal(t, uint64(0x1ABCDEF), msg.ID())
}
