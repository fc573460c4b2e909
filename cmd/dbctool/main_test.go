package main

import (
	"testing"

	"github.com/guoh27/go-dbc/dbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNetwork(t *testing.T) *dbc.Network {
	t.Helper()
	gear, err := dbc.NewSignal(dbc.SignalParams{
		Name:      "Gear",
		StartBit:  0,
		BitSize:   4,
		ByteOrder: dbc.LittleEndian,
		ValueType: dbc.Unsigned,
		Factor:    1,
		Min:       0,
		Max:       15,
		ValueEncodings: []dbc.ValueEncoding{
			{Value: 0, Description: "Park"},
			{Value: 1, Description: "Drive"},
		},
	})
	require.NoError(t, err)

	speed, err := dbc.NewSignal(dbc.SignalParams{
		Name:      "Speed",
		StartBit:  8,
		BitSize:   16,
		ByteOrder: dbc.LittleEndian,
		ValueType: dbc.Unsigned,
		Factor:    0.01,
		Min:       0,
		Max:       655,
		Unit:      "km/h",
	})
	require.NoError(t, err)

	msg, err := dbc.NewMessage(dbc.MessageParams{
		ID:      0x123,
		Name:    "Transmission",
		Size:    8,
		Signals: []*dbc.Signal{gear, speed},
	})
	require.NoError(t, err)

	net, err := dbc.NewNetwork(dbc.NetworkParams{Messages: []*dbc.Message{msg}})
	require.NoError(t, err)
	return net
}

func TestFormatDecoded_RendersValueEncodingLabelInSingleQuotes(t *testing.T) {
	net := testNetwork(t)
	line := "vcan0 123 [3] 01 10 27"
	frame := dbc.Frame{ID: 0x123, Length: 3, Data: [8]byte{0x01, 0x10, 0x27}}

	out, ok := formatDecoded(line, net, frame)
	require.True(t, ok)
	assert.Equal(t, "vcan0 123 [3] 01 10 27 :: Transmission(Gear: 'Drive', Speed: 100 km/h)", out)
}

func TestFormatDecoded_UnknownFrameIsIgnored(t *testing.T) {
	net := testNetwork(t)
	_, ok := formatDecoded("vcan0 999 [1] AA", net, dbc.Frame{ID: 0x999, Length: 1, Data: [8]byte{0xAA}})
	assert.False(t, ok)
}
