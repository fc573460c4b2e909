package serialize

import (
	"strings"
	"testing"

	"github.com/guoh27/go-dbc/dbc"
	"github.com/guoh27/go-dbc/dbcfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNetwork(t *testing.T) *dbc.Network {
	t.Helper()
	speed, err := dbc.NewSignal(dbc.SignalParams{
		Name:      "EngineSpeed",
		StartBit:  0,
		BitSize:   16,
		ByteOrder: dbc.LittleEndian,
		ValueType: dbc.Unsigned,
		Factor:    0.125,
		Min:       0,
		Max:       8000,
		Unit:      "rpm",
		Receivers: []string{"ECU2"},
		Comment:   "Crank-derived speed.",
	})
	require.NoError(t, err)

	msg, err := dbc.NewMessage(dbc.MessageParams{
		ID:      500,
		Name:    "EngineData",
		Size:    8,
		Signals: []*dbc.Signal{speed},
		Comment: "Periodic engine broadcast.",
	})
	require.NoError(t, err)

	node, err := dbc.NewNode("ECU1", "Primary gateway.", nil)
	require.NoError(t, err)

	net, err := dbc.NewNetwork(dbc.NetworkParams{
		Version:   "1.0",
		BitTiming: dbc.BitTiming{Baudrate: 500000, BTR1: 1, BTR2: 1},
		Nodes:     []*dbc.Node{node},
		Messages:  []*dbc.Message{msg},
		Comment:   "Example vehicle network.",
	})
	require.NoError(t, err)
	return net
}

func TestDBC_RoundTripsThroughDbcfileParse(t *testing.T) {
	net := testNetwork(t)
	out, err := DBC(net)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `VERSION "1.0"`)
	assert.Contains(t, text, "BO_ 500 EngineData: 8 Vector__XXX")
	assert.Contains(t, text, "SG_ EngineSpeed")
	assert.Contains(t, text, `CM_ BO_ 500 "Periodic engine broadcast.";`)

	parsed, err := dbcfile.Parse(strings.NewReader(text))
	require.NoError(t, err)
	assert.True(t, net.Equal(parsed))
}

func TestCHeader_EmitsMessageAndSignalMacros(t *testing.T) {
	net := testNetwork(t)
	out, err := CHeader(net, "TEST_H")
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "#ifndef TEST_H"))
	assert.Contains(t, text, "#define ENGINEDATA_ID 0x1F4u")
	assert.Contains(t, text, "#define ENGINEDATA_ENGINESPEED_BIT_SIZE 16u")
	assert.Contains(t, text, "#endif /* TEST_H */")
}

func TestHuman_ListsNodesMessagesAndSignals(t *testing.T) {
	net := testNetwork(t)
	out, err := Human(net)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Nodes (1):")
	assert.Contains(t, text, "ECU1 - Primary gateway.")
	assert.Contains(t, text, "EngineData")
	assert.Contains(t, text, "EngineSpeed")
}
