package dbcfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/guoh27/go-dbc/dbc"
	"github.com/guoh27/go-dbc/internal/dbctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullNetwork(t *testing.T) {
	sampleDBC := dbctest.LoadBytes(t, "sample.dbc")
	net, err := Parse(bytes.NewReader(sampleDBC))
	require.NoError(t, err)

	assert.Equal(t, "1.0", net.Version())
	assert.Equal(t, "Example vehicle network.", net.Comment())
	assert.Equal(t, uint64(500000), net.BitTiming().Baudrate)

	nodes := net.Nodes()
	require.Len(t, nodes, 2)
	n1, ok := net.NodeByName("ECU1")
	require.True(t, ok)
	assert.Equal(t, "Primary gateway.", n1.Comment())

	vt, ok := net.ValueTableByName("OnOff")
	require.True(t, ok)
	desc, ok := vt.Find(1)
	require.True(t, ok)
	assert.Equal(t, "On", desc)

	msg, ok := net.MessageByID(500, false)
	require.True(t, ok)
	assert.Equal(t, "EngineData", msg.Name())
	assert.Equal(t, "Periodic engine broadcast.", msg.Comment())
	assert.ElementsMatch(t, []string{"ECU2"}, msg.ExtraTransmitters())

	speed, ok := msg.SignalByName("EngineSpeed")
	require.True(t, ok)
	assert.Equal(t, "Crank-derived speed.", speed.Comment())
	assert.InDelta(t, 0.125, speed.Factor(), 1e-9)

	sw, ok := msg.MuxSwitch()
	require.True(t, ok)
	assert.Equal(t, "MultiplexSwitch", sw.Name())
	label, ok := sw.Label(1)
	require.True(t, ok)
	assert.Equal(t, "Oil", label)

	coolant, ok := msg.SignalByName("CoolantTemp")
	require.True(t, ok)
	ranges := coolant.ExtendedMuxRanges()
	require.Len(t, ranges, 1)
	assert.Equal(t, "MultiplexSwitch", ranges[0].SwitchName)
	assert.Equal(t, uint64(0), ranges[0].Ranges[0].From)
	assert.Equal(t, uint64(0), ranges[0].Ranges[0].To)

	groups := msg.SignalGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Temps", groups[0].Name())
	assert.ElementsMatch(t, []string{"CoolantTemp", "OilTemp"}, groups[0].SignalNames())

	cycleTimeAttr, ok2 := findAttr(msg.Attributes(), "GenMsgCycleTime")
	require.True(t, ok2)
	assert.EqualValues(t, 100, cycleTimeAttr.Value().Int())

	sigTypeAttr, ok3 := findAttr(speed.Attributes(), "SigType")
	require.True(t, ok3)
	assert.Equal(t, "COUNTER", sigTypeAttr.Value().Str())

	networkAuthor, ok4 := findAttr(net.AttributeValues(), "NetworkAuthor")
	require.True(t, ok4)
	assert.Equal(t, "dbctool-test", networkAuthor.Value().Str())

	defaults := net.AttributeDefaults()
	assert.Equal(t, "unknown", defaults["NetworkAuthor"].Str())
	assert.EqualValues(t, 0, defaults["GenMsgCycleTime"].Int())

	envs := net.EnvironmentVariables()
	require.Len(t, envs, 1)
	assert.Equal(t, "BatteryVoltage", envs[0].Name())
	assert.InDelta(t, 12, envs[0].InitialValue(), 1e-9)

	status, ok5 := net.MessageByID(600, false)
	require.True(t, ok5)
	flag, ok6 := status.SignalByName("StatusFlag")
	require.True(t, ok6)
	assert.Equal(t, uint64(0), flag.StartBit())
}

func TestParse_RejectsUnknownCommentTarget(t *testing.T) {
	const bad = `VERSION ""
BU_: ECU1
CM_ BO_ 999 "orphan comment";
`
	_, err := Parse(strings.NewReader(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestParse_RejectsMalformedSignalLine(t *testing.T) {
	const bad = `VERSION ""
BU_: ECU1
BO_ 1 Msg: 8 ECU1
 SG_ BadSignal not-a-valid-bitfield
`
	_, err := Parse(strings.NewReader(bad))
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParse_EmptyDocumentProducesEmptyNetwork(t *testing.T) {
	net, err := Parse(strings.NewReader("VERSION \"\"\n"))
	require.NoError(t, err)
	assert.Empty(t, net.Nodes())
	assert.Empty(t, net.Messages())
}

func findAttr(attrs []dbc.Attribute, name string) (dbc.Attribute, bool) {
	for _, a := range attrs {
		if a.Name() == name {
			return a, true
		}
	}
	return dbc.Attribute{}, false
}
