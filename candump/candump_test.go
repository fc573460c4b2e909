package candump

import (
	"errors"
	"strings"
	"testing"

	"github.com/guoh27/go-dbc/dbc"
	"github.com/guoh27/go-dbc/internal/dbctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_StandardFrame(t *testing.T) {
	iface, frame, err := ParseLine("vcan0 123 [3] 11 22 33")
	require.NoError(t, err)

	assert.Equal(t, "vcan0", iface)
	assert.Equal(t, uint32(0x123), frame.ID)
	assert.False(t, frame.Extended)
	assert.Equal(t, uint8(3), frame.Length)
	assert.Equal(t, [8]byte{0x11, 0x22, 0x33}, frame.Data)
}

func TestParseLine_ExtendedFrame(t *testing.T) {
	_, frame, err := ParseLine("can0 1ABCDEF0 [1] AA")
	require.NoError(t, err)

	assert.True(t, frame.Extended)
	assert.Equal(t, uint32(0x1ABCDEF0), frame.ID)
	assert.Equal(t, uint8(1), frame.Length)
}

func TestParseLine_ZeroSize(t *testing.T) {
	_, frame, err := ParseLine("can0 100 [0]")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), frame.Length)
}

func TestParseLine_RejectsMalformedInput(t *testing.T) {
	_, _, err := ParseLine("can0")
	assert.Error(t, err)

	_, _, err = ParseLine("can0 notanid [3] 11 22 33")
	assert.Error(t, err)

	_, _, err = ParseLine("can0 123 [3] 11 22")
	assert.Error(t, err, "declared size exceeds the number of data bytes present")

	_, _, err = ParseLine("can0 123 [9] 11 22 33 44 55 66 77 88 99")
	assert.Error(t, err, "size above 8 is not a valid classic CAN payload length")

	_, _, err = ParseLine("can0 123 11 22 33")
	assert.Error(t, err, "missing the [size] field entirely")
}

func TestFormatLine_RoundTripsWithParseLine(t *testing.T) {
	frame := dbc.Frame{ID: 0x1ABCDEF0, Extended: true, Length: 3, Data: [8]byte{0xDE, 0xAD, 0xBE}}
	line := FormatLine("vcan0", frame)
	assert.Equal(t, "vcan0 1ABCDEF0 [3] DE AD BE", line)

	iface, got, err := ParseLine(line)
	require.NoError(t, err)
	assert.Equal(t, "vcan0", iface)
	assert.Equal(t, frame, got)
}

func TestScanMatching_InvokesCallbackOnlyForMatchingInterface(t *testing.T) {
	input := strings.Join([]string{
		"vcan0 100 [2] AA BB",
		"can1 200 [1] CC",
		"vcan0 notaline",
		"vcan0 300 [0]",
	}, "\n")

	var got []string
	err := ScanMatching(strings.NewReader(input), "vcan0", func(line string, frame dbc.Frame) {
		got = append(got, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vcan0 100 [2] AA BB", "vcan0 300 [0]"}, got)
}

func TestScanMatching_PropagatesReadError(t *testing.T) {
	readErr := errors.New("bus read failure")
	mock := &dbctest.MockReaderWriter{
		Reads: []dbctest.ReadResult{
			{Read: []byte("vcan0 100 [1] AA\n")},
			{Err: readErr},
		},
	}

	var calls int
	err := ScanMatching(mock, "vcan0", func(line string, frame dbc.Frame) {
		calls++
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, 1, calls)
}
