package socketcan

import (
	"encoding/binary"
	"testing"

	"github.com/guoh27/go-dbc/dbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCANFrame_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		frame dbc.Frame
	}{
		{name: "standard id", frame: dbc.Frame{ID: 0x123, Length: 8, Data: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}},
		{name: "extended id", frame: dbc.Frame{ID: 0x1ABCDEF0, Extended: true, Length: 3, Data: [8]byte{0xAA, 0xBB, 0xCC}}},
		{name: "zero length", frame: dbc.Frame{ID: 0x01, Length: 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := encodeCANFrame(tc.frame)
			assert.Len(t, raw, 16)

			got, err := decodeCANFrame(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.frame, got)
		})
	}
}

func TestDecodeCANFrame_RejectsRTRAndErrorFrames(t *testing.T) {
	rtr := make([]byte, 16)
	binary.NativeEndian.PutUint32(rtr[0:4], canIDRTRFlag)
	_, err := decodeCANFrame(rtr)
	assert.Error(t, err)

	errFrame := make([]byte, 16)
	binary.NativeEndian.PutUint32(errFrame[0:4], canIDERRFlag)
	_, err = decodeCANFrame(errFrame)
	assert.Error(t, err)
}
