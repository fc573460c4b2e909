package dbc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSignal(t *testing.T, p SignalParams) *Signal {
	t.Helper()
	s, err := NewSignal(p)
	require.NoError(t, err)
	return s
}

func TestSignal_Decode_LittleEndianUnsigned(t *testing.T) {
	s := mustSignal(t, SignalParams{
		Name: "S", StartBit: 0, BitSize: 8,
		ByteOrder: LittleEndian, ValueType: Unsigned,
		Factor: 1.0, Offset: 0.0,
	})
	payload := [8]byte{0x11, 0, 0, 0, 0, 0, 0, 0}

	assert.Equal(t, uint64(17), s.Decode(payload))
	assert.Equal(t, 17.0, s.RawToPhys(s.Decode(payload)))
}

func TestSignal_Decode_BigEndianUnsigned(t *testing.T) {
	s := mustSignal(t, SignalParams{
		Name: "S", StartBit: 7, BitSize: 8,
		ByteOrder: BigEndian, ValueType: Unsigned,
		Factor: 1.0, Offset: 0.0,
	})
	payload := [8]byte{0x11, 0, 0, 0, 0, 0, 0, 0}

	assert.Equal(t, uint64(17), s.Decode(payload))
}

func TestSignal_Decode_LittleEndianSignedWithScaling(t *testing.T) {
	s := mustSignal(t, SignalParams{
		Name: "S", StartBit: 8, BitSize: 16,
		ByteOrder: LittleEndian, ValueType: Signed,
		Factor: 0.1, Offset: -40,
	})

	payload := [8]byte{0x00, 0x10, 0x00, 0, 0, 0, 0, 0}
	assert.Equal(t, uint64(16), s.Decode(payload))
	assert.InDelta(t, -38.4, s.RawToPhys(s.Decode(payload)), 1e-9)

	payload = [8]byte{0x00, 0xF0, 0xFF, 0, 0, 0, 0, 0}
	raw := s.Decode(payload)
	assert.Equal(t, int64(-16), s.signedValue(raw))
	assert.InDelta(t, -41.6, s.RawToPhys(raw), 1e-9)
}

func TestSignal_Decode_LittleEndianFloat32(t *testing.T) {
	s := mustSignal(t, SignalParams{
		Name: "S", StartBit: 0, BitSize: 32,
		ByteOrder: LittleEndian, ValueType: Float32,
		Factor: 1.0, Offset: 0.0,
	})
	var payload [8]byte
	bits := math.Float32bits(1.5)
	payload[0] = byte(bits)
	payload[1] = byte(bits >> 8)
	payload[2] = byte(bits >> 16)
	payload[3] = byte(bits >> 24)

	assert.Equal(t, 1.5, s.DecodePhys(payload))
}

func TestSignal_EncodeDecodeRoundTrip(t *testing.T) {
	cases := []SignalParams{
		{Name: "le8", StartBit: 0, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1},
		{Name: "le16mid", StartBit: 12, BitSize: 9, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1},
		{Name: "be8", StartBit: 7, BitSize: 8, ByteOrder: BigEndian, ValueType: Unsigned, Factor: 1},
		{Name: "be_cross", StartBit: 23, BitSize: 12, ByteOrder: BigEndian, ValueType: Unsigned, Factor: 1},
		{Name: "signed16", StartBit: 8, BitSize: 16, ByteOrder: LittleEndian, ValueType: Signed, Factor: 1},
		{Name: "full64", StartBit: 0, BitSize: 64, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1},
	}
	for _, p := range cases {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			s := mustSignal(t, p)
			mask := maskFor(p.BitSize)
			for _, raw := range []uint64{0, 1, mask, mask / 2, mask - 1} {
				var payload [8]byte
				s.Encode(&payload, raw)
				got := s.Decode(payload)
				assert.Equal(t, raw&mask, got)
			}
		})
	}
}

func TestSignal_EncodePreservesOuterBits(t *testing.T) {
	s := mustSignal(t, SignalParams{Name: "mid", StartBit: 8, BitSize: 8, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 1})
	payload := [8]byte{0xFF, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	s.Encode(&payload, 0xAB)
	assert.Equal(t, [8]byte{0xFF, 0xAB, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, payload)
}

func TestSignal_PhysRoundTrip(t *testing.T) {
	s := mustSignal(t, SignalParams{Name: "s", StartBit: 0, BitSize: 16, ByteOrder: LittleEndian, ValueType: Unsigned, Factor: 0.5, Offset: 10})
	for _, raw := range []uint64{0, 1, 100, 65535} {
		phys := s.RawToPhys(raw)
		assert.Equal(t, raw, s.PhysToRaw(phys))
	}
}

func TestNewSignal_RejectsInvalidBitSize(t *testing.T) {
	_, err := NewSignal(SignalParams{Name: "s", BitSize: 0})
	assert.ErrorIs(t, err, ErrInvalidBitSize)

	_, err = NewSignal(SignalParams{Name: "s", BitSize: 65})
	assert.ErrorIs(t, err, ErrInvalidBitSize)
}

func TestNewSignal_RejectsFloatBitSizeMismatch(t *testing.T) {
	_, err := NewSignal(SignalParams{Name: "s", BitSize: 16, ValueType: Float32})
	assert.ErrorIs(t, err, ErrFloatBitSizeMismatch)

	_, err = NewSignal(SignalParams{Name: "s", BitSize: 32, ValueType: Float64})
	assert.ErrorIs(t, err, ErrFloatBitSizeMismatch)
}

func TestNewSignal_RejectsDuplicateEncodingValues(t *testing.T) {
	_, err := NewSignal(SignalParams{
		Name: "s", BitSize: 8,
		ValueEncodings: []ValueEncoding{{Value: 1, Description: "a"}, {Value: 1, Description: "b"}},
	})
	assert.ErrorIs(t, err, ErrDuplicateValue)
}

func TestSignal_ReceiversDeduplicatedInOrder(t *testing.T) {
	s := mustSignal(t, SignalParams{Name: "s", BitSize: 8, Receivers: []string{"ECU1", "ECU2", "ECU1"}})
	assert.Equal(t, []string{"ECU1", "ECU2"}, s.Receivers())
}
