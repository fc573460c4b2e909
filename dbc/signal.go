package dbc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MultiplexerIndicator classifies how a Signal participates in message
// multiplexing.
type MultiplexerIndicator int

const (
	// MuxNone marks a signal that is always present.
	MuxNone MultiplexerIndicator = iota
	// MuxSwitch marks the (at most one) signal in a message that selects
	// which MuxValue signals are present.
	MuxSwitch
	// MuxValue marks a signal that is only present for certain switch values.
	MuxValue
)

// ByteOrder is the bit-numbering convention a Signal's start bit is
// expressed in.
type ByteOrder int

const (
	// LittleEndian is the Intel convention: start bit is the LSB of a flat
	// little-endian bit space over the payload.
	LittleEndian ByteOrder = iota
	// BigEndian is the Motorola convention: start bit is the MSB, with
	// sawtooth bit numbering inside each byte.
	BigEndian
)

// ValueType controls how the raw extracted bits are reinterpreted.
type ValueType int

const (
	Unsigned ValueType = iota
	Signed
	Float32
	Float64
)

// MuxValueRange is an inclusive [From, To] range of raw switch-signal
// values, used by extended (multi-level) multiplexing.
type MuxValueRange struct {
	From uint64
	To   uint64
}

// ExtendedMuxRange ties a signal to a set of value ranges on a named switch
// signal. A signal carrying any ExtendedMuxRange is present iff at least
// one range matches, per dbc.Message.PresentSignals.
type ExtendedMuxRange struct {
	SwitchName string
	Ranges     []MuxValueRange
}

// SignalParams is the input to NewSignal. It exists so the constructor's
// argument list stays readable as the entity grows fields, matching the
// teacher's convention of a single params struct per complex factory
// (canboat.Field is built the same way from a parsed JSON object).
type SignalParams struct {
	Name                 string
	MuxIndicator         MultiplexerIndicator
	MuxSwitchValue       uint64
	StartBit             uint64
	BitSize              uint64
	ByteOrder            ByteOrder
	ValueType            ValueType
	Factor               float64
	Offset               float64
	Min                  float64
	Max                  float64
	Unit                 string
	Receivers            []string
	ValueEncodings       []ValueEncoding
	ExtendedMuxRanges    []ExtendedMuxRange
	Comment              string
	Attributes           []Attribute
	// ExtendedValueType overrides ValueType for decode/encode purposes, as
	// DBC's SIG_VALTYPE_ extension does when it reclassifies a plain NUMBER
	// signal as IEEE float. Nil means no override.
	ExtendedValueType *ValueType
}

// Signal is a bit-packed field descriptor within a Message.
type Signal struct {
	name              string
	muxIndicator      MultiplexerIndicator
	muxSwitchValue    uint64
	startBit          uint64
	bitSize           uint64
	byteOrder         ByteOrder
	valueType         ValueType
	factor            float64
	offset            float64
	min               float64
	max               float64
	unit              string
	receivers         []string
	encodings         []ValueEncoding
	extendedMux       []ExtendedMuxRange
	comment           string
	attributes        []Attribute
	extendedValueType *ValueType

	// effectiveStart is the precomputed little-endian-space start bit used
	// by Decode/Encode for both byte orders; see dbc/signal.go bitWord.
	effectiveStart uint64
}

// NewSignal validates p and constructs a Signal.
func NewSignal(p SignalParams) (*Signal, error) {
	if p.BitSize == 0 || p.BitSize > 64 {
		return nil, fmt.Errorf("signal %q: %w (got %d)", p.Name, ErrInvalidBitSize, p.BitSize)
	}
	if p.ValueType == Float32 && p.BitSize != 32 {
		return nil, fmt.Errorf("signal %q: %w (float32 needs 32, got %d)", p.Name, ErrFloatBitSizeMismatch, p.BitSize)
	}
	if p.ValueType == Float64 && p.BitSize != 64 {
		return nil, fmt.Errorf("signal %q: %w (float64 needs 64, got %d)", p.Name, ErrFloatBitSizeMismatch, p.BitSize)
	}

	receivers := dedupOrdered(p.Receivers)

	encodings, err := cloneUniqueEncodings(p.Name, p.ValueEncodings)
	if err != nil {
		return nil, err
	}

	extMux := cloneExtendedMuxRanges(p.ExtendedMuxRanges)

	s := &Signal{
		name:              p.Name,
		muxIndicator:      p.MuxIndicator,
		muxSwitchValue:    p.MuxSwitchValue,
		startBit:          p.StartBit,
		bitSize:           p.BitSize,
		byteOrder:         p.ByteOrder,
		valueType:         p.ValueType,
		factor:            p.Factor,
		offset:            p.Offset,
		min:               p.Min,
		max:               p.Max,
		unit:              p.Unit,
		receivers:         receivers,
		encodings:         encodings,
		extendedMux:       extMux,
		comment:           p.Comment,
		attributes:        cloneAttributes(p.Attributes),
		extendedValueType: p.ExtendedValueType,
	}
	s.effectiveStart = s.computeEffectiveStart()
	return s, nil
}

func (s *Signal) computeEffectiveStart() uint64 {
	if s.byteOrder == LittleEndian {
		return s.startBit
	}
	// Motorola: reverse the byte-numbering direction and account for the
	// field running from MSB toward LSB within the reversed payload.
	return 8*(7-s.startBit/8) + (s.startBit % 8) - (s.bitSize - 1)
}

// Accessors.

func (s *Signal) Name() string                     { return s.name }
func (s *Signal) MultiplexerIndicator() MultiplexerIndicator { return s.muxIndicator }
func (s *Signal) MultiplexerSwitchValue() uint64    { return s.muxSwitchValue }
func (s *Signal) StartBit() uint64                  { return s.startBit }
func (s *Signal) BitSize() uint64                   { return s.bitSize }
func (s *Signal) ByteOrder() ByteOrder              { return s.byteOrder }
func (s *Signal) ValueType() ValueType              { return s.valueType }

// EffectiveValueType returns ExtendedValueType if one was set at
// construction, otherwise ValueType.
func (s *Signal) EffectiveValueType() ValueType {
	if s.extendedValueType != nil {
		return *s.extendedValueType
	}
	return s.valueType
}
func (s *Signal) Factor() float64                   { return s.factor }
func (s *Signal) Offset() float64                   { return s.offset }
func (s *Signal) Min() float64                      { return s.min }
func (s *Signal) Max() float64                      { return s.max }
func (s *Signal) Unit() string                      { return s.unit }
func (s *Signal) Comment() string                   { return s.comment }

// Receivers returns a copy of the signal's ordered, de-duplicated receiver
// node-name list.
func (s *Signal) Receivers() []string {
	out := make([]string, len(s.receivers))
	copy(out, s.receivers)
	return out
}

// ValueEncodings returns a copy of the signal's own value encodings (as
// opposed to a shared ValueTable's).
func (s *Signal) ValueEncodings() []ValueEncoding {
	out := make([]ValueEncoding, len(s.encodings))
	copy(out, s.encodings)
	return out
}

// ExtendedMuxRanges returns a copy of the signal's extended-multiplex value
// ranges.
func (s *Signal) ExtendedMuxRanges() []ExtendedMuxRange {
	return cloneExtendedMuxRanges(s.extendedMux)
}

// Attributes returns a copy of the signal's attached attributes.
func (s *Signal) Attributes() []Attribute {
	return cloneAttributes(s.attributes)
}

// Clone returns a deep copy of s.
func (s *Signal) Clone() *Signal {
	out := *s
	out.receivers = s.Receivers()
	out.encodings = s.ValueEncodings()
	out.extendedMux = s.ExtendedMuxRanges()
	out.attributes = s.Attributes()
	return &out
}

// bitWord returns the 64-bit integer that effectiveStart indexes into: the
// payload interpreted little-endian for Intel signals, or the payload
// reversed byte-wise (then interpreted little-endian) for Motorola signals.
func (s *Signal) bitWord(payload [8]byte) uint64 {
	if s.byteOrder == BigEndian {
		payload = reverseBytes(payload)
	}
	return binary.LittleEndian.Uint64(payload[:])
}

func (s *Signal) putBitWord(payload *[8]byte, word uint64) {
	if s.byteOrder == BigEndian {
		rev := reverseBytes(*payload)
		binary.LittleEndian.PutUint64(rev[:], word)
		*payload = reverseBytes(rev)
		return
	}
	binary.LittleEndian.PutUint64(payload[:], word)
}

func reverseBytes(b [8]byte) [8]byte {
	return [8]byte{b[7], b[6], b[5], b[4], b[3], b[2], b[1], b[0]}
}

func maskFor(bitSize uint64) uint64 {
	if bitSize >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << bitSize) - 1
}

// Decode extracts the signal's raw bit field from an 8-byte CAN payload.
// Decode never fails: a fixed 8-byte buffer has no concept of an
// out-of-range payload.
func (s *Signal) Decode(payload [8]byte) uint64 {
	word := s.bitWord(payload)
	mask := maskFor(s.bitSize)
	return (word >> s.effectiveStart) & mask
}

// Encode writes raw's low BitSize bits into payload at the signal's bit
// position, preserving every bit outside the field.
func (s *Signal) Encode(payload *[8]byte, raw uint64) {
	mask := maskFor(s.bitSize)
	word := s.bitWord(*payload)
	word = (word &^ (mask << s.effectiveStart)) | ((raw & mask) << s.effectiveStart)
	s.putBitWord(payload, word)
}

// signedValue sign-extends raw from bit BitSize-1 and returns it as int64.
func (s *Signal) signedValue(raw uint64) int64 {
	if s.bitSize >= 64 {
		return int64(raw)
	}
	signBit := uint64(1) << (s.bitSize - 1)
	if raw&signBit == 0 {
		return int64(raw)
	}
	return int64(raw | ^maskFor(s.bitSize))
}

// rawAsFloat64 reinterprets raw per the signal's ValueType, as a float64.
func (s *Signal) rawAsFloat64(raw uint64) float64 {
	switch s.EffectiveValueType() {
	case Signed:
		return float64(s.signedValue(raw))
	case Float32:
		return float64(math.Float32frombits(uint32(raw)))
	case Float64:
		return math.Float64frombits(raw)
	default: // Unsigned
		return float64(raw)
	}
}

// RawToPhys maps a decoded raw value to its physical value: raw*factor+offset.
func (s *Signal) RawToPhys(raw uint64) float64 {
	return s.rawAsFloat64(raw)*s.factor + s.offset
}

// PhysToRaw is the inverse of RawToPhys, truncating toward zero and masking
// to the signal's bit width.
func (s *Signal) PhysToRaw(phys float64) uint64 {
	unscaled := (phys - s.offset) / s.factor
	switch s.EffectiveValueType() {
	case Float32:
		return uint64(math.Float32bits(float32(unscaled)))
	case Float64:
		return math.Float64bits(unscaled)
	case Signed:
		return uint64(int64(unscaled)) & maskFor(s.bitSize)
	default: // Unsigned
		return uint64(unscaled) & maskFor(s.bitSize)
	}
}

// DecodePhys decodes payload and converts straight to physical units.
func (s *Signal) DecodePhys(payload [8]byte) float64 {
	return s.RawToPhys(s.Decode(payload))
}

// Label returns the value-encoding description for a decoded raw value, if
// any is defined.
func (s *Signal) Label(raw uint64) (string, bool) {
	for _, e := range s.encodings {
		if e.Value == raw {
			return e.Description, true
		}
	}
	return "", false
}

func dedupOrdered(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cloneUniqueEncodings(ownerName string, in []ValueEncoding) ([]ValueEncoding, error) {
	seen := make(map[uint64]struct{}, len(in))
	out := make([]ValueEncoding, 0, len(in))
	for _, e := range in {
		if _, dup := seen[e.Value]; dup {
			return nil, fmt.Errorf("signal %q: %w: value %d", ownerName, ErrDuplicateValue, e.Value)
		}
		seen[e.Value] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func cloneExtendedMuxRanges(in []ExtendedMuxRange) []ExtendedMuxRange {
	out := make([]ExtendedMuxRange, len(in))
	for i, r := range in {
		ranges := make([]MuxValueRange, len(r.Ranges))
		copy(ranges, r.Ranges)
		out[i] = ExtendedMuxRange{SwitchName: r.SwitchName, Ranges: ranges}
	}
	return out
}
