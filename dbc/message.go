package dbc

import "fmt"

// extendedIDFlag is the high bit of Message.ID that marks a 29-bit extended
// CAN identifier, as DBC encodes it.
const extendedIDFlag uint64 = 0x80000000

// Message is a CAN identifier plus an ordered set of signals.
type Message struct {
	id                 uint64
	name               string
	size               uint64
	transmitter        string
	extraTransmitters  []string
	signals            []*Signal
	signalGroups       []*SignalGroup
	attributes         []Attribute
	comment            string

	// muxSwitchIndex is a derived view: the index into signals of the one
	// MuxSwitch signal, or -1 if none. It is never an owning reference and
	// is recomputed after every mutation (construction, Clone, Merge).
	muxSwitchIndex int
	errorBits      MessageError
}

// MessageParams is the input to NewMessage.
type MessageParams struct {
	ID                uint64
	Name              string
	Size              uint64
	Transmitter       string
	ExtraTransmitters []string
	Signals           []*Signal
	SignalGroups      []*SignalGroup
	Attributes        []Attribute
	Comment           string
}

// NewMessage constructs a Message, deduplicating signal names (the later
// duplicate is discarded, SignalNameDuplicated is recorded) and recomputing
// the multiplexer-switch cache and error bitset.
func NewMessage(p MessageParams) (*Message, error) {
	for _, a := range p.Attributes {
		if a.ObjectType() != ObjMessage {
			return nil, fmt.Errorf("message %q: %w", p.Name, ErrAttributeObjectType)
		}
	}

	m := &Message{
		id:                p.ID,
		name:              p.Name,
		size:              p.Size,
		transmitter:       p.Transmitter,
		extraTransmitters: dedupOrdered(p.ExtraTransmitters),
		attributes:        cloneAttributes(p.Attributes),
		comment:           p.Comment,
	}
	m.setSignals(p.Signals)
	m.signalGroups = make([]*SignalGroup, len(p.SignalGroups))
	for i, g := range p.SignalGroups {
		m.signalGroups[i] = g.Clone()
	}
	return m, nil
}

// setSignals replaces the signal list wholesale, deduplicating by name and
// recomputing the derived mux-switch index and error bitset. This is the
// single place that invariant is re-established, called from construction,
// Clone, and Merge.
func (m *Message) setSignals(signals []*Signal) {
	seen := make(map[string]struct{}, len(signals))
	owned := make([]*Signal, 0, len(signals))
	var errs MessageError
	for _, s := range signals {
		if _, dup := seen[s.name]; dup {
			errs |= SignalNameDuplicated
			continue
		}
		seen[s.name] = struct{}{}
		owned = append(owned, s.Clone())
	}
	m.signals = owned
	m.recompute(errs)
}

// recompute rebuilds muxSwitchIndex and errorBits from the current signal
// list, folding in any flags already discovered (e.g. SignalNameDuplicated
// from setSignals) with the ones discoverable here.
func (m *Message) recompute(preexisting MessageError) {
	m.muxSwitchIndex = -1
	hasMuxValue := false
	for i, s := range m.signals {
		switch s.muxIndicator {
		case MuxSwitch:
			m.muxSwitchIndex = i
		case MuxValue:
			hasMuxValue = true
		}
	}
	errs := preexisting
	if hasMuxValue && m.muxSwitchIndex == -1 {
		errs |= MuxValueWithoutMuxSignal
	}
	m.errorBits = errs
}

func (m *Message) ID() uint64      { return m.id &^ extendedIDFlag }
func (m *Message) IsExtended() bool { return m.id&extendedIDFlag != 0 }
func (m *Message) RawID() uint64   { return m.id }
func (m *Message) Name() string    { return m.name }
func (m *Message) Size() uint64    { return m.size }
func (m *Message) Transmitter() string { return m.transmitter }
func (m *Message) Comment() string { return m.comment }

func (m *Message) ExtraTransmitters() []string {
	out := make([]string, len(m.extraTransmitters))
	copy(out, m.extraTransmitters)
	return out
}

// Signals returns the message's signals in declaration order. The returned
// slice and its elements are owned copies; mutating them does not affect m.
func (m *Message) Signals() []*Signal {
	out := make([]*Signal, len(m.signals))
	for i, s := range m.signals {
		out[i] = s.Clone()
	}
	return out
}

// SignalByName finds a signal by name, if present.
func (m *Message) SignalByName(name string) (*Signal, bool) {
	for _, s := range m.signals {
		if s.name == name {
			return s.Clone(), true
		}
	}
	return nil, false
}

func (m *Message) SignalGroups() []*SignalGroup {
	out := make([]*SignalGroup, len(m.signalGroups))
	for i, g := range m.signalGroups {
		out[i] = g.Clone()
	}
	return out
}

func (m *Message) Attributes() []Attribute {
	return cloneAttributes(m.attributes)
}

// MuxSwitch returns the message's multiplexer switch signal, if it has one.
func (m *Message) MuxSwitch() (*Signal, bool) {
	if m.muxSwitchIndex < 0 {
		return nil, false
	}
	return m.signals[m.muxSwitchIndex].Clone(), true
}

// HasError reports whether code is set in the message's soft-validity
// bitset. HasError(NoError) reports whether the bitset is empty.
func (m *Message) HasError(code MessageError) bool {
	return m.errorBits.Has(code)
}

// Errors returns the raw soft-validity bitset.
func (m *Message) Errors() MessageError { return m.errorBits }

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	out := &Message{
		id:                m.id,
		name:              m.name,
		size:              m.size,
		transmitter:       m.transmitter,
		extraTransmitters: m.ExtraTransmitters(),
		attributes:        m.Attributes(),
		comment:           m.comment,
		signalGroups:      m.SignalGroups(),
	}
	out.setSignals(m.signals)
	return out
}

// Decode extracts raw values for every signal present in payload, applying
// multiplex resolution (§4.3). The returned map is keyed by signal name.
func (m *Message) Decode(payload [8]byte) map[string]uint64 {
	present := m.presentSignals(payload)
	out := make(map[string]uint64, len(present))
	for _, s := range present {
		out[s.name] = s.Decode(payload)
	}
	return out
}

// DecodePhys is like Decode but converts every present signal straight to
// physical units.
func (m *Message) DecodePhys(payload [8]byte) map[string]float64 {
	present := m.presentSignals(payload)
	out := make(map[string]float64, len(present))
	for _, s := range present {
		out[s.name] = s.DecodePhys(payload)
	}
	return out
}

// PresentSignals returns, in declaration order, the subset of m's signals
// that are present in payload under the multiplex resolution rules of §4.3.
// Unlike Decode/DecodePhys it preserves order and lets the caller choose
// between raw, physical, or value-encoding label rendering per signal.
func (m *Message) PresentSignals(payload [8]byte) []*Signal {
	return m.presentSignals(payload)
}

// presentSignals returns the subset of m.signals that are present in
// payload, per the multiplex resolution rules in §4.3.
func (m *Message) presentSignals(payload [8]byte) []*Signal {
	out := make([]*Signal, 0, len(m.signals))
	for _, s := range m.signals {
		if m.signalPresent(s, payload, nil) {
			out = append(out, s)
		}
	}
	return out
}

// signalPresent evaluates whether s is present in payload. visited tracks
// switch-signal names already walked along this resolution path, guarding
// against cycles in a multi-level mux chain.
func (m *Message) signalPresent(s *Signal, payload [8]byte, visited map[string]struct{}) bool {
	if s.muxIndicator != MuxValue {
		return true
	}
	if len(s.extendedMux) == 0 {
		sw, ok := m.MuxSwitch()
		if !ok {
			return false
		}
		return sw.Decode(payload) == s.muxSwitchValue
	}
	for _, r := range s.extendedMux {
		if m.extendedRangeMatches(r, payload, visited) {
			return true
		}
	}
	return false
}

func (m *Message) extendedRangeMatches(r ExtendedMuxRange, payload [8]byte, visited map[string]struct{}) bool {
	if _, looping := visited[r.SwitchName]; looping {
		return false
	}
	sw, ok := m.signalByNameRaw(r.SwitchName)
	if !ok {
		return false
	}
	nextVisited := make(map[string]struct{}, len(visited)+1)
	for k := range visited {
		nextVisited[k] = struct{}{}
	}
	nextVisited[r.SwitchName] = struct{}{}
	if !m.signalPresent(sw, payload, nextVisited) {
		return false
	}
	v := sw.Decode(payload)
	for _, rng := range r.Ranges {
		if rng.From <= v && v <= rng.To {
			return true
		}
	}
	return false
}

// signalByNameRaw returns the internal (non-cloned) signal pointer, for use
// by the decode/resolution hot path only.
func (m *Message) signalByNameRaw(name string) (*Signal, bool) {
	for _, s := range m.signals {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}
