package dbc

import "fmt"

// ValueEncoding is a single (raw value -> label) pair, collected either into
// a named ValueTable or attached directly to a Signal.
type ValueEncoding struct {
	Value       uint64
	Description string
}

// ValueTable is a named, reusable collection of ValueEncodings, optionally
// tagged with a signal-type name it was generated for.
type ValueTable struct {
	name       string
	signalType string
	encodings  []ValueEncoding
}

// NewValueTable validates that encodings values are unique and constructs a
// ValueTable. encodings is copied; the caller's slice is not retained.
func NewValueTable(name string, signalType string, encodings []ValueEncoding) (*ValueTable, error) {
	seen := make(map[uint64]struct{}, len(encodings))
	owned := make([]ValueEncoding, len(encodings))
	for i, e := range encodings {
		if _, dup := seen[e.Value]; dup {
			return nil, fmt.Errorf("value table %q: %w: value %d", name, ErrDuplicateValue, e.Value)
		}
		seen[e.Value] = struct{}{}
		owned[i] = e
	}
	return &ValueTable{name: name, signalType: signalType, encodings: owned}, nil
}

// Name returns the value table's identity key.
func (vt *ValueTable) Name() string { return vt.name }

// SignalType returns the optional signal-type reference the table was
// declared against, or "" if none.
func (vt *ValueTable) SignalType() string { return vt.signalType }

// Encodings returns a copy of the table's (value, description) pairs.
func (vt *ValueTable) Encodings() []ValueEncoding {
	out := make([]ValueEncoding, len(vt.encodings))
	copy(out, vt.encodings)
	return out
}

// Find returns the description for a raw value, if present.
func (vt *ValueTable) Find(value uint64) (string, bool) {
	for _, e := range vt.encodings {
		if e.Value == value {
			return e.Description, true
		}
	}
	return "", false
}

// Clone returns a deep copy of vt.
func (vt *ValueTable) Clone() *ValueTable {
	out := *vt
	out.encodings = vt.Encodings()
	return &out
}
