package dbc

import "fmt"

// SignalGroup is a named subset of a Message's signals, used by tooling
// that needs to render or validate related signals together.
type SignalGroup struct {
	name         string
	repetitions  uint64
	signalNames  []string
}

// NewSignalGroup constructs a SignalGroup, validating that every referenced
// signal name exists in messageSignalNames (the host Message's own signal
// names).
func NewSignalGroup(name string, repetitions uint64, members []string, messageSignalNames map[string]struct{}) (*SignalGroup, error) {
	for _, m := range members {
		if _, ok := messageSignalNames[m]; !ok {
			return nil, fmt.Errorf("signal group %q: %w: %q", name, ErrUnknownSignalGroupRef, m)
		}
	}
	names := make([]string, len(members))
	copy(names, members)
	return &SignalGroup{name: name, repetitions: repetitions, signalNames: names}, nil
}

func (g *SignalGroup) Name() string        { return g.name }
func (g *SignalGroup) Repetitions() uint64 { return g.repetitions }
func (g *SignalGroup) SignalNames() []string {
	out := make([]string, len(g.signalNames))
	copy(out, g.signalNames)
	return out
}

// Clone returns a deep copy of g.
func (g *SignalGroup) Clone() *SignalGroup {
	out := *g
	out.signalNames = g.SignalNames()
	return &out
}
