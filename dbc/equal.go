package dbc

// Equal implements the §8 equality rule: set-equality over each collection
// (ignoring order), scalar equality over leaf fields.

func setEqual[T any](a, b []T, eq func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for i, y := range b {
			if used[i] {
				continue
			}
			if eq(x, y) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func stringSetEqual(a, b []string) bool {
	return setEqual(a, b, func(x, y string) bool { return x == y })
}

// Equal reports whether n and o are equal per §8: scalar equality on leaf
// fields, set-equality (order-independent) on every collection.
func (n *Network) Equal(o *Network) bool {
	if o == nil {
		return false
	}
	if n.version != o.version || n.bitTiming != o.bitTiming || n.comment != o.comment {
		return false
	}
	if !stringSetEqual(n.newSymbols, o.newSymbols) {
		return false
	}
	if !setEqual(n.nodes, o.nodes, func(x, y *Node) bool { return x.Equal(y) }) {
		return false
	}
	if !setEqual(n.valueTables, o.valueTables, func(x, y *ValueTable) bool { return x.Equal(y) }) {
		return false
	}
	if !setEqual(n.messages, o.messages, func(x, y *Message) bool { return x.Equal(y) }) {
		return false
	}
	if !setEqual(n.environmentVariables, o.environmentVariables, func(x, y *EnvironmentVariable) bool { return x.Equal(y) }) {
		return false
	}
	if !setEqual(n.attributeDefinitions, o.attributeDefinitions, func(x, y *AttributeDefinition) bool { return x.Equal(y) }) {
		return false
	}
	if len(n.attributeDefaults) != len(o.attributeDefaults) {
		return false
	}
	for k, v := range n.attributeDefaults {
		ov, ok := o.attributeDefaults[k]
		if !ok || v != ov {
			return false
		}
	}
	if !setEqual(n.attributeValues, o.attributeValues, attributesEqual) {
		return false
	}
	return true
}

func (n *Node) Equal(o *Node) bool {
	if o == nil || n.name != o.name || n.comment != o.comment {
		return false
	}
	return setEqual(n.attributes, o.attributes, attributesEqual)
}

func (vt *ValueTable) Equal(o *ValueTable) bool {
	if o == nil || vt.name != o.name || vt.signalType != o.signalType {
		return false
	}
	return setEqual(vt.encodings, o.encodings, func(x, y ValueEncoding) bool { return x == y })
}

func (e *EnvironmentVariable) Equal(o *EnvironmentVariable) bool {
	if o == nil {
		return false
	}
	if e.name != o.name || e.varType != o.varType || e.min != o.min || e.max != o.max ||
		e.unit != o.unit || e.initialValue != o.initialValue || e.id != o.id || e.accessType != o.accessType {
		return false
	}
	if !stringSetEqual(e.accessNodes, o.accessNodes) {
		return false
	}
	if !setEqual(e.encodings, o.encodings, func(x, y ValueEncoding) bool { return x == y }) {
		return false
	}
	return setEqual(e.attributes, o.attributes, attributesEqual)
}

func (d *AttributeDefinition) Equal(o *AttributeDefinition) bool {
	if o == nil || d.name != o.name || d.objectType != o.objectType || d.kind != o.kind {
		return false
	}
	if d.intMin != o.intMin || d.intMax != o.intMax || d.floatMin != o.floatMin || d.floatMax != o.floatMax {
		return false
	}
	return stringSetEqual(d.enumValues, o.enumValues)
}

func attributesEqual(x, y Attribute) bool {
	return x.name == y.name && x.objectType == y.objectType && x.value == y.value
}

func (g *SignalGroup) Equal(o *SignalGroup) bool {
	if o == nil || g.name != o.name || g.repetitions != o.repetitions {
		return false
	}
	return stringSetEqual(g.signalNames, o.signalNames)
}

func (s *Signal) Equal(o *Signal) bool {
	if o == nil {
		return false
	}
	if s.name != o.name || s.muxIndicator != o.muxIndicator || s.muxSwitchValue != o.muxSwitchValue ||
		s.startBit != o.startBit || s.bitSize != o.bitSize || s.byteOrder != o.byteOrder ||
		s.valueType != o.valueType || s.factor != o.factor || s.offset != o.offset ||
		s.min != o.min || s.max != o.max || s.unit != o.unit || s.comment != o.comment {
		return false
	}
	if !stringSetEqual(s.receivers, o.receivers) {
		return false
	}
	if !setEqual(s.encodings, o.encodings, func(x, y ValueEncoding) bool { return x == y }) {
		return false
	}
	if !setEqual(s.extendedMux, o.extendedMux, extendedMuxRangeEqual) {
		return false
	}
	return setEqual(s.attributes, o.attributes, attributesEqual)
}

func extendedMuxRangeEqual(x, y ExtendedMuxRange) bool {
	if x.SwitchName != y.SwitchName {
		return false
	}
	return setEqual(x.Ranges, y.Ranges, func(a, b MuxValueRange) bool { return a == b })
}

func (m *Message) Equal(o *Message) bool {
	if o == nil || m.id != o.id || m.name != o.name || m.size != o.size ||
		m.transmitter != o.transmitter || m.comment != o.comment || m.errorBits != o.errorBits {
		return false
	}
	if !stringSetEqual(m.extraTransmitters, o.extraTransmitters) {
		return false
	}
	if !setEqual(m.signals, o.signals, func(x, y *Signal) bool { return x.Equal(y) }) {
		return false
	}
	if !setEqual(m.signalGroups, o.signalGroups, func(x, y *SignalGroup) bool { return x.Equal(y) }) {
		return false
	}
	return setEqual(m.attributes, o.attributes, attributesEqual)
}
