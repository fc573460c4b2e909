package dbc

// Merge combines other into n, consuming other: other is left holding empty
// collections so a caller cannot accidentally keep using a
// partially-cannibalized Network.
//
// Policies, by collection (§4.2):
//   - new symbols, message transmitters, signal receivers: union preserving
//     first-seen order.
//   - nodes, value tables, environment variables, attribute definitions,
//     attribute defaults, attribute values, signal groups: keyed by name,
//     other wins on collision.
//   - messages: keyed by id, recursively merged on collision.
//   - signals within a message: keyed by name, recursively merged on
//     collision.
//   - scalar fields on Message/Signal: compare-and-set (overwrite only if
//     the values differ).
func (n *Network) Merge(other *Network) {
	n.newSymbols = unionOrdered(n.newSymbols, other.newSymbols)
	n.nodes = mergeReplace(n.nodes, other.nodes, func(v *Node) string { return v.name })
	n.valueTables = mergeReplace(n.valueTables, other.valueTables, func(v *ValueTable) string { return v.name })
	n.environmentVariables = mergeReplace(n.environmentVariables, other.environmentVariables, func(v *EnvironmentVariable) string { return v.name })
	n.attributeDefinitions = mergeReplace(n.attributeDefinitions, other.attributeDefinitions, func(v *AttributeDefinition) string {
		return attrDefKey(v.objectType, v.name)
	})

	if n.attributeDefaults == nil {
		n.attributeDefaults = make(map[string]AttributeValue, len(other.attributeDefaults))
	}
	for k, v := range other.attributeDefaults {
		n.attributeDefaults[k] = v
	}

	n.attributeValues = mergeAttributesByName(n.attributeValues, other.attributeValues)
	n.messages = mergeMessages(n.messages, other.messages)

	*other = Network{attributeDefaults: map[string]AttributeValue{}}
}

func unionOrdered(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range b {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// mergeReplace unions self and incoming by key, with incoming winning
// wholesale on collision, preserving self's order and appending new keys in
// incoming's order.
func mergeReplace[K comparable, T any](self, incoming []T, key func(T) K) []T {
	index := make(map[K]int, len(self))
	out := make([]T, len(self))
	copy(out, self)
	for i, v := range out {
		index[key(v)] = i
	}
	for _, v := range incoming {
		k := key(v)
		if i, ok := index[k]; ok {
			out[i] = v
			continue
		}
		index[k] = len(out)
		out = append(out, v)
	}
	return out
}

func mergeAttributesByName(self, incoming []Attribute) []Attribute {
	index := make(map[string]int, len(self))
	out := make([]Attribute, len(self))
	copy(out, self)
	for i, v := range out {
		index[v.Name()] = i
	}
	for _, v := range incoming {
		if i, ok := index[v.Name()]; ok {
			out[i] = v
			continue
		}
		index[v.Name()] = len(out)
		out = append(out, v)
	}
	return out
}

func mergeMessages(self, incoming []*Message) []*Message {
	index := make(map[uint64]int, len(self))
	out := make([]*Message, len(self))
	copy(out, self)
	for i, m := range out {
		index[m.id] = i
	}
	for _, m := range incoming {
		if i, ok := index[m.id]; ok {
			out[i].merge(m)
			continue
		}
		index[m.id] = len(out)
		out = append(out, m.Clone())
	}
	return out
}

// merge folds other into m in place. Per §4.2, messages with different ids
// refuse to merge (silent no-op).
func (m *Message) merge(other *Message) {
	if m.id != other.id {
		return
	}
	compareSet(&m.name, other.name)
	compareSet(&m.size, other.size)
	compareSet(&m.transmitter, other.transmitter)
	compareSet(&m.comment, other.comment)

	m.extraTransmitters = unionOrdered(m.extraTransmitters, other.extraTransmitters)
	m.attributes = mergeAttributesByName(m.attributes, other.attributes)
	m.signalGroups = mergeReplace(m.signalGroups, other.signalGroups, func(v *SignalGroup) string { return v.name })

	signals := make([]*Signal, len(m.signals))
	copy(signals, m.signals)
	index := make(map[string]int, len(signals))
	for i, s := range signals {
		index[s.name] = i
	}
	for _, s := range other.signals {
		if i, ok := index[s.name]; ok {
			signals[i].merge(s)
			continue
		}
		index[s.name] = len(signals)
		signals = append(signals, s.Clone())
	}

	m.signals = signals
	m.recompute(NoError)
}

// merge folds other into s in place, per the scalar-field compare-and-set
// and keyed-collection-replace policies of §4.2.
func (s *Signal) merge(other *Signal) {
	compareSet(&s.startBit, other.startBit)
	compareSet(&s.bitSize, other.bitSize)
	compareSet(&s.byteOrder, other.byteOrder)
	compareSet(&s.valueType, other.valueType)
	compareSet(&s.factor, other.factor)
	compareSet(&s.offset, other.offset)
	compareSet(&s.min, other.min)
	compareSet(&s.max, other.max)
	compareSet(&s.unit, other.unit)

	s.receivers = unionOrdered(s.receivers, other.receivers)
	s.encodings = mergeReplace(s.encodings, other.encodings, func(v ValueEncoding) uint64 {
		return v.Value
	})
	s.extendedMux = mergeExtendedMuxRanges(s.extendedMux, other.extendedMux)
	s.effectiveStart = s.computeEffectiveStart()
}

func mergeExtendedMuxRanges(self, incoming []ExtendedMuxRange) []ExtendedMuxRange {
	type rangeKey struct {
		name     string
		from, to uint64
	}
	index := make(map[rangeKey]struct {
		listIdx, rangeIdx int
	})
	out := make([]ExtendedMuxRange, len(self))
	for i, r := range self {
		out[i] = ExtendedMuxRange{SwitchName: r.SwitchName, Ranges: append([]MuxValueRange(nil), r.Ranges...)}
		for j, rng := range r.Ranges {
			index[rangeKey{r.SwitchName, rng.From, rng.To}] = struct{ listIdx, rangeIdx int }{i, j}
		}
	}
	for _, r := range incoming {
		for _, rng := range r.Ranges {
			k := rangeKey{r.SwitchName, rng.From, rng.To}
			if pos, ok := index[k]; ok {
				out[pos.listIdx].Ranges[pos.rangeIdx] = rng
				continue
			}
			listIdx := -1
			for i, existing := range out {
				if existing.SwitchName == r.SwitchName {
					listIdx = i
					break
				}
			}
			if listIdx == -1 {
				out = append(out, ExtendedMuxRange{SwitchName: r.SwitchName})
				listIdx = len(out) - 1
			}
			out[listIdx].Ranges = append(out[listIdx].Ranges, rng)
			index[k] = struct{ listIdx, rangeIdx int }{listIdx, len(out[listIdx].Ranges) - 1}
		}
	}
	return out
}

// compareSet overwrites *dst with src only if they differ, mirroring the
// original implementation's compare_set helper.
func compareSet[T comparable](dst *T, src T) {
	if *dst != src {
		*dst = src
	}
}
