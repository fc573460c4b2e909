package dbcfile

import (
	"fmt"

	"github.com/guoh27/go-dbc/dbc"
)

// finalize resolves every staged directive against the entities discovered
// while scanning, then constructs the immutable dbc.Network. Apart from
// value tables, which parseValueTable builds with dbc.NewValueTable as it
// scans, this is the only place dbc.NewX constructors are called: everything
// before this point only accumulates builder state.
func (b *builder) finalize() (*dbc.Network, error) {
	defsByName := make(map[string]*dbc.AttributeDefinition, len(b.attrDefs))
	defList := make([]*dbc.AttributeDefinition, 0, len(b.attrDefs))
	for _, p := range b.attrDefs {
		d := dbc.NewAttributeDefinition(p)
		defsByName[p.Name] = d
		defList = append(defList, d)
	}

	if err := b.resolveComments(); err != nil {
		return nil, err
	}
	var networkAttrs []dbc.Attribute
	var err error
	if networkAttrs, err = b.resolveAttrs(defsByName); err != nil {
		return nil, err
	}
	if err := b.resolveSigValues(); err != nil {
		return nil, err
	}
	if err := b.resolveEnvValues(); err != nil {
		return nil, err
	}
	if err := b.resolveMuxRanges(); err != nil {
		return nil, err
	}

	nodes := make([]*dbc.Node, 0, len(b.nodeOrder))
	for _, name := range b.nodeOrder {
		nb := b.nodes[name]
		n, err := dbc.NewNode(nb.name, nb.comment, nb.attrs)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		nodes = append(nodes, n)
	}

	messages := make([]*dbc.Message, 0, len(b.msgOrder))
	for _, id := range b.msgOrder {
		mb := b.messages[id]

		signals := make([]*dbc.Signal, 0, len(mb.sigOrder))
		signalNames := make(map[string]struct{}, len(mb.sigOrder))
		for _, name := range mb.sigOrder {
			sb := mb.sigs[name]
			sb.p.Comment = sb.comment
			sb.p.Attributes = sb.attrs
			s, err := dbc.NewSignal(sb.p)
			if err != nil {
				return nil, fmt.Errorf("message %q signal %q: %w", mb.name, name, err)
			}
			signals = append(signals, s)
			signalNames[name] = struct{}{}
		}

		var groups []*dbc.SignalGroup
		for _, psg := range b.pendingSigGroups {
			if psg.msgID != id {
				continue
			}
			g, err := dbc.NewSignalGroup(psg.name, psg.repetitions, psg.members, signalNames)
			if err != nil {
				return nil, fmt.Errorf("message %q: %w", mb.name, err)
			}
			groups = append(groups, g)
		}

		m, err := dbc.NewMessage(dbc.MessageParams{
			ID:                id,
			Name:              mb.name,
			Size:              mb.size,
			Transmitter:       mb.transmitter,
			ExtraTransmitters: mb.extraTransmitters,
			Signals:           signals,
			SignalGroups:      groups,
			Attributes:        mb.attrs,
			Comment:           mb.comment,
		})
		if err != nil {
			return nil, fmt.Errorf("message %q: %w", mb.name, err)
		}
		messages = append(messages, m)
	}

	envs := make([]*dbc.EnvironmentVariable, 0, len(b.envOrder))
	for _, name := range b.envOrder {
		eb := b.envs[name]
		e, err := dbc.NewEnvironmentVariable(eb.p)
		if err != nil {
			return nil, fmt.Errorf("environment variable %q: %w", name, err)
		}
		envs = append(envs, e)
	}

	return dbc.NewNetwork(dbc.NetworkParams{
		Version:              b.version,
		NewSymbols:           b.newSymbols,
		BitTiming:            b.bitTiming,
		Nodes:                nodes,
		ValueTables:          b.valueTables,
		Messages:             messages,
		EnvironmentVariables: envs,
		AttributeDefinitions: defList,
		AttributeDefaults:    b.attrDefaults,
		AttributeValues:      networkAttrs,
		Comment:              b.pendingNetworkComment,
	})
}

func (b *builder) resolveComments() error {
	for _, pc := range b.pendingComments {
		switch pc.kind {
		case "BU_":
			nb, ok := b.nodes[pc.name]
			if !ok {
				return fmt.Errorf("%w: comment for node %q", ErrUnknownReference, pc.name)
			}
			nb.comment = pc.text
		case "BO_":
			mb, ok := b.messages[pc.msgID]
			if !ok {
				return fmt.Errorf("%w: comment for message %d", ErrUnknownReference, pc.msgID)
			}
			mb.comment = pc.text
		case "SG_":
			mb, ok := b.messages[pc.msgID]
			if !ok {
				return fmt.Errorf("%w: comment for message %d", ErrUnknownReference, pc.msgID)
			}
			sb, ok := mb.sigs[pc.signal]
			if !ok {
				return fmt.Errorf("%w: comment for signal %q", ErrUnknownReference, pc.signal)
			}
			sb.comment = pc.text
		case "EV_":
			// dbc.EnvironmentVariable carries no comment field; the text is
			// parsed for compatibility with real files but not retained.
		}
	}
	return nil
}

func (b *builder) resolveAttrs(defsByName map[string]*dbc.AttributeDefinition) ([]dbc.Attribute, error) {
	var networkAttrs []dbc.Attribute
	for _, pa := range b.pendingAttrs {
		def, ok := defsByName[pa.attrName]
		if !ok {
			return nil, fmt.Errorf("%w: attribute %q", ErrUnknownReference, pa.attrName)
		}
		value, err := valueFromRaw(def.Kind(), pa.raw)
		if err != nil {
			return nil, err
		}
		hostType := kindToObjectType(pa.kind)
		attr, err := dbc.NewAttribute(def, hostType, value)
		if err != nil {
			return nil, err
		}
		switch hostType {
		case dbc.ObjNetwork:
			networkAttrs = append(networkAttrs, attr)
		case dbc.ObjNode:
			nb, ok := b.nodes[pa.name]
			if !ok {
				return nil, fmt.Errorf("%w: attribute for node %q", ErrUnknownReference, pa.name)
			}
			nb.attrs = append(nb.attrs, attr)
		case dbc.ObjMessage:
			mb, ok := b.messages[pa.msgID]
			if !ok {
				return nil, fmt.Errorf("%w: attribute for message %d", ErrUnknownReference, pa.msgID)
			}
			mb.attrs = append(mb.attrs, attr)
		case dbc.ObjSignal:
			mb, ok := b.messages[pa.msgID]
			if !ok {
				return nil, fmt.Errorf("%w: attribute for message %d", ErrUnknownReference, pa.msgID)
			}
			sb, ok := mb.sigs[pa.signal]
			if !ok {
				return nil, fmt.Errorf("%w: attribute for signal %q", ErrUnknownReference, pa.signal)
			}
			sb.attrs = append(sb.attrs, attr)
		case dbc.ObjEnvironmentVariable:
			eb, ok := b.envs[pa.name]
			if !ok {
				return nil, fmt.Errorf("%w: attribute for environment variable %q", ErrUnknownReference, pa.name)
			}
			eb.p.Attributes = append(eb.p.Attributes, attr)
		}
	}
	return networkAttrs, nil
}

func (b *builder) resolveSigValues() error {
	for _, pv := range b.pendingSigValues {
		mb, ok := b.messages[pv.msgID]
		if !ok {
			return fmt.Errorf("%w: VAL_ for message %d", ErrUnknownReference, pv.msgID)
		}
		sb, ok := mb.sigs[pv.signal]
		if !ok {
			return fmt.Errorf("%w: VAL_ for signal %q", ErrUnknownReference, pv.signal)
		}
		sb.p.ValueEncodings = pv.encoding
	}
	return nil
}

func (b *builder) resolveEnvValues() error {
	for _, pv := range b.pendingEnvValues {
		eb, ok := b.envs[pv.name]
		if !ok {
			return fmt.Errorf("%w: VAL_ for environment variable %q", ErrUnknownReference, pv.name)
		}
		eb.p.Encodings = pv.encoding
	}
	return nil
}

func (b *builder) resolveMuxRanges() error {
	for _, pm := range b.pendingMux {
		mb, ok := b.messages[pm.msgID]
		if !ok {
			return fmt.Errorf("%w: SG_MUL_VAL_ for message %d", ErrUnknownReference, pm.msgID)
		}
		sb, ok := mb.sigs[pm.signal]
		if !ok {
			return fmt.Errorf("%w: SG_MUL_VAL_ for signal %q", ErrUnknownReference, pm.signal)
		}
		sb.p.MuxIndicator = dbc.MuxValue

		found := false
		for i, r := range sb.p.ExtendedMuxRanges {
			if r.SwitchName == pm.switchName {
				sb.p.ExtendedMuxRanges[i].Ranges = append(sb.p.ExtendedMuxRanges[i].Ranges, pm.ranges...)
				found = true
				break
			}
		}
		if !found {
			sb.p.ExtendedMuxRanges = append(sb.p.ExtendedMuxRanges, dbc.ExtendedMuxRange{
				SwitchName: pm.switchName,
				Ranges:     pm.ranges,
			})
		}
	}
	return nil
}
