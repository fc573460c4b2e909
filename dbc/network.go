package dbc

import "fmt"

// Network is the top-level container: version string, new-symbol list, bit
// timing, and the collections of every other entity in this package.
type Network struct {
	version              string
	newSymbols           []string
	bitTiming            BitTiming
	nodes                []*Node
	valueTables          []*ValueTable
	messages             []*Message
	environmentVariables []*EnvironmentVariable
	attributeDefinitions []*AttributeDefinition
	attributeDefaults    map[string]AttributeValue
	attributeValues      []Attribute
	comment              string
}

// NetworkParams is the input to NewNetwork.
type NetworkParams struct {
	Version              string
	NewSymbols           []string
	BitTiming            BitTiming
	Nodes                []*Node
	ValueTables          []*ValueTable
	Messages             []*Message
	EnvironmentVariables []*EnvironmentVariable
	AttributeDefinitions []*AttributeDefinition
	AttributeDefaults    map[string]AttributeValue
	AttributeValues      []Attribute
	Comment              string
}

// NewNetwork validates every collection's identity-uniqueness invariant and
// that attribute defaults/values reference only definitions present in
// AttributeDefinitions, then constructs a Network.
func NewNetwork(p NetworkParams) (*Network, error) {
	defsByKey := make(map[string]*AttributeDefinition, len(p.AttributeDefinitions))
	defs := make([]*AttributeDefinition, 0, len(p.AttributeDefinitions))
	for _, d := range p.AttributeDefinitions {
		key := attrDefKey(d.objectType, d.name)
		if _, dup := defsByKey[key]; dup {
			return nil, fmt.Errorf("network: %w: attribute definition (%v,%q)", ErrDuplicateValue, d.objectType, d.name)
		}
		defsByKey[key] = d
		defs = append(defs, d.Clone())
	}
	defNames := make(map[string]struct{}, len(p.AttributeDefinitions))
	for _, d := range p.AttributeDefinitions {
		defNames[d.name] = struct{}{}
	}

	for name := range p.AttributeDefaults {
		if _, ok := defNames[name]; !ok {
			return nil, fmt.Errorf("network: %w: default for %q", ErrUnknownAttributeDef, name)
		}
	}
	for _, a := range p.AttributeValues {
		if a.ObjectType() != ObjNetwork {
			return nil, fmt.Errorf("network: %w", ErrAttributeObjectType)
		}
		if _, ok := defNames[a.Name()]; !ok {
			return nil, fmt.Errorf("network: %w: value for %q", ErrUnknownAttributeDef, a.Name())
		}
	}

	nodes := make([]*Node, 0, len(p.Nodes))
	nodeNames := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, dup := nodeNames[n.name]; dup {
			return nil, fmt.Errorf("network: %w: node %q", ErrDuplicateValue, n.name)
		}
		nodeNames[n.name] = struct{}{}
		nodes = append(nodes, n.Clone())
	}

	tables := make([]*ValueTable, 0, len(p.ValueTables))
	tableNames := make(map[string]struct{}, len(p.ValueTables))
	for _, t := range p.ValueTables {
		if _, dup := tableNames[t.name]; dup {
			return nil, fmt.Errorf("network: %w: value table %q", ErrDuplicateValue, t.name)
		}
		tableNames[t.name] = struct{}{}
		tables = append(tables, t.Clone())
	}

	msgs := make([]*Message, 0, len(p.Messages))
	msgIDs := make(map[uint64]struct{}, len(p.Messages))
	for _, m := range p.Messages {
		if _, dup := msgIDs[m.id]; dup {
			return nil, fmt.Errorf("network: %w: message id %d", ErrDuplicateValue, m.id)
		}
		msgIDs[m.id] = struct{}{}
		msgs = append(msgs, m.Clone())
	}

	evs := make([]*EnvironmentVariable, 0, len(p.EnvironmentVariables))
	evNames := make(map[string]struct{}, len(p.EnvironmentVariables))
	for _, e := range p.EnvironmentVariables {
		if _, dup := evNames[e.name]; dup {
			return nil, fmt.Errorf("network: %w: environment variable %q", ErrDuplicateValue, e.name)
		}
		evNames[e.name] = struct{}{}
		evs = append(evs, e.Clone())
	}

	defaults := make(map[string]AttributeValue, len(p.AttributeDefaults))
	for k, v := range p.AttributeDefaults {
		defaults[k] = v
	}

	return &Network{
		version:              p.Version,
		newSymbols:           dedupOrdered(p.NewSymbols),
		bitTiming:            p.BitTiming,
		nodes:                nodes,
		valueTables:          tables,
		messages:             msgs,
		environmentVariables: evs,
		attributeDefinitions: defs,
		attributeDefaults:    defaults,
		attributeValues:      cloneAttributes(p.AttributeValues),
		comment:              p.Comment,
	}, nil
}

func attrDefKey(t AttributeObjectType, name string) string {
	return fmt.Sprintf("%d:%s", t, name)
}

func (n *Network) Version() string       { return n.version }
func (n *Network) BitTiming() BitTiming  { return n.bitTiming }
func (n *Network) Comment() string       { return n.comment }

func (n *Network) NewSymbols() []string {
	out := make([]string, len(n.newSymbols))
	copy(out, n.newSymbols)
	return out
}

func (n *Network) Nodes() []*Node {
	out := make([]*Node, len(n.nodes))
	for i, v := range n.nodes {
		out[i] = v.Clone()
	}
	return out
}

func (n *Network) ValueTables() []*ValueTable {
	out := make([]*ValueTable, len(n.valueTables))
	for i, v := range n.valueTables {
		out[i] = v.Clone()
	}
	return out
}

func (n *Network) Messages() []*Message {
	out := make([]*Message, len(n.messages))
	for i, v := range n.messages {
		out[i] = v.Clone()
	}
	return out
}

func (n *Network) EnvironmentVariables() []*EnvironmentVariable {
	out := make([]*EnvironmentVariable, len(n.environmentVariables))
	for i, v := range n.environmentVariables {
		out[i] = v.Clone()
	}
	return out
}

func (n *Network) AttributeDefinitions() []*AttributeDefinition {
	out := make([]*AttributeDefinition, len(n.attributeDefinitions))
	for i, v := range n.attributeDefinitions {
		out[i] = v.Clone()
	}
	return out
}

func (n *Network) AttributeDefaults() map[string]AttributeValue {
	out := make(map[string]AttributeValue, len(n.attributeDefaults))
	for k, v := range n.attributeDefaults {
		out[k] = v
	}
	return out
}

func (n *Network) AttributeValues() []Attribute {
	return cloneAttributes(n.attributeValues)
}

// MessageByID finds a message by its numeric identifier and extended-frame
// flag.
func (n *Network) MessageByID(id uint32, extended bool) (*Message, bool) {
	raw := uint64(id)
	if extended {
		raw |= extendedIDFlag
	}
	for _, m := range n.messages {
		if m.id == raw {
			return m.Clone(), true
		}
	}
	return nil, false
}

// MessageForFrame finds the message that describes f, if any.
func (n *Network) MessageForFrame(f Frame) (*Message, bool) {
	raw := f.rawID()
	for _, m := range n.messages {
		if m.id == raw {
			return m.Clone(), true
		}
	}
	return nil, false
}

// NodeByName finds a node by name.
func (n *Network) NodeByName(name string) (*Node, bool) {
	for _, v := range n.nodes {
		if v.name == name {
			return v.Clone(), true
		}
	}
	return nil, false
}

// ValueTableByName finds a value table by name.
func (n *Network) ValueTableByName(name string) (*ValueTable, bool) {
	for _, v := range n.valueTables {
		if v.name == name {
			return v.Clone(), true
		}
	}
	return nil, false
}

// Clone returns a deep copy of n.
func (n *Network) Clone() *Network {
	out, _ := NewNetwork(NetworkParams{
		Version:              n.version,
		NewSymbols:           n.NewSymbols(),
		BitTiming:            n.bitTiming,
		Nodes:                n.nodes,
		ValueTables:          n.valueTables,
		Messages:             n.messages,
		EnvironmentVariables: n.environmentVariables,
		AttributeDefinitions: n.attributeDefinitions,
		AttributeDefaults:    n.attributeDefaults,
		AttributeValues:      n.attributeValues,
		Comment:              n.comment,
	})
	return out
}
