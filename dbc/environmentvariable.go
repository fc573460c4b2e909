package dbc

// EnvVarType is the declared type of an EnvironmentVariable.
type EnvVarType int

const (
	EnvInteger EnvVarType = iota
	EnvFloat
	EnvString
	EnvData
)

// EnvVarAccessType is who may read/write an EnvironmentVariable.
type EnvVarAccessType int

const (
	AccessUnrestricted EnvVarAccessType = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

// EnvironmentVariable is a named out-of-frame variable used by bus
// simulation tooling; it carries no payload-decode semantics of its own.
type EnvironmentVariable struct {
	name         string
	varType      EnvVarType
	min          float64
	max          float64
	unit         string
	initialValue float64
	id           uint64
	accessType   EnvVarAccessType
	accessNodes  []string
	encodings    []ValueEncoding
	attributes   []Attribute
}

// EnvironmentVariableParams is the input to NewEnvironmentVariable.
type EnvironmentVariableParams struct {
	Name         string
	Type         EnvVarType
	Min          float64
	Max          float64
	Unit         string
	InitialValue float64
	ID           uint64
	AccessType   EnvVarAccessType
	AccessNodes  []string
	Encodings    []ValueEncoding
	Attributes   []Attribute
}

// NewEnvironmentVariable constructs an EnvironmentVariable from p.
func NewEnvironmentVariable(p EnvironmentVariableParams) (*EnvironmentVariable, error) {
	encodings, err := cloneUniqueEncodings(p.Name, p.Encodings)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, len(p.AccessNodes))
	copy(nodes, p.AccessNodes)
	return &EnvironmentVariable{
		name:         p.Name,
		varType:      p.Type,
		min:          p.Min,
		max:          p.Max,
		unit:         p.Unit,
		initialValue: p.InitialValue,
		id:           p.ID,
		accessType:   p.AccessType,
		accessNodes:  nodes,
		encodings:    encodings,
		attributes:   cloneAttributes(p.Attributes),
	}, nil
}

func (e *EnvironmentVariable) Name() string             { return e.name }
func (e *EnvironmentVariable) Type() EnvVarType         { return e.varType }
func (e *EnvironmentVariable) Min() float64             { return e.min }
func (e *EnvironmentVariable) Max() float64             { return e.max }
func (e *EnvironmentVariable) Unit() string             { return e.unit }
func (e *EnvironmentVariable) InitialValue() float64    { return e.initialValue }
func (e *EnvironmentVariable) ID() uint64               { return e.id }
func (e *EnvironmentVariable) AccessType() EnvVarAccessType { return e.accessType }

func (e *EnvironmentVariable) AccessNodes() []string {
	out := make([]string, len(e.accessNodes))
	copy(out, e.accessNodes)
	return out
}

func (e *EnvironmentVariable) Encodings() []ValueEncoding {
	out := make([]ValueEncoding, len(e.encodings))
	copy(out, e.encodings)
	return out
}

func (e *EnvironmentVariable) Attributes() []Attribute {
	return cloneAttributes(e.attributes)
}

// Clone returns a deep copy of e.
func (e *EnvironmentVariable) Clone() *EnvironmentVariable {
	out := *e
	out.accessNodes = e.AccessNodes()
	out.encodings = e.Encodings()
	out.attributes = e.Attributes()
	return &out
}
