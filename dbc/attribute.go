package dbc

import "fmt"

// AttributeObjectType is the kind of entity an AttributeDefinition may be
// attached to.
type AttributeObjectType int

const (
	ObjNetwork AttributeObjectType = iota
	ObjNode
	ObjMessage
	ObjSignal
	ObjEnvironmentVariable
)

// AttributeValueKind is the tag of the variant an AttributeValue carries.
type AttributeValueKind int

const (
	AttrInt AttributeValueKind = iota
	AttrFloat
	AttrString
	AttrEnum
)

// AttributeDefinition is a typed schema for a named attribute: what kind of
// entity it may decorate and what values it accepts.
type AttributeDefinition struct {
	name       string
	objectType AttributeObjectType
	kind       AttributeValueKind

	intMin, intMax     int64
	floatMin, floatMax float64
	enumValues         []string
}

// AttributeDefinitionParams is the input to NewAttributeDefinition.
type AttributeDefinitionParams struct {
	Name       string
	ObjectType AttributeObjectType
	Kind       AttributeValueKind
	IntMin     int64
	IntMax     int64
	FloatMin   float64
	FloatMax   float64
	EnumValues []string
}

// NewAttributeDefinition constructs an AttributeDefinition from p.
func NewAttributeDefinition(p AttributeDefinitionParams) *AttributeDefinition {
	enum := make([]string, len(p.EnumValues))
	copy(enum, p.EnumValues)
	return &AttributeDefinition{
		name:       p.Name,
		objectType: p.ObjectType,
		kind:       p.Kind,
		intMin:     p.IntMin,
		intMax:     p.IntMax,
		floatMin:   p.FloatMin,
		floatMax:   p.FloatMax,
		enumValues: enum,
	}
}

func (d *AttributeDefinition) Name() string                     { return d.name }
func (d *AttributeDefinition) ObjectType() AttributeObjectType   { return d.objectType }
func (d *AttributeDefinition) Kind() AttributeValueKind          { return d.kind }
func (d *AttributeDefinition) IntRange() (int64, int64)          { return d.intMin, d.intMax }
func (d *AttributeDefinition) FloatRange() (float64, float64)    { return d.floatMin, d.floatMax }
func (d *AttributeDefinition) EnumValues() []string {
	out := make([]string, len(d.enumValues))
	copy(out, d.enumValues)
	return out
}

// Clone returns a deep copy of d.
func (d *AttributeDefinition) Clone() *AttributeDefinition {
	out := *d
	out.enumValues = d.EnumValues()
	return &out
}

func (d *AttributeDefinition) validate(v AttributeValue) error {
	if v.kind != d.kind {
		return fmt.Errorf("attribute %q: %w", d.name, ErrAttributeWrongType)
	}
	switch d.kind {
	case AttrInt:
		if v.intVal < d.intMin || v.intVal > d.intMax {
			return fmt.Errorf("attribute %q: %w: %d not in [%d,%d]", d.name, ErrAttributeOutOfRange, v.intVal, d.intMin, d.intMax)
		}
	case AttrFloat:
		if v.floatVal < d.floatMin || v.floatVal > d.floatMax {
			return fmt.Errorf("attribute %q: %w: %v not in [%v,%v]", d.name, ErrAttributeOutOfRange, v.floatVal, d.floatMin, d.floatMax)
		}
	case AttrEnum:
		found := false
		for _, e := range d.enumValues {
			if e == v.stringVal {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("attribute %q: %w: %q is not a member", d.name, ErrAttributeOutOfRange, v.stringVal)
		}
	case AttrString:
		// any string is acceptable
	}
	return nil
}

// AttributeValue is a tagged union over the value kinds an attribute can
// carry: int64, float64, string, or an enum member (itself a string, kept
// distinct so the kind reflects the definition it must validate against).
type AttributeValue struct {
	kind      AttributeValueKind
	intVal    int64
	floatVal  float64
	stringVal string
}

func IntValue(v int64) AttributeValue      { return AttributeValue{kind: AttrInt, intVal: v} }
func FloatValue(v float64) AttributeValue  { return AttributeValue{kind: AttrFloat, floatVal: v} }
func StringValue(v string) AttributeValue  { return AttributeValue{kind: AttrString, stringVal: v} }
func EnumValue(member string) AttributeValue { return AttributeValue{kind: AttrEnum, stringVal: member} }

func (v AttributeValue) Kind() AttributeValueKind { return v.kind }
func (v AttributeValue) Int() int64               { return v.intVal }
func (v AttributeValue) Float() float64           { return v.floatVal }
func (v AttributeValue) Str() string              { return v.stringVal }

// Attribute is a named, typed value attached to a Network, Node, Message,
// Signal, or EnvironmentVariable, validated against an AttributeDefinition
// at construction time.
type Attribute struct {
	name       string
	objectType AttributeObjectType
	value      AttributeValue
}

// NewAttribute validates value against def and that def applies to
// hostType, returning a constructed Attribute.
func NewAttribute(def *AttributeDefinition, hostType AttributeObjectType, value AttributeValue) (Attribute, error) {
	if def.objectType != hostType {
		return Attribute{}, fmt.Errorf("attribute %q: %w (defined for %v, attached to %v)", def.name, ErrAttributeObjectType, def.objectType, hostType)
	}
	if err := def.validate(value); err != nil {
		return Attribute{}, err
	}
	return Attribute{name: def.name, objectType: hostType, value: value}, nil
}

func (a Attribute) Name() string                   { return a.name }
func (a Attribute) ObjectType() AttributeObjectType { return a.objectType }
func (a Attribute) Value() AttributeValue           { return a.value }

func cloneAttributes(in []Attribute) []Attribute {
	out := make([]Attribute, len(in))
	copy(out, in)
	return out
}
