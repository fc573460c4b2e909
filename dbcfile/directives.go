package dbcfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/guoh27/go-dbc/dbc"
)

var (
	reVersion   = regexp.MustCompile(`^VERSION\s+"((?:[^"\\]|\\.)*)"\s*$`)
	reBitTiming = regexp.MustCompile(`^BS_\s*:\s*(?:(\d+)\s*:\s*(\d+)\s*,\s*(\d+))?\s*$`)
	reNodes     = regexp.MustCompile(`^BU_\s*:\s*(.*)$`)
	reMessage   = regexp.MustCompile(`^BO_\s+(\d+)\s+(\S+?)\s*:\s*(\d+)\s+(\S+)\s*$`)
	reExtraTx   = regexp.MustCompile(`^BO_TX_BU_\s+(\d+)\s*:\s*([^;]*);`)
	reSignal    = regexp.MustCompile(`^SG_\s+(\S+)(?:\s+(m\d+|M))?\s*:\s*(\d+)\|(\d+)@([01])([+-])\s*\(([^,]+),([^)]+)\)\s*\[([^|\]]*)\|([^\]]*)\]\s*"((?:[^"\\]|\\.)*)"\s*(.*)$`)
	reMuxRange  = regexp.MustCompile(`^SG_MUL_VAL_\s+(\d+)\s+(\S+)\s+(\S+)\s+([^;]*);`)
	reSigGroup  = regexp.MustCompile(`^SIG_GROUP_\s+(\d+)\s+(\S+)\s+(\d+)\s*:\s*([^;]*);`)

	reCMNetwork = regexp.MustCompile(`^CM_\s+"((?:[^"\\]|\\.)*)"\s*;`)
	reCMNode    = regexp.MustCompile(`^CM_\s+BU_\s+(\S+)\s+"((?:[^"\\]|\\.)*)"\s*;`)
	reCMMessage = regexp.MustCompile(`^CM_\s+BO_\s+(\d+)\s+"((?:[^"\\]|\\.)*)"\s*;`)
	reCMSignal  = regexp.MustCompile(`^CM_\s+SG_\s+(\d+)\s+(\S+)\s+"((?:[^"\\]|\\.)*)"\s*;`)
	reCMEnv     = regexp.MustCompile(`^CM_\s+EV_\s+(\S+)\s+"((?:[^"\\]|\\.)*)"\s*;`)

	reAttrDef    = regexp.MustCompile(`^BA_DEF_\s+(BU_|BO_|SG_|EV_)?\s*"([^"]+)"\s+(INT|FLOAT|STRING|ENUM|HEX)\s*([^;]*);`)
	reAttrDefDef = regexp.MustCompile(`^BA_DEF_DEF_\s+"([^"]+)"\s+([^;]*);`)
	reAttrValue  = regexp.MustCompile(`^BA_\s+"([^"]+)"\s+(BU_|BO_|SG_|EV_)?\s*([^;]*);`)

	reEnvVar = regexp.MustCompile(`^EV_\s+(\S+?)\s*:\s*(\d+)\s+\[([^|]*)\|([^\]]*)\]\s*"((?:[^"\\]|\\.)*)"\s+(\S+)\s+(\d+)\s+(\d+)\s+([^;]*);`)
)

func (b *builder) parseVersion(line string) error {
	m := reVersion.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed VERSION: %q", ErrSyntax, line)
	}
	b.version = unescapeQuotes(m[1])
	return nil
}

func (b *builder) parseBitTiming(line string) error {
	m := reBitTiming.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BS_: %q", ErrSyntax, line)
	}
	if m[1] == "" {
		return nil
	}
	baud, _ := parseUint(m[1])
	btr1, _ := parseUint(m[2])
	btr2, _ := parseUint(m[3])
	b.bitTiming = dbc.BitTiming{Baudrate: baud, BTR1: btr1, BTR2: btr2}
	return nil
}

func (b *builder) parseNodes(line string) error {
	m := reNodes.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BU_: %q", ErrSyntax, line)
	}
	for _, name := range strings.Fields(m[1]) {
		if _, ok := b.nodes[name]; ok {
			continue
		}
		b.nodes[name] = &nodeBuilder{name: name}
		b.nodeOrder = append(b.nodeOrder, name)
	}
	return nil
}

func (b *builder) parseValueTable(line string) error {
	rest := strings.TrimPrefix(line, "VAL_TABLE_")
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ";"))
	tokens := splitTopLevelTokens(rest)
	if len(tokens) < 1 {
		return fmt.Errorf("%w: malformed VAL_TABLE_: %q", ErrSyntax, line)
	}
	name := tokens[0]
	encodings, err := parseValueDescPairs(tokens[1:])
	if err != nil {
		return err
	}
	vt, err := dbc.NewValueTable(name, "", encodings)
	if err != nil {
		return err
	}
	b.valueTables = append(b.valueTables, vt)
	return nil
}

func (b *builder) parseMessage(line string) error {
	m := reMessage.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BO_: %q", ErrSyntax, line)
	}
	id, _ := parseUint(m[1])
	transmitter := m[4]
	if transmitter == "Vector__XXX" {
		transmitter = ""
	}
	size, _ := parseUint(m[3])
	mb := &msgBuilder{
		id:          id,
		name:        m[2],
		size:        size,
		transmitter: transmitter,
		sigs:        map[string]*sigBuilder{},
	}
	b.messages[id] = mb
	b.msgOrder = append(b.msgOrder, id)
	b.currentMsgID = id
	b.hasCurrentMsg = true
	return nil
}

func (b *builder) parseExtraTransmitters(line string) error {
	m := reExtraTx.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BO_TX_BU_: %q", ErrSyntax, line)
	}
	id, _ := parseUint(m[1])
	mb, ok := b.messages[id]
	if !ok {
		return fmt.Errorf("%w: BO_TX_BU_ for unknown message %d", ErrUnknownReference, id)
	}
	for _, name := range strings.Split(m[2], ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mb.extraTransmitters = append(mb.extraTransmitters, name)
	}
	return nil
}

func (b *builder) parseSignal(line string) error {
	m := reSignal.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed SG_: %q", ErrSyntax, line)
	}
	if !b.hasCurrentMsg {
		return fmt.Errorf("%w: SG_ outside of a BO_ block: %q", ErrSyntax, line)
	}
	mb := b.messages[b.currentMsgID]

	name := m[1]
	muxMarker := m[2]
	startBit, _ := parseUint(m[3])
	bitSize, _ := parseUint(m[4])

	byteOrder := dbc.BigEndian
	if m[5] == "1" {
		byteOrder = dbc.LittleEndian
	}
	valueType := dbc.Unsigned
	if m[6] == "-" {
		valueType = dbc.Signed
	}
	factor, err := parseFloat(m[7])
	if err != nil {
		return fmt.Errorf("%w: bad factor in SG_ %q: %v", ErrSyntax, name, err)
	}
	offset, err := parseFloat(m[8])
	if err != nil {
		return fmt.Errorf("%w: bad offset in SG_ %q: %v", ErrSyntax, name, err)
	}
	min, _ := parseFloat(m[9])
	max, _ := parseFloat(m[10])
	unit := unescapeQuotes(m[11])

	var receivers []string
	for _, r := range strings.Split(strings.TrimSpace(m[12]), ",") {
		r = strings.TrimSpace(r)
		if r == "" || r == "Vector__XXX" {
			continue
		}
		receivers = append(receivers, r)
	}

	p := dbc.SignalParams{
		Name:      name,
		StartBit:  startBit,
		BitSize:   bitSize,
		ByteOrder: byteOrder,
		ValueType: valueType,
		Factor:    factor,
		Offset:    offset,
		Min:       min,
		Max:       max,
		Unit:      unit,
		Receivers: receivers,
	}
	switch {
	case muxMarker == "M":
		p.MuxIndicator = dbc.MuxSwitch
	case strings.HasPrefix(muxMarker, "m"):
		p.MuxIndicator = dbc.MuxValue
		v, err := parseUint(muxMarker[1:])
		if err != nil {
			return fmt.Errorf("%w: bad multiplexer value in SG_ %q: %v", ErrSyntax, name, err)
		}
		p.MuxSwitchValue = v
	}

	sb := &sigBuilder{order: len(mb.sigOrder), p: p}
	mb.sigs[name] = sb
	mb.sigOrder = append(mb.sigOrder, name)
	return nil
}

func (b *builder) parseMuxRange(line string) error {
	m := reMuxRange.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed SG_MUL_VAL_: %q", ErrSyntax, line)
	}
	id, _ := parseUint(m[1])
	ranges, err := parseRangeList(m[4])
	if err != nil {
		return err
	}
	b.pendingMux = append(b.pendingMux, pendingMux{msgID: id, signal: m[2], switchName: m[3], ranges: ranges})
	return nil
}

func (b *builder) parseSigGroup(line string) error {
	m := reSigGroup.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed SIG_GROUP_: %q", ErrSyntax, line)
	}
	id, _ := parseUint(m[1])
	reps, _ := parseUint(m[3])
	b.pendingSigGroups = append(b.pendingSigGroups, pendingSigGroup{
		msgID:       id,
		name:        m[2],
		repetitions: reps,
		members:     strings.Fields(m[4]),
	})
	return nil
}

func (b *builder) parseComment(line string) error {
	switch {
	case reCMMessage.MatchString(line):
		m := reCMMessage.FindStringSubmatch(line)
		id, _ := parseUint(m[1])
		b.pendingComments = append(b.pendingComments, pendingComment{kind: "BO_", msgID: id, text: unescapeQuotes(m[2])})
	case reCMSignal.MatchString(line):
		m := reCMSignal.FindStringSubmatch(line)
		id, _ := parseUint(m[1])
		b.pendingComments = append(b.pendingComments, pendingComment{kind: "SG_", msgID: id, signal: m[2], text: unescapeQuotes(m[3])})
	case reCMNode.MatchString(line):
		m := reCMNode.FindStringSubmatch(line)
		b.pendingComments = append(b.pendingComments, pendingComment{kind: "BU_", name: m[1], text: unescapeQuotes(m[2])})
	case reCMEnv.MatchString(line):
		m := reCMEnv.FindStringSubmatch(line)
		b.pendingComments = append(b.pendingComments, pendingComment{kind: "EV_", name: m[1], text: unescapeQuotes(m[2])})
	case reCMNetwork.MatchString(line):
		m := reCMNetwork.FindStringSubmatch(line)
		b.pendingNetworkComment = unescapeQuotes(m[1])
	default:
		return fmt.Errorf("%w: malformed CM_: %q", ErrSyntax, line)
	}
	return nil
}

func (b *builder) parseAttrDef(line string) error {
	m := reAttrDef.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BA_DEF_: %q", ErrSyntax, line)
	}
	objType := kindToObjectType(m[1])
	name := m[2]
	rest := strings.TrimSpace(m[4])

	p := dbc.AttributeDefinitionParams{Name: name, ObjectType: objType}
	switch m[3] {
	case "INT", "HEX":
		p.Kind = dbc.AttrInt
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			p.IntMin, _ = strconv.ParseInt(fields[0], 10, 64)
			p.IntMax, _ = strconv.ParseInt(fields[1], 10, 64)
		}
	case "FLOAT":
		p.Kind = dbc.AttrFloat
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			p.FloatMin, _ = parseFloat(fields[0])
			p.FloatMax, _ = parseFloat(fields[1])
		}
	case "STRING":
		p.Kind = dbc.AttrString
	case "ENUM":
		p.Kind = dbc.AttrEnum
		for _, tok := range splitTopLevelTokens(strings.ReplaceAll(rest, ",", " ")) {
			v, err := unquote(tok)
			if err != nil {
				return err
			}
			p.EnumValues = append(p.EnumValues, v)
		}
	}
	b.attrDefs = append(b.attrDefs, p)
	return nil
}

func kindToObjectType(token string) dbc.AttributeObjectType {
	switch token {
	case "BU_":
		return dbc.ObjNode
	case "BO_":
		return dbc.ObjMessage
	case "SG_":
		return dbc.ObjSignal
	case "EV_":
		return dbc.ObjEnvironmentVariable
	default:
		return dbc.ObjNetwork
	}
}

func (b *builder) parseAttrDefault(line string) error {
	m := reAttrDefDef.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BA_DEF_DEF_: %q", ErrSyntax, line)
	}
	def, ok := b.findAttrDef(m[1])
	if !ok {
		return fmt.Errorf("%w: BA_DEF_DEF_ for unknown attribute %q", ErrUnknownReference, m[1])
	}
	v, err := valueFromRaw(def.Kind, strings.TrimSpace(m[2]))
	if err != nil {
		return err
	}
	b.attrDefaults[m[1]] = v
	return nil
}

func (b *builder) parseAttrValue(line string) error {
	m := reAttrValue.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed BA_: %q", ErrSyntax, line)
	}
	attrName := m[1]
	kind := m[2]
	rest := strings.TrimSpace(m[3])

	pa := pendingAttr{attrName: attrName, kind: kind}
	switch kind {
	case "BU_", "EV_":
		fields := strings.SplitN(rest, " ", 2)
		if len(fields) != 2 {
			return fmt.Errorf("%w: malformed BA_ for %s: %q", ErrSyntax, kind, line)
		}
		pa.name = strings.TrimSpace(fields[0])
		pa.raw = strings.TrimSpace(fields[1])
	case "BO_":
		fields := strings.SplitN(rest, " ", 2)
		if len(fields) != 2 {
			return fmt.Errorf("%w: malformed BA_ for BO_: %q", ErrSyntax, line)
		}
		id, err := parseUint(fields[0])
		if err != nil {
			return fmt.Errorf("%w: bad message id in BA_: %v", ErrSyntax, err)
		}
		pa.msgID = id
		pa.raw = strings.TrimSpace(fields[1])
	case "SG_":
		fields := strings.SplitN(rest, " ", 3)
		if len(fields) != 3 {
			return fmt.Errorf("%w: malformed BA_ for SG_: %q", ErrSyntax, line)
		}
		id, err := parseUint(fields[0])
		if err != nil {
			return fmt.Errorf("%w: bad message id in BA_: %v", ErrSyntax, err)
		}
		pa.msgID = id
		pa.signal = fields[1]
		pa.raw = strings.TrimSpace(fields[2])
	default:
		pa.raw = rest
	}
	b.pendingAttrs = append(b.pendingAttrs, pa)
	return nil
}

func (b *builder) parseValueEncoding(line string) error {
	rest := strings.TrimPrefix(line, "VAL_")
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ";"))
	tokens := splitTopLevelTokens(rest)
	if len(tokens) < 1 {
		return fmt.Errorf("%w: malformed VAL_: %q", ErrSyntax, line)
	}
	if isUint(tokens[0]) {
		id, _ := parseUint(tokens[0])
		if len(tokens) < 2 {
			return fmt.Errorf("%w: malformed VAL_: %q", ErrSyntax, line)
		}
		encodings, err := parseValueDescPairs(tokens[2:])
		if err != nil {
			return err
		}
		b.pendingSigValues = append(b.pendingSigValues, pendingSigValue{msgID: id, signal: tokens[1], encoding: encodings})
		return nil
	}
	encodings, err := parseValueDescPairs(tokens[1:])
	if err != nil {
		return err
	}
	b.pendingEnvValues = append(b.pendingEnvValues, pendingEnvValue{name: tokens[0], encoding: encodings})
	return nil
}

func (b *builder) parseEnvVar(line string) error {
	m := reEnvVar.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed EV_: %q", ErrSyntax, line)
	}
	name := m[1]
	typeCode, _ := strconv.Atoi(m[2])
	min, _ := parseFloat(m[3])
	max, _ := parseFloat(m[4])
	unit := unescapeQuotes(m[5])
	initial, _ := parseFloat(m[6])
	id, _ := parseUint(m[7])
	accessCode, _ := strconv.Atoi(m[8])

	var nodes []string
	for _, n := range strings.Split(m[9], ",") {
		n = strings.TrimSpace(n)
		if n == "" || strings.HasPrefix(n, "VECTOR_") || n == "Vector__XXX" {
			continue
		}
		nodes = append(nodes, n)
	}

	varType := dbc.EnvInteger
	switch typeCode {
	case 1:
		varType = dbc.EnvFloat
	case 2:
		varType = dbc.EnvString
	case 3:
		varType = dbc.EnvData
	}
	accessType := dbc.EnvVarAccessType(accessCode)
	if accessCode < 0 || accessCode > 3 {
		accessType = dbc.AccessUnrestricted
	}

	b.envs[name] = &envBuilder{p: dbc.EnvironmentVariableParams{
		Name:         name,
		Type:         varType,
		Min:          min,
		Max:          max,
		Unit:         unit,
		InitialValue: initial,
		ID:           id,
		AccessType:   accessType,
		AccessNodes:  nodes,
	}}
	b.envOrder = append(b.envOrder, name)
	return nil
}

func (b *builder) findAttrDef(name string) (*dbc.AttributeDefinitionParams, bool) {
	for i := range b.attrDefs {
		if b.attrDefs[i].Name == name {
			return &b.attrDefs[i], true
		}
	}
	return nil, false
}

func valueFromRaw(kind dbc.AttributeValueKind, raw string) (dbc.AttributeValue, error) {
	switch kind {
	case dbc.AttrInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return dbc.AttributeValue{}, fmt.Errorf("%w: bad int attribute value %q: %v", ErrSyntax, raw, err)
		}
		return dbc.IntValue(v), nil
	case dbc.AttrFloat:
		v, err := parseFloat(raw)
		if err != nil {
			return dbc.AttributeValue{}, fmt.Errorf("%w: bad float attribute value %q: %v", ErrSyntax, raw, err)
		}
		return dbc.FloatValue(v), nil
	case dbc.AttrString:
		v, err := unquote(raw)
		if err != nil {
			return dbc.AttributeValue{}, err
		}
		return dbc.StringValue(v), nil
	case dbc.AttrEnum:
		if strings.HasPrefix(raw, `"`) {
			v, err := unquote(raw)
			if err != nil {
				return dbc.AttributeValue{}, err
			}
			return dbc.EnumValue(v), nil
		}
		return dbc.EnumValue(raw), nil
	default:
		return dbc.AttributeValue{}, fmt.Errorf("%w: unknown attribute kind", ErrSyntax)
	}
}

func isUint(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func unescapeQuotes(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

func splitTopLevelTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			inQuotes = !inQuotes
			cur.WriteByte(c)
			continue
		}
		if !inQuotes && (c == ' ' || c == '\t') {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteByte(c)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func parseValueDescPairs(tokens []string) ([]dbc.ValueEncoding, error) {
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("%w: value/description tokens not paired: %v", ErrSyntax, tokens)
	}
	out := make([]dbc.ValueEncoding, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		v, err := parseUint(tokens[i])
		if err != nil {
			return nil, fmt.Errorf("%w: bad value %q: %v", ErrSyntax, tokens[i], err)
		}
		desc, err := unquote(tokens[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, dbc.ValueEncoding{Value: v, Description: desc})
	}
	return out, nil
}

func parseRangeList(s string) ([]dbc.MuxValueRange, error) {
	var out []dbc.MuxValueRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("%w: malformed mux range %q", ErrSyntax, part)
		}
		from, err := parseUint(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad mux range start %q: %v", ErrSyntax, bounds[0], err)
		}
		to, err := parseUint(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad mux range end %q: %v", ErrSyntax, bounds[1], err)
		}
		out = append(out, dbc.MuxValueRange{From: from, To: to})
	}
	return out, nil
}
