package dbcfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guoh27/go-dbc/dbc"
)

// Parse reads a DBC text document and constructs a dbc.Network.
//
// Directives that reference another entity (CM_, BA_, VAL_, SG_MUL_VAL_,
// SIG_GROUP_) are staged while scanning and resolved once the whole file has
// been read, so they may appear in any order relative to the BU_/BO_/SG_/EV_
// declarations they decorate.
func Parse(r io.Reader) (*dbc.Network, error) {
	b := newBuilder()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		indented := raw[0] == ' ' || raw[0] == '\t'
		if b.inNS {
			if indented {
				b.newSymbols = append(b.newSymbols, line)
				continue
			}
			b.inNS = false
		}
		if err := b.parseLine(line); err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dbcfile: %w", err)
	}

	return b.finalize()
}

type builder struct {
	version    string
	newSymbols []string
	bitTiming  dbc.BitTiming
	nodeOrder  []string
	nodes      map[string]*nodeBuilder

	valueTables []*dbc.ValueTable

	msgOrder []uint64
	messages map[uint64]*msgBuilder

	envOrder []string
	envs     map[string]*envBuilder

	attrDefs     []dbc.AttributeDefinitionParams
	attrDefaults map[string]dbc.AttributeValue

	inNS bool

	currentMsgID  uint64
	hasCurrentMsg bool

	pendingNetworkComment string
	pendingComments       []pendingComment
	pendingAttrs          []pendingAttr
	pendingSigValues      []pendingSigValue
	pendingEnvValues      []pendingEnvValue
	pendingMux            []pendingMux
	pendingSigGroups      []pendingSigGroup
}

type nodeBuilder struct {
	name    string
	comment string
	attrs   []dbc.Attribute
}

type sigBuilder struct {
	order   int
	p       dbc.SignalParams
	comment string
	attrs   []dbc.Attribute
}

type msgBuilder struct {
	id                uint64
	name              string
	size              uint64
	transmitter       string
	extraTransmitters []string
	comment           string
	sigOrder          []string
	sigs              map[string]*sigBuilder
	attrs             []dbc.Attribute
}

type envBuilder struct {
	p dbc.EnvironmentVariableParams
}

type pendingComment struct {
	kind      string // "BU_", "BO_", "SG_", "EV_"
	msgID     uint64
	name      string
	signal    string
	text      string
}

type pendingAttr struct {
	attrName string
	kind     string // "", "BU_", "BO_", "SG_"/"EV_"
	msgID    uint64
	name     string
	signal   string
	raw      string
}

type pendingSigValue struct {
	msgID    uint64
	signal   string
	encoding []dbc.ValueEncoding
}

type pendingEnvValue struct {
	name     string
	encoding []dbc.ValueEncoding
}

type pendingMux struct {
	msgID      uint64
	signal     string
	switchName string
	ranges     []dbc.MuxValueRange
}

type pendingSigGroup struct {
	msgID       uint64
	name        string
	repetitions uint64
	members     []string
}

func newBuilder() *builder {
	return &builder{
		nodes:        map[string]*nodeBuilder{},
		messages:     map[uint64]*msgBuilder{},
		envs:         map[string]*envBuilder{},
		attrDefaults: map[string]dbc.AttributeValue{},
	}
}

func (b *builder) parseLine(line string) error {
	switch {
	case strings.HasPrefix(line, "VERSION"):
		return b.parseVersion(line)
	case strings.HasPrefix(line, "NS_DESC_"):
		return nil
	case strings.HasPrefix(line, "NS_ :"), line == "NS_:":
		// Header of the new-symbols block; the indented keyword lines that
		// follow (BA_DEF_, VAL_, ...) are collected as plain symbol names by
		// the scan loop above, not dispatched as directives.
		b.inNS = true
		return nil
	case strings.HasPrefix(line, "BS_"):
		return b.parseBitTiming(line)
	case strings.HasPrefix(line, "BU_"):
		return b.parseNodes(line)
	case strings.HasPrefix(line, "VAL_TABLE_"):
		return b.parseValueTable(line)
	case strings.HasPrefix(line, "BO_TX_BU_"):
		return b.parseExtraTransmitters(line)
	case strings.HasPrefix(line, "BO_"):
		return b.parseMessage(line)
	case strings.HasPrefix(line, "SG_MUL_VAL_"):
		return b.parseMuxRange(line)
	case strings.HasPrefix(line, "SG_"):
		return b.parseSignal(line)
	case strings.HasPrefix(line, "SIG_GROUP_"):
		return b.parseSigGroup(line)
	case strings.HasPrefix(line, "CM_"):
		return b.parseComment(line)
	case strings.HasPrefix(line, "BA_DEF_DEF_"):
		return b.parseAttrDefault(line)
	case strings.HasPrefix(line, "BA_DEF_"):
		return b.parseAttrDef(line)
	case strings.HasPrefix(line, "BA_"):
		return b.parseAttrValue(line)
	case strings.HasPrefix(line, "VAL_"):
		return b.parseValueEncoding(line)
	case strings.HasPrefix(line, "EV_"):
		return b.parseEnvVar(line)
	default:
		// lines whose keyword matches none of the prefixes above (SIG_VALTYPE_,
		// SGTYPE_, ...) are ignored rather than rejected. A keyword that only
		// starts with a handled prefix, such as BA_DEF_REL_ or BU_SG_REL_, is
		// dispatched to that prefix's parser and fails its syntax check.
		return nil
	}
}

func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("%w: expected quoted string, got %q", ErrSyntax, s)
	}
	return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}
