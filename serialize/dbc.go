package serialize

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/guoh27/go-dbc/dbc"
)

// DBC renders net in the DBC text grammar dbcfile.Parse accepts.
func DBC(net *dbc.Network) ([]byte, error) {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "VERSION %q\n\n", net.Version())
	buf.WriteString("NS_ :\n")
	for _, sym := range net.NewSymbols() {
		fmt.Fprintf(buf, "\t%s\n", sym)
	}
	buf.WriteByte('\n')

	bt := net.BitTiming()
	fmt.Fprintf(buf, "BS_: %d:%d,%d\n\n", bt.Baudrate, bt.BTR1, bt.BTR2)

	buf.WriteString("BU_:")
	for _, n := range net.Nodes() {
		fmt.Fprintf(buf, " %s", n.Name())
	}
	buf.WriteString("\n\n")

	for _, vt := range net.ValueTables() {
		fmt.Fprintf(buf, "VAL_TABLE_ %s", vt.Name())
		writeEncodings(buf, vt.Encodings())
		buf.WriteString(" ;\n")
	}
	buf.WriteByte('\n')

	messages := net.Messages()
	sort.Slice(messages, func(i, j int) bool { return messages[i].RawID() < messages[j].RawID() })

	for _, m := range messages {
		writeMessage(buf, m)
	}

	for _, m := range messages {
		if len(m.ExtraTransmitters()) == 0 {
			continue
		}
		fmt.Fprintf(buf, "BO_TX_BU_ %d :", m.RawID())
		for i, tx := range m.ExtraTransmitters() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(tx)
		}
		buf.WriteString(";\n")
	}
	buf.WriteByte('\n')

	writeComments(buf, net, messages)
	writeAttributeDefinitions(buf, net)
	writeAttributeDefaults(buf, net)
	writeAttributeValues(buf, net, messages)
	writeValueEncodings(buf, messages)
	writeMuxRanges(buf, messages)
	writeSignalGroups(buf, messages)
	writeEnvironmentVariables(buf, net)

	return buf.Bytes(), nil
}

func writeMessage(buf *bytes.Buffer, m *dbc.Message) {
	transmitter := m.Transmitter()
	if transmitter == "" {
		transmitter = "Vector__XXX"
	}
	fmt.Fprintf(buf, "BO_ %d %s: %d %s\n", m.RawID(), m.Name(), m.Size(), transmitter)
	for _, s := range m.Signals() {
		writeSignal(buf, s)
	}
	buf.WriteByte('\n')
}

func writeSignal(buf *bytes.Buffer, s *dbc.Signal) {
	buf.WriteString(" SG_ ")
	buf.WriteString(s.Name())
	switch s.MultiplexerIndicator() {
	case dbc.MuxSwitch:
		buf.WriteString(" M")
	case dbc.MuxValue:
		fmt.Fprintf(buf, " m%d", s.MultiplexerSwitchValue())
	}
	byteOrder := "0"
	if s.ByteOrder() == dbc.LittleEndian {
		byteOrder = "1"
	}
	sign := "+"
	if s.ValueType() == dbc.Signed {
		sign = "-"
	}
	receivers := "Vector__XXX"
	if rs := s.Receivers(); len(rs) > 0 {
		receivers = ""
		for i, r := range rs {
			if i > 0 {
				receivers += ","
			}
			receivers += r
		}
	}
	fmt.Fprintf(buf, " : %d|%d@%s%s (%s,%s) [%s|%s] %q %s\n",
		s.StartBit(), s.BitSize(), byteOrder, sign,
		formatFloat(s.Factor()), formatFloat(s.Offset()),
		formatFloat(s.Min()), formatFloat(s.Max()),
		s.Unit(), receivers)
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

func writeEncodings(buf *bytes.Buffer, encodings []dbc.ValueEncoding) {
	for _, e := range encodings {
		fmt.Fprintf(buf, " %d %q", e.Value, e.Description)
	}
}

func writeComments(buf *bytes.Buffer, net *dbc.Network, messages []*dbc.Message) {
	if net.Comment() != "" {
		fmt.Fprintf(buf, "CM_ %q;\n", net.Comment())
	}
	for _, n := range net.Nodes() {
		if n.Comment() != "" {
			fmt.Fprintf(buf, "CM_ BU_ %s %q;\n", n.Name(), n.Comment())
		}
	}
	for _, m := range messages {
		if m.Comment() != "" {
			fmt.Fprintf(buf, "CM_ BO_ %d %q;\n", m.RawID(), m.Comment())
		}
		for _, s := range m.Signals() {
			if s.Comment() != "" {
				fmt.Fprintf(buf, "CM_ SG_ %d %s %q;\n", m.RawID(), s.Name(), s.Comment())
			}
		}
	}
	buf.WriteByte('\n')
}

func writeAttributeDefinitions(buf *bytes.Buffer, net *dbc.Network) {
	for _, d := range net.AttributeDefinitions() {
		objTok := attributeObjectToken(d.ObjectType())
		prefix := "BA_DEF_ "
		if objTok != "" {
			prefix += objTok + " "
		}
		switch d.Kind() {
		case dbc.AttrInt:
			lo, hi := d.IntRange()
			fmt.Fprintf(buf, "%s%q INT %d %d;\n", prefix, d.Name(), lo, hi)
		case dbc.AttrFloat:
			lo, hi := d.FloatRange()
			fmt.Fprintf(buf, "%s%q FLOAT %s %s;\n", prefix, d.Name(), formatFloat(lo), formatFloat(hi))
		case dbc.AttrString:
			fmt.Fprintf(buf, "%s%q STRING ;\n", prefix, d.Name())
		case dbc.AttrEnum:
			buf.WriteString(prefix)
			fmt.Fprintf(buf, "%q ENUM ", d.Name())
			for i, v := range d.EnumValues() {
				if i > 0 {
					buf.WriteByte(',')
				}
				fmt.Fprintf(buf, "%q", v)
			}
			buf.WriteString(";\n")
		}
	}
	buf.WriteByte('\n')
}

func attributeObjectToken(t dbc.AttributeObjectType) string {
	switch t {
	case dbc.ObjNode:
		return "BU_"
	case dbc.ObjMessage:
		return "BO_"
	case dbc.ObjSignal:
		return "SG_"
	case dbc.ObjEnvironmentVariable:
		return "EV_"
	default:
		return ""
	}
}

func writeAttributeDefaults(buf *bytes.Buffer, net *dbc.Network) {
	for _, d := range net.AttributeDefinitions() {
		v, ok := net.AttributeDefaults()[d.Name()]
		if !ok {
			continue
		}
		fmt.Fprintf(buf, "BA_DEF_DEF_ %q %s;\n", d.Name(), attributeValueLiteral(v))
	}
	buf.WriteByte('\n')
}

func attributeValueLiteral(v dbc.AttributeValue) string {
	switch v.Kind() {
	case dbc.AttrInt:
		return fmt.Sprintf("%d", v.Int())
	case dbc.AttrFloat:
		return formatFloat(v.Float())
	default:
		return fmt.Sprintf("%q", v.Str())
	}
}

func writeAttributeValues(buf *bytes.Buffer, net *dbc.Network, messages []*dbc.Message) {
	for _, a := range net.AttributeValues() {
		fmt.Fprintf(buf, "BA_ %q %s;\n", a.Name(), attributeValueLiteral(a.Value()))
	}
	for _, n := range net.Nodes() {
		for _, a := range n.Attributes() {
			fmt.Fprintf(buf, "BA_ %q BU_ %s %s;\n", a.Name(), n.Name(), attributeValueLiteral(a.Value()))
		}
	}
	for _, m := range messages {
		for _, a := range m.Attributes() {
			fmt.Fprintf(buf, "BA_ %q BO_ %d %s;\n", a.Name(), m.RawID(), attributeValueLiteral(a.Value()))
		}
		for _, s := range m.Signals() {
			for _, a := range s.Attributes() {
				fmt.Fprintf(buf, "BA_ %q SG_ %d %s %s;\n", a.Name(), m.RawID(), s.Name(), attributeValueLiteral(a.Value()))
			}
		}
	}
	for _, e := range net.EnvironmentVariables() {
		for _, a := range e.Attributes() {
			fmt.Fprintf(buf, "BA_ %q EV_ %s %s;\n", a.Name(), e.Name(), attributeValueLiteral(a.Value()))
		}
	}
	buf.WriteByte('\n')
}

func writeValueEncodings(buf *bytes.Buffer, messages []*dbc.Message) {
	for _, m := range messages {
		for _, s := range m.Signals() {
			if len(s.ValueEncodings()) == 0 {
				continue
			}
			fmt.Fprintf(buf, "VAL_ %d %s", m.RawID(), s.Name())
			writeEncodings(buf, s.ValueEncodings())
			buf.WriteString(" ;\n")
		}
	}
	buf.WriteByte('\n')
}

func writeMuxRanges(buf *bytes.Buffer, messages []*dbc.Message) {
	for _, m := range messages {
		for _, s := range m.Signals() {
			for _, r := range s.ExtendedMuxRanges() {
				fmt.Fprintf(buf, "SG_MUL_VAL_ %d %s %s ", m.RawID(), s.Name(), r.SwitchName)
				for i, rng := range r.Ranges {
					if i > 0 {
						buf.WriteByte(',')
					}
					fmt.Fprintf(buf, "%d-%d", rng.From, rng.To)
				}
				buf.WriteString(";\n")
			}
		}
	}
	buf.WriteByte('\n')
}

func writeSignalGroups(buf *bytes.Buffer, messages []*dbc.Message) {
	for _, m := range messages {
		for _, g := range m.SignalGroups() {
			fmt.Fprintf(buf, "SIG_GROUP_ %d %s %d :", m.RawID(), g.Name(), g.Repetitions())
			for _, name := range g.SignalNames() {
				fmt.Fprintf(buf, " %s", name)
			}
			buf.WriteString(";\n")
		}
	}
	buf.WriteByte('\n')
}

func writeEnvironmentVariables(buf *bytes.Buffer, net *dbc.Network) {
	for _, e := range net.EnvironmentVariables() {
		accessNodes := "Vector__XXX"
		if ns := e.AccessNodes(); len(ns) > 0 {
			accessNodes = ""
			for i, n := range ns {
				if i > 0 {
					accessNodes += ","
				}
				accessNodes += n
			}
		}
		fmt.Fprintf(buf, "EV_ %s: %d [%s|%s] %q %s %d %d %s;\n",
			e.Name(), int(e.Type()),
			formatFloat(e.Min()), formatFloat(e.Max()),
			e.Unit(), formatFloat(e.InitialValue()), e.ID(), int(e.AccessType()), accessNodes)
	}
}
