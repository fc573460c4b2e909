package serialize

import (
	"bytes"
	"fmt"

	"github.com/guoh27/go-dbc/dbc"
)

// Human renders net as a plain, indentation-structured summary intended for
// a person to read, mirroring dbcppp's "human" output format.
func Human(net *dbc.Network) ([]byte, error) {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "Network version %q\n", net.Version())
	bt := net.BitTiming()
	fmt.Fprintf(buf, "Baudrate: %d (BTR1=%d BTR2=%d)\n", bt.Baudrate, bt.BTR1, bt.BTR2)

	nodes := net.Nodes()
	fmt.Fprintf(buf, "Nodes (%d):\n", len(nodes))
	for _, n := range nodes {
		fmt.Fprintf(buf, "  %s", n.Name())
		if n.Comment() != "" {
			fmt.Fprintf(buf, " - %s", n.Comment())
		}
		buf.WriteByte('\n')
	}

	messages := net.Messages()
	fmt.Fprintf(buf, "\nMessages (%d):\n", len(messages))
	for _, m := range messages {
		extended := ""
		if m.IsExtended() {
			extended = " (extended)"
		}
		fmt.Fprintf(buf, "  [0x%X]%s %s, %d bytes, tx=%s\n", m.ID(), extended, m.Name(), m.Size(), orDefault(m.Transmitter(), "-"))
		if m.Comment() != "" {
			fmt.Fprintf(buf, "    %s\n", m.Comment())
		}
		for _, s := range m.Signals() {
			writeHumanSignal(buf, s)
		}
	}

	envs := net.EnvironmentVariables()
	if len(envs) > 0 {
		fmt.Fprintf(buf, "\nEnvironment variables (%d):\n", len(envs))
		for _, e := range envs {
			fmt.Fprintf(buf, "  %s [%g|%g] %s\n", e.Name(), e.Min(), e.Max(), e.Unit())
		}
	}

	return buf.Bytes(), nil
}

func writeHumanSignal(buf *bytes.Buffer, s *dbc.Signal) {
	mux := ""
	switch s.MultiplexerIndicator() {
	case dbc.MuxSwitch:
		mux = " [mux switch]"
	case dbc.MuxValue:
		mux = fmt.Sprintf(" [mux=%d]", s.MultiplexerSwitchValue())
	}
	fmt.Fprintf(buf, "    %s%s: start %d, len %d, factor %g, offset %g, unit %q\n",
		s.Name(), mux, s.StartBit(), s.BitSize(), s.Factor(), s.Offset(), s.Unit())
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
