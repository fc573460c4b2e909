package serialize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/guoh27/go-dbc/dbc"
)

// CHeader renders net as a C header of #define constants: an _ID and _DLC
// macro per message, and _START_BIT, _BIT_SIZE, _FACTOR and _OFFSET macros
// per signal. It emits no structs and no accessor or decode functions, and
// it does not record a signal's byte order or value type.
func CHeader(net *dbc.Network, guard string) ([]byte, error) {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "#ifndef %s\n#define %s\n\n", guard, guard)
	buf.WriteString("#include <stdint.h>\n\n")

	for _, m := range net.Messages() {
		writeMessageStruct(buf, m)
	}

	fmt.Fprintf(buf, "#endif /* %s */\n", guard)
	return buf.Bytes(), nil
}

func writeMessageStruct(buf *bytes.Buffer, m *dbc.Message) {
	structName := cIdentifier(m.Name())
	fmt.Fprintf(buf, "/* %s: id 0x%X, dlc %d */\n", m.Name(), m.ID(), m.Size())
	fmt.Fprintf(buf, "#define %s_ID 0x%Xu\n", strings.ToUpper(structName), m.ID())
	fmt.Fprintf(buf, "#define %s_DLC %du\n", strings.ToUpper(structName), m.Size())

	for _, s := range m.Signals() {
		writeSignalAccessors(buf, structName, s)
	}
	buf.WriteByte('\n')
}

func writeSignalAccessors(buf *bytes.Buffer, structName string, s *dbc.Signal) {
	upper := strings.ToUpper(structName) + "_" + strings.ToUpper(cIdentifier(s.Name()))
	fmt.Fprintf(buf, "#define %s_START_BIT %du\n", upper, s.StartBit())
	fmt.Fprintf(buf, "#define %s_BIT_SIZE %du\n", upper, s.BitSize())
	fmt.Fprintf(buf, "#define %s_FACTOR %s\n", upper, formatFloat(s.Factor()))
	fmt.Fprintf(buf, "#define %s_OFFSET %s\n", upper, formatFloat(s.Offset()))
}

func cIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
