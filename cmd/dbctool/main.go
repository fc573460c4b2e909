// Command dbctool reads a DBC file and either re-emits it in another format
// or decodes CAN traffic against it, either from candump-style lines on
// standard input or live from a SocketCAN interface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/guoh27/go-dbc/candump"
	"github.com/guoh27/go-dbc/dbc"
	"github.com/guoh27/go-dbc/dbcfile"
	"github.com/guoh27/go-dbc/internal/utils"
	"github.com/guoh27/go-dbc/serialize"
	"github.com/guoh27/go-dbc/socketcan"
)

var debug = os.Getenv("DBCTOOL_DEBUG") != ""

func printHelp() {
	fmt.Println("dbctool v1.0.0")
	fmt.Println("Usage:\n  dbctool dbc2 <C|DBC|human> <dbc-file>\n  dbctool decode <iface> <dbc-file>\n  dbctool decode-live <iface> <dbc-file>")
}

func main() {
	if len(os.Args) != 4 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "dbc2":
		if err := runDBC2(os.Args[2], os.Args[3]); err != nil {
			log.Fatal(err)
		}
	case "decode":
		if err := runDecode(os.Args[2], os.Args[3]); err != nil {
			log.Fatal(err)
		}
	case "decode-live":
		if err := runDecodeLive(os.Args[2], os.Args[3]); err != nil {
			log.Fatal(err)
		}
	default:
		printHelp()
		os.Exit(1)
	}
}

func loadNetwork(path string) (*dbc.Network, error) {
	if filepath.Ext(path) != ".dbc" {
		return nil, fmt.Errorf("dbctool: no network loaded from %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dbctool: %w", err)
	}
	defer f.Close()
	net, err := dbcfile.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dbctool: %w", err)
	}
	return net, nil
}

func runDBC2(format, path string) error {
	net, err := loadNetwork(path)
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case "C":
		out, err = serialize.CHeader(net, "DBCTOOL_GENERATED_H")
	case "DBC":
		out, err = serialize.DBC(net)
	case "human":
		out, err = serialize.Human(net)
	default:
		return fmt.Errorf("dbctool: unknown format %q, want C, DBC or human", format)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// runDecode implements the documented `decode <iface> <dbc-file>` contract:
// read candump-style lines from standard input, decode every line naming
// iface against net, and print "<original> :: <message>(<signal>: <value>[
// <unit>], ...)" per matching frame.
func runDecode(iface, path string) error {
	net, err := loadNetwork(path)
	if err != nil {
		return err
	}

	return candump.ScanMatching(os.Stdin, iface, func(line string, frame dbc.Frame) {
		out, ok := formatDecoded(line, net, frame)
		if !ok {
			return
		}
		fmt.Println(out)
	})
}

// formatDecoded renders one decoded frame the way the decode subcommand's
// contract requires: signals in declaration order, a value-encoding label in
// single quotes where one matches the raw value, the physical value
// otherwise, each followed by the signal's unit when it has one.
func formatDecoded(line string, net *dbc.Network, frame dbc.Frame) (string, bool) {
	msg, ok := net.MessageForFrame(frame)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s :: %s(", line, msg.Name())
	for i, s := range msg.PresentSignals(frame.Data) {
		if i > 0 {
			b.WriteString(", ")
		}
		raw := s.Decode(frame.Data)
		fmt.Fprintf(&b, "%s: ", s.Name())
		if label, ok := s.Label(raw); ok {
			fmt.Fprintf(&b, "'%s'", label)
		} else {
			fmt.Fprintf(&b, "%g", s.RawToPhys(raw))
		}
		if s.Unit() != "" {
			fmt.Fprintf(&b, " %s", s.Unit())
		}
	}
	b.WriteString(")")
	return b.String(), true
}

// runDecodeLive is the alternate live-bus source for decode: instead of
// reading candump text from standard input, it reads frames directly off a
// SocketCAN interface and renders them the same way.
func runDecodeLive(iface, path string) error {
	net, err := loadNetwork(path)
	if err != nil {
		return err
	}

	conn, err := socketcan.NewConnection(iface)
	if err != nil {
		return fmt.Errorf("dbctool: %w", err)
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("# Listening on %s\n", iface)
	for ctx.Err() == nil {
		frame, err := conn.ReadFrame()
		if err != nil {
			fmt.Printf("# read error: %v\n", err)
			continue
		}
		if debug {
			fmt.Printf("# DEBUG read frame id=0x%X data=`%v`\n", frame.ID, utils.FormatSpaces(frame.Data[:frame.Length]))
		}
		out, ok := formatDecoded(candump.FormatLine(iface, frame), net, frame)
		if !ok {
			continue
		}
		fmt.Println(out)
	}
	return nil
}
