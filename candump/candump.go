// Package candump parses the line-oriented candump format dbctool's decode
// subcommand reads from standard input: "<iface> <hex-id> [<size>]
// <hex-byte>*", e.g. "vcan0 123 [3] 11 22 33".
package candump

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/guoh27/go-dbc/dbc"
)

var lineRe = regexp.MustCompile(`^\s*(\S+)\s+([0-9A-Fa-f]+)\s*\[(\d+)\]((?:\s+[0-9A-Fa-f]{2}){0,8})\s*$`)

// ParseLine parses one candump-style line into a dbc.Frame. The interface
// name is returned separately since dbc.Frame carries no notion of which bus
// a frame arrived on. Identifiers longer than 3 hex digits are treated as
// 29-bit extended identifiers, matching the convention used throughout this
// module.
func ParseLine(line string) (iface string, frame dbc.Frame, err error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return "", dbc.Frame{}, fmt.Errorf("candump: malformed line: %q", line)
	}
	iface, idPart, sizePart, dataPart := m[1], m[2], m[3], m[4]

	id, err := strconv.ParseUint(idPart, 16, 32)
	if err != nil {
		return "", dbc.Frame{}, fmt.Errorf("candump: bad identifier %q: %w", idPart, err)
	}

	size, err := strconv.Atoi(sizePart)
	if err != nil || size > 8 {
		return "", dbc.Frame{}, fmt.Errorf("candump: bad size %q: %q", sizePart, line)
	}

	byteTokens := strings.Fields(dataPart)
	if len(byteTokens) < size {
		return "", dbc.Frame{}, fmt.Errorf("candump: declared size %d but only %d data bytes in %q", size, len(byteTokens), line)
	}

	var data [8]byte
	for i := 0; i < size; i++ {
		b, err := strconv.ParseUint(byteTokens[i], 16, 8)
		if err != nil {
			return "", dbc.Frame{}, fmt.Errorf("candump: bad data byte %q: %w", byteTokens[i], err)
		}
		data[i] = byte(b)
	}

	frame = dbc.Frame{
		ID:       uint32(id),
		Extended: len(idPart) > 3,
		Length:   uint8(size),
		Data:     data,
	}
	return iface, frame, nil
}

// FormatLine renders frame for iface back into candump's ASCII form, the
// inverse of ParseLine.
func FormatLine(iface string, frame dbc.Frame) string {
	width := 3
	if frame.Extended {
		width = 8
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %0*X [%d]", iface, width, frame.ID, frame.Length)
	for i := 0; i < int(frame.Length); i++ {
		fmt.Fprintf(&b, " %02X", frame.Data[i])
	}
	return b.String()
}

// ScanMatching reads newline-delimited candump lines from r and invokes fn
// with the original line text and decoded frame for every line whose
// interface name equals iface. Lines that fail to parse, or that name a
// different interface, are skipped silently, mirroring dbctool decode's
// upstream behavior of ignoring unrelated bus traffic. ScanMatching returns
// once r is exhausted or a read error occurs.
func ScanMatching(r io.Reader, iface string, fn func(line string, frame dbc.Frame)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		gotIface, frame, err := ParseLine(line)
		if err != nil || gotIface != iface {
			continue
		}
		fn(line, frame)
	}
	return scanner.Err()
}
