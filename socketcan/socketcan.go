// Package socketcan reads and writes dbc.Frame values over a Linux
// SocketCAN raw CAN interface.
package socketcan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/guoh27/go-dbc/dbc"
	"golang.org/x/sys/unix"
)

const (
	canRaw = 1

	// canIDMask covers the 29 identifier bits of the kernel's can_frame.can_id.
	canIDMask = uint32(0x1FFFFFFF)
	// canIDEFFFlag marks a 29-bit extended identifier.
	canIDEFFFlag = uint32(1 << 31)
	// canIDRTRFlag marks a remote transmission request frame.
	canIDRTRFlag = uint32(1 << 30)
	// canIDERRFlag marks a kernel-generated error frame.
	canIDERRFlag = uint32(1 << 29)
)

// Connection is an open SocketCAN raw socket bound to one network interface.
type Connection struct {
	socketFD int
	timeNow  func() time.Time
}

// NewConnection opens and binds a raw CAN socket on ifName (e.g. "can0",
// "vcan0").
func NewConnection(ifName string) (*Connection, error) {
	ifi, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("socketcan: bad interface: %w", err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, canRaw)
	if err != nil {
		return nil, fmt.Errorf("socketcan: could not create socket: %w", err)
	}

	addr := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err = unix.Bind(fd, addr); err != nil {
		return nil, fmt.Errorf("socketcan: could not bind socket: %w", err)
	}

	return &Connection{socketFD: fd, timeNow: time.Now}, nil
}

func isContinuableSocketErr(err error) bool {
	return err == syscall.EWOULDBLOCK || err == syscall.EINTR
}

var errReadTimeout = errors.New("socketcan: read timeout")
var errWriteTimeout = errors.New("socketcan: write timeout")

// SetReadTimeout bounds how long ReadFrame blocks.
func (c *Connection) SetReadTimeout(timeout time.Duration) error {
	return c.setSocketTimeout(unix.SO_RCVTIMEO, timeout)
}

// SetWriteTimeout bounds how long WriteFrame blocks.
func (c *Connection) SetWriteTimeout(timeout time.Duration) error {
	return c.setSocketTimeout(unix.SO_SNDTIMEO, timeout)
}

func (c *Connection) setSocketTimeout(opt int, timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	return unix.SetsockoptTimeval(c.socketFD, unix.SOL_SOCKET, opt, &tv)
}

// Close releases the underlying socket.
func (c *Connection) Close() error {
	return unix.Close(c.socketFD)
}

// WriteFrame sends frame on the bus.
func (c *Connection) WriteFrame(frame dbc.Frame) error {
	raw := encodeCANFrame(frame)

	_, err := unix.Write(c.socketFD, raw)
	if isContinuableSocketErr(err) {
		return errWriteTimeout
	}
	return err
}

// ReadFrame blocks until a frame arrives or the read times out.
func (c *Connection) ReadFrame() (dbc.Frame, error) {
	raw := make([]byte, 16)
	_, err := unix.Read(c.socketFD, raw)
	if err != nil {
		if isContinuableSocketErr(err) {
			return dbc.Frame{}, errReadTimeout
		}
		return dbc.Frame{}, err
	}
	return decodeCANFrame(raw)
}

// encodeCANFrame lays out frame as the kernel's struct can_frame (linux/can.h):
// u32 can_id; u8 can_dlc; u8 pad[3]; u8 data[8].
func encodeCANFrame(frame dbc.Frame) []byte {
	raw := make([]byte, 16)

	canID := frame.ID & canIDMask
	if frame.Extended {
		canID |= canIDEFFFlag
	}
	// can_id is a native-endian u32 field in the kernel's struct can_frame.
	binary.NativeEndian.PutUint32(raw[0:4], canID)

	raw[4] = frame.Length
	copy(raw[8:], frame.Data[:frame.Length])
	return raw
}

func decodeCANFrame(raw []byte) (dbc.Frame, error) {
	canID := binary.NativeEndian.Uint32(raw[0:4])
	if canID&canIDRTRFlag != 0 {
		return dbc.Frame{}, errors.New("socketcan: read remote transmission request frame")
	}
	if canID&canIDERRFlag != 0 {
		return dbc.Frame{}, errors.New("socketcan: read error frame")
	}

	length := raw[4]
	if length > 8 {
		length = 8
	}
	frame := dbc.Frame{
		ID:       canID & canIDMask,
		Extended: canID&canIDEFFFlag != 0,
		Length:   length,
	}
	copy(frame.Data[:], raw[8:8+length])

	return frame, nil
}
