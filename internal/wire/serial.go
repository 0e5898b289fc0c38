// internal/wire/serial.go
package wire

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
)

const (
	dle byte = 0x10
	etx byte = 0x03

	pidAck uint16 = 6
	pidNak uint16 = 21

	// DefaultBaudRate is the rate a session starts at; map memory writes
	// may negotiate a higher rate through T001 (see proto/baud.go).
	DefaultBaudRate = 9600
	// DefaultReadTimeout bounds every blocking read on the serial port.
	DefaultReadTimeout = 1 * time.Second
	// DefaultRetryBudget is the number of retransmissions a send/receive
	// attempts before surfacing a LinkError.
	DefaultRetryBudget = 5
)

// SerialConfig configures a Serial physical layer.
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	MaxRetries  int
}

func (c SerialConfig) withDefaults() SerialConfig {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultRetryBudget
	}
	return c
}

// Serial is the DLE/ETX-framed physical layer used by every RS-232-connected
// Garmin device, generalized from a single hardcoded endpoint pair to the byte-stuffed
// serial wire format.
type Serial struct {
	cfg  SerialConfig
	port serial.Port
}

// OpenSerial opens the named serial port at the configured baud rate and
// returns a ready-to-use Physical.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	cfg = cfg.withDefaults()
	mode := &serial.Mode{BaudRate: cfg.BaudRate}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, NewLinkError("open serial port", err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, NewLinkError("set read timeout", err)
	}
	return &Serial{cfg: cfg, port: port}, nil
}

// SetBaudRate reconfigures the port's baud rate without reopening it. Used
// by the T001 transmission protocol's baud negotiation (proto/baud.go).
func (s *Serial) SetBaudRate(baud int) error {
	s.cfg.BaudRate = baud
	if err := s.port.SetMode(&serial.Mode{BaudRate: baud}); err != nil {
		return NewLinkError("set baud rate", err)
	}
	return nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

// checksum is the two's-complement of the mod-256 sum of id, size, and
// data.
func checksum(idAndSizeAndData []byte) byte {
	var sum int
	for _, b := range idAndSizeAndData {
		sum = (sum + int(b)) % 256
	}
	return byte((256 - sum) % 256)
}

// escape doubles every DLE byte in the size/data/checksum span so that the
// only unpaired DLE bytes on the wire are packet boundaries.
func escape(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte{dle}, []byte{dle, dle})
}

func unescape(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte{dle, dle}, []byte{dle})
}

// encodeFrame builds the complete on-wire byte sequence for a packet:
// DLE, ID, SIZE, DATA, CHECKSUM, DLE, ETX with byte-stuffing applied to
// everything but the framing DLE/ETX pair.
func encodeFrame(pid uint16, data []byte) ([]byte, error) {
	if pid == 0 || pid > 255 {
		return nil, NewProtocolError("encode frame", fmt.Errorf("pid %d out of range 1..255", pid))
	}
	id := byte(pid)
	size := byte(len(data))
	cs := checksum(append([]byte{id, size}, data...))

	var buf bytes.Buffer
	buf.WriteByte(dle)
	buf.WriteByte(id)
	buf.Write(escape([]byte{size}))
	buf.Write(escape(data))
	buf.Write(escape([]byte{cs}))
	buf.WriteByte(dle)
	buf.WriteByte(etx)
	return buf.Bytes(), nil
}

// readFrame implements the 2-byte-window receive algorithm:
// a lone DLE starts the packet, a DLE-DLE pair is one literal DLE in the
// body, a DLE-ETX pair ends the packet, and any other DLE-prefixed pair is
// a framing error.
func (s *Serial) readFrame(ctx context.Context) ([]byte, error) {
	var packet []byte
	window := make([]byte, 0, 2)
	one := make([]byte, 1)

	readByte := func() (byte, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		n, err := s.port.Read(one)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("reading packet timed out")
		}
		return one[0], nil
	}

	fill := func() error {
		for len(window) < 2 {
			b, err := readByte()
			if err != nil {
				return err
			}
			window = append(window, b)
		}
		return nil
	}

	for {
		if err := fill(); err != nil {
			return nil, NewLinkError("read serial frame", err)
		}
		switch {
		case len(packet) == 0:
			if window[0] != dle {
				return nil, NewLinkError("read serial frame", fmt.Errorf("invalid packet: doesn't start with DLE"))
			}
			packet = append(packet, window[0])
			window = window[1:]
		case window[0] == dle:
			switch {
			case window[1] == dle:
				packet = append(packet, window[0], window[1])
				window = window[:0]
			case window[1] == etx:
				packet = append(packet, window[0], window[1])
				return packet, nil
			default:
				return nil, NewLinkError("read serial frame", fmt.Errorf("invalid packet: DLE not followed by DLE or ETX"))
			}
		default:
			packet = append(packet, window[0])
			window = window[1:]
		}
	}
}

// decodeFrame validates and unpacks a complete on-wire frame. The id byte
// follows the opening DLE unescaped, so only the size/data/checksum span
// between it and the closing DLE,ETX is unescaped.
func decodeFrame(frame []byte) (Packet, error) {
	if len(frame) < 6 {
		return Packet{}, NewLinkError("decode serial frame", fmt.Errorf("frame too short"))
	}
	id := frame[1]
	unescaped := unescape(frame[2 : len(frame)-2])
	if len(unescaped) < 2 {
		return Packet{}, NewLinkError("decode serial frame", fmt.Errorf("frame too short"))
	}
	size := unescaped[0]
	body := unescaped[1 : len(unescaped)-1]
	cs := unescaped[len(unescaped)-1]
	if int(size) != len(body) {
		return Packet{}, NewLinkError("decode serial frame", fmt.Errorf("size mismatch: header says %d, got %d", size, len(body)))
	}
	want := checksum(append([]byte{id, size}, body...))
	if cs != want {
		return Packet{}, NewLinkError("decode serial frame", fmt.Errorf("checksum mismatch: got 0x%02x want 0x%02x", cs, want))
	}
	data := make([]byte, len(body))
	copy(data, body)
	return Packet{ID: uint16(id), Data: data}, nil
}

func (s *Serial) write(frame []byte) error {
	_, err := s.port.Write(frame)
	if err != nil {
		return NewLinkError("write serial frame", err)
	}
	return nil
}

// SendPacket writes a packet and, if acknowledge is set, blocks for a
// matching ACK, retrying on NAK up to the configured budget.
func (s *Serial) SendPacket(ctx context.Context, pid uint16, data []byte, acknowledge bool) error {
	frame, err := encodeFrame(pid, data)
	if err != nil {
		return err
	}
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := s.write(frame); err != nil {
			lastErr = err
			continue
		}
		if !acknowledge {
			return nil
		}
		if err := s.readAck(ctx, pid); err != nil {
			if pe, ok := err.(*ProtocolError); ok {
				return pe
			}
			lastErr = err
			continue
		}
		return nil
	}
	return NewLinkError("send packet", fmt.Errorf("maximum retries exceeded: %w", lastErr))
}

// readAck reads one ACK/NAK packet (never itself acknowledged) and
// validates it echoes the expected pid.
func (s *Serial) readAck(ctx context.Context, pid uint16) error {
	frame, err := s.readFrame(ctx)
	if err != nil {
		return err
	}
	packet, err := decodeFrame(frame)
	if err != nil {
		return err
	}
	switch packet.ID {
	case pidAck:
		if len(packet.Data) >= 2 {
			got := uint16(packet.Data[0]) | uint16(packet.Data[1])<<8
			if got != pid {
				return NewProtocolError("read ack", fmt.Errorf("device expected %d, got %d", pid, got))
			}
		}
		return nil
	case pidNak:
		return NewLinkError("read ack", fmt.Errorf("received NAK"))
	default:
		return NewLinkError("read ack", fmt.Errorf("received neither ACK nor NAK: pid %d", packet.ID))
	}
}

// ReadPacket parses one packet, sending ACK on success or NAK on parse
// failure, retrying up to the configured budget.
func (s *Serial) ReadPacket(ctx context.Context, acknowledge bool) (Packet, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		frame, err := s.readFrame(ctx)
		if err != nil {
			lastErr = err
			if acknowledge {
				s.sendNak(ctx)
			}
			continue
		}
		packet, err := decodeFrame(frame)
		if err != nil {
			lastErr = err
			if acknowledge {
				s.sendNak(ctx)
			}
			continue
		}
		if acknowledge {
			s.sendAck(ctx, packet.ID)
		}
		return packet, nil
	}
	return Packet{}, NewLinkError("read packet", fmt.Errorf("maximum retries exceeded: %w", lastErr))
}

func (s *Serial) sendAck(ctx context.Context, pid uint16) {
	data := []byte{byte(pid), byte(pid >> 8)}
	frame, err := encodeFrame(pidAck, data)
	if err != nil {
		return
	}
	_ = s.write(frame)
}

func (s *Serial) sendNak(ctx context.Context) {
	frame, err := encodeFrame(pidNak, nil)
	if err != nil {
		return
	}
	_ = s.write(frame)
}
