// internal/wire/serial_test.go
package wire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x01},
		{0x10},          // a single DLE byte must escape and recover
		{0x10, 0x03},    // DLE followed by ETX inside data
		make([]byte, 255), // maximum data length
	}
	for _, data := range cases {
		frame, err := encodeFrame(7, data)
		require.NoError(t, err)
		packet, err := decodeFrame(frame)
		require.NoError(t, err)
		require.EqualValues(t, 7, packet.ID)
		require.Equal(t, data, packet.Data)
	}
}

func TestEncodeFrameEscapesDLE(t *testing.T) {
	// pid=0x10, data=[0x10, 0x03]: the lone data DLE must be doubled; the
	// id byte follows the opening DLE as-is, since only size, data and
	// checksum are byte-stuffed, and the frame ends with DLE,ETX.
	frame, err := encodeFrame(0x10, []byte{0x10, 0x03})
	require.NoError(t, err)
	want := []byte{dle, 0x10, 0x02, dle, dle, 0x03, 0xDB, dle, etx}
	require.Equal(t, want, frame)

	packet, err := decodeFrame(frame)
	require.NoError(t, err)
	require.EqualValues(t, 0x10, packet.ID)
	require.Equal(t, []byte{0x10, 0x03}, packet.Data)
}

func TestEncodeFrameRejectsOutOfRangePID(t *testing.T) {
	_, err := encodeFrame(0, nil)
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)

	_, err = encodeFrame(256, nil)
	require.Error(t, err)
	require.ErrorAs(t, err, &pe)
}

func TestChecksumBoundaryValues(t *testing.T) {
	// Checksum 0x00: data bytes sum to 0 mod 256.
	require.Equal(t, byte(0x00), checksum([]byte{0x00, 0x00}))
	// Checksum 0xFF: sum is 1 mod 256.
	require.Equal(t, byte(0xFF), checksum([]byte{0x01}))
}

func TestDecodeFrameDetectsChecksumMismatch(t *testing.T) {
	frame, err := encodeFrame(7, []byte{1, 2, 3})
	require.NoError(t, err)
	corrupt := append([]byte(nil), frame...)
	// Flip a data byte (not a framing byte) so the checksum no longer matches.
	corrupt[3] ^= 0xFF
	_, err = decodeFrame(corrupt)
	require.Error(t, err)
	var le *LinkError
	require.ErrorAs(t, err, &le)
}

// fakePort scripts the byte stream a device would produce and records
// everything written. Embedding serial.Port satisfies the interface;
// only the methods the framing layer touches are overridden.
type fakePort struct {
	serial.Port
	reads  []byte
	writes [][]byte
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.reads) == 0 {
		return 0, nil // timeout: go.bug.st/serial returns n==0 on expiry
	}
	n := copy(p, f.reads[:1])
	f.reads = f.reads[1:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	f.writes = append(f.writes, buf)
	return len(p), nil
}

func (f *fakePort) Close() error { return nil }

func ackFrame(t *testing.T, pid uint16) []byte {
	t.Helper()
	frame, err := encodeFrame(pidAck, []byte{byte(pid), byte(pid >> 8)})
	require.NoError(t, err)
	return frame
}

func nakFrame(t *testing.T) []byte {
	t.Helper()
	frame, err := encodeFrame(pidNak, nil)
	require.NoError(t, err)
	return frame
}

func TestSendPacketRetriesOnNAK(t *testing.T) {
	port := &fakePort{}
	port.reads = append(port.reads, nakFrame(t)...)
	port.reads = append(port.reads, ackFrame(t, 10)...)
	s := &Serial{cfg: SerialConfig{}.withDefaults(), port: port}

	err := s.SendPacket(context.Background(), 10, []byte{0x07, 0x00}, true)
	require.NoError(t, err)
	// The NAK triggered exactly one retransmission.
	require.Len(t, port.writes, 2)
	require.Equal(t, port.writes[0], port.writes[1])
}

func TestSendPacketExhaustsRetryBudget(t *testing.T) {
	port := &fakePort{}
	for i := 0; i < 4; i++ {
		port.reads = append(port.reads, nakFrame(t)...)
	}
	s := &Serial{cfg: SerialConfig{MaxRetries: 2}.withDefaults(), port: port}

	err := s.SendPacket(context.Background(), 10, []byte{0x07, 0x00}, true)
	var le *LinkError
	require.ErrorAs(t, err, &le)
	// max_retries + 1 physical attempts, never more.
	require.Len(t, port.writes, 3)
}

func TestReadPacketSendsNAKOnGarbage(t *testing.T) {
	port := &fakePort{}
	// Two garbage bytes: the 2-byte header window consumes both before
	// the framing error, leaving the real frame intact for the retry.
	port.reads = append(port.reads, 0xAA, 0xAA)
	frame, err := encodeFrame(35, []byte{1, 2, 3})
	require.NoError(t, err)
	port.reads = append(port.reads, frame...)
	s := &Serial{cfg: SerialConfig{}.withDefaults(), port: port}

	packet, err := s.ReadPacket(context.Background(), true)
	require.NoError(t, err)
	require.EqualValues(t, 35, packet.ID)
	require.Equal(t, []byte{1, 2, 3}, packet.Data)
	// First write is the NAK for the garbage byte, second the ACK.
	require.Len(t, port.writes, 2)
	nak, err := decodeFrame(port.writes[0])
	require.NoError(t, err)
	require.Equal(t, pidNak, nak.ID)
	ack, err := decodeFrame(port.writes[1])
	require.NoError(t, err)
	require.Equal(t, pidAck, ack.ID)
	require.Equal(t, []byte{35, 0}, ack.Data)
}
