// internal/link/link_test.go
package link

import (
	"context"
	"errors"
	"testing"

	"github.com/guiperry/garminlink/internal/wire"
)

// fakePhysical is a minimal in-memory wire.Physical stand-in, queueing
// packets for ReadPacket and recording SendPacket calls.
type fakePhysical struct {
	toRead []wire.Packet
	sent   []wire.Packet
	closed bool
}

func (f *fakePhysical) SendPacket(_ context.Context, pid uint16, data []byte, _ bool) error {
	f.sent = append(f.sent, wire.Packet{ID: pid, Data: data})
	return nil
}

func (f *fakePhysical) ReadPacket(_ context.Context, _ bool) (wire.Packet, error) {
	if len(f.toRead) == 0 {
		return wire.Packet{}, wire.NewLinkError("read packet", context.DeadlineExceeded)
	}
	p := f.toRead[0]
	f.toRead = f.toRead[1:]
	return p, nil
}

func (f *fakePhysical) Close() error {
	f.closed = true
	return nil
}

func TestReadPacketDiscardsExtProductData(t *testing.T) {
	phys := &fakePhysical{toRead: []wire.Packet{
		{ID: L001.ExtProductData, Data: []byte("mfg-string\x00")},
		{ID: L001.ExtProductData, Data: []byte("mfg-string-2\x00")},
		{ID: L001.ProductData, Data: []byte{1, 2}},
	}}
	l := New(phys, L001)

	packet, err := l.ReadPacket(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if packet.ID != L001.ProductData {
		t.Fatalf("expected ProductData packet to surface, got pid %d", packet.ID)
	}
	if len(phys.toRead) != 0 {
		t.Fatalf("expected both ext product data packets to be consumed, %d remain", len(phys.toRead))
	}
}

func TestExpectPacketSucceedsOnMatch(t *testing.T) {
	phys := &fakePhysical{toRead: []wire.Packet{{ID: L001.ProductData, Data: []byte{9}}}}
	l := New(phys, L001)

	packet, err := l.ExpectPacket(context.Background(), L001.ProductData, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packet.Data) != 1 || packet.Data[0] != 9 {
		t.Fatalf("unexpected packet data: %v", packet.Data)
	}
}

func TestExpectPacketFailsOnMismatch(t *testing.T) {
	phys := &fakePhysical{toRead: []wire.Packet{{ID: L001.ProductRqst}}}
	l := New(phys, L001)

	_, err := l.ExpectPacket(context.Background(), L001.ProductData, false)
	if err == nil {
		t.Fatal("expected a ProtocolError, got nil")
	}
	var pe *wire.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *wire.ProtocolError, got %T: %v", err, err)
	}
}
