// internal/link/link.go
//
// Link is the thin L000 layer: it adds exactly one behavior over
// wire.Physical, transparently discarding pid_ext_product_data packets,
// plus ExpectPacket.
package link

import (
	"context"
	"fmt"

	"github.com/guiperry/garminlink/internal/wire"
)

// Link wraps a wire.Physical with the L000 packet-filtering behavior every
// higher protocol layer is built on.
type Link struct {
	phys wire.Physical
	pids Pids
}

// New wraps phys with the given packet-id table (L001 for nearly every
// device; L002 for the handful of early ones that need it).
func New(phys wire.Physical, pids Pids) *Link {
	return &Link{phys: phys, pids: pids}
}

// Pids returns the packet-id table this Link was built with.
func (l *Link) Pids() Pids { return l.pids }

// SendPacket forwards to the underlying transport unchanged.
func (l *Link) SendPacket(ctx context.Context, pid uint16, data []byte, acknowledge bool) error {
	return l.phys.SendPacket(ctx, pid, data, acknowledge)
}

// ReadPacket reads the next packet, silently discarding any
// pid_ext_product_data packets the device interleaves in (manufacturing
// strings the host must ignore).
func (l *Link) ReadPacket(ctx context.Context, acknowledge bool) (wire.Packet, error) {
	for {
		packet, err := l.phys.ReadPacket(ctx, acknowledge)
		if err != nil {
			return wire.Packet{}, err
		}
		if packet.ID == l.pids.ExtProductData {
			continue
		}
		return packet, nil
	}
}

// ExpectPacket reads the next non-discarded packet and fails with
// *wire.ProtocolError if its id doesn't match pid.
func (l *Link) ExpectPacket(ctx context.Context, pid uint16, acknowledge bool) (wire.Packet, error) {
	packet, err := l.ReadPacket(ctx, acknowledge)
	if err != nil {
		return wire.Packet{}, err
	}
	if packet.ID != pid {
		return wire.Packet{}, wire.NewProtocolError("expect packet",
			fmt.Errorf("expected pid %d, got %d", pid, packet.ID))
	}
	return packet, nil
}

// Close releases the underlying transport.
func (l *Link) Close() error { return l.phys.Close() }
