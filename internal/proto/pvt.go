// internal/proto/pvt.go
//
// A800, the streaming position/velocity/time protocol. After DataOn the
// device transmits roughly once per second until DataOff; each Get blocks
// for the next packet. Many devices interleave an undocumented satellite
// status packet with the D800 stream.
package proto

import (
	"context"
	"fmt"

	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// PVTTransfer is the A800 PVT Data Protocol.
type PVTTransfer struct {
	Transfer
	// Schemas[0] decodes pid_pvt_data. SatelliteSchema decodes the
	// undocumented satellite packet.
	Schemas         []*schema.Schema
	SatelliteSchema *schema.Schema
}

// DataOn asks the device to start the once-per-second stream.
func (p *PVTTransfer) DataOn(ctx context.Context) error {
	return p.SendCommand(ctx, p.Cmds.StartPvtData)
}

// DataOff asks the device to stop. Packets already in flight still
// arrive; callers drain with Get until a read times out.
func (p *PVTTransfer) DataOff(ctx context.Context) error {
	return p.SendCommand(ctx, p.Cmds.StopPvtData)
}

// Get blocks until the next stream packet arrives and decodes it with
// the schema its pid selects.
func (p *PVTTransfer) Get(ctx context.Context) (Item, error) {
	pids := p.Link.Pids()
	packet, err := p.Link.ReadPacket(ctx, true)
	if err != nil {
		return Item{}, err
	}
	var s *schema.Schema
	var idx int
	switch packet.ID {
	case pids.PvtData:
		s, idx = p.Schemas[0], 0
	case pids.SatelliteData:
		s, idx = p.SatelliteSchema, 1
	default:
		return Item{}, wire.NewProtocolError("pvt read",
			fmt.Errorf("unexpected pid %d, want %d or %d", packet.ID, pids.PvtData, pids.SatelliteData))
	}
	rec, err := schema.Unpack(s, packet.Data)
	if err != nil {
		return Item{}, wire.NewProtocolError("pvt decode", err)
	}
	return Item{SchemaIndex: idx, Data: packet.Data, Record: rec}, nil
}
