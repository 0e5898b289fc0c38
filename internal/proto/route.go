// internal/proto/route.go
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// RouteTransfer is the A200/A201 Route Transfer Protocol. A200 carries a
// header and waypoints; A201 adds a link record between waypoints as a
// third slot.
type RouteTransfer struct {
	Transfer
	// Variant is 200 or 201.
	Variant uint16
	Schemas []*schema.Schema
}

func (p *RouteTransfer) pids() []uint16 {
	pids := p.Link.Pids()
	if p.Variant == 201 {
		return []uint16{pids.RteHdr, pids.RteWptData, pids.RteLinkData}
	}
	return []uint16{pids.RteHdr, pids.RteWptData}
}

func (p *RouteTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferRte, p.Schemas, p.pids(), cb)
}

// Put uploads pre-built route records. The caller supplies the header,
// waypoint, and link records in device order; no route state is
// reconstructed host-side.
func (p *RouteTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferRte, items, p.pids(), cb)
}
