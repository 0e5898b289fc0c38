// internal/proto/waypoint.go
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// WaypointTransfer is the A100 Waypoint Transfer Protocol.
type WaypointTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *WaypointTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().WptData}
}

func (p *WaypointTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferWpt, p.Schemas, p.pids(), cb)
}

func (p *WaypointTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferWpt, items, p.pids(), cb)
}

// WaypointCategoryTransfer is the A101 Waypoint Category Transfer
// Protocol. Upload accepts only pre-built records; the device keeps no
// chained state for categories.
type WaypointCategoryTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *WaypointCategoryTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().WptCat}
}

func (p *WaypointCategoryTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferWptCats, p.Schemas, p.pids(), cb)
}

func (p *WaypointCategoryTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferWptCats, items, p.pids(), cb)
}
