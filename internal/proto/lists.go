// internal/proto/lists.go
//
// The plain single-pid list transfers: proximity waypoints (A400),
// almanac (A500), flightbook (A650), and laps (A906).
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// ProximityTransfer is the A400 Proximity Waypoint Transfer Protocol.
type ProximityTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *ProximityTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().PrxWptData}
}

func (p *ProximityTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferPrx, p.Schemas, p.pids(), cb)
}

func (p *ProximityTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferPrx, items, p.pids(), cb)
}

// AlmanacTransfer is the A500 Almanac Transfer Protocol.
type AlmanacTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *AlmanacTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().AlmanacData}
}

func (p *AlmanacTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferAlm, p.Schemas, p.pids(), cb)
}

func (p *AlmanacTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferAlm, items, p.pids(), cb)
}

// FlightbookTransfer is the A650 Flight Book Transfer Protocol.
// Download only; aviation units compile the records themselves.
type FlightbookTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *FlightbookTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().FlightbookRecord}
}

func (p *FlightbookTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.FlightbookTransfer, p.Schemas, p.pids(), cb)
}

// LapTransfer is the A906 Lap Transfer Protocol. Also driven as the
// dependent transfer of A1000 runs and A1006 courses.
type LapTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *LapTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().Lap}
}

func (p *LapTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferLaps, p.Schemas, p.pids(), cb)
}
