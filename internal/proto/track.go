// internal/proto/track.go
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// TrackTransfer is the A300/A301/A302 Track Log Transfer Protocol. A300
// streams bare track points; A301 and A302 prefix each log with a track
// header.
type TrackTransfer struct {
	Transfer
	// Variant is 300, 301, or 302.
	Variant uint16
	Schemas []*schema.Schema
}

func (p *TrackTransfer) pids() []uint16 {
	pids := p.Link.Pids()
	if p.Variant == 300 {
		return []uint16{pids.TrkData}
	}
	return []uint16{pids.TrkHdr, pids.TrkData}
}

func (p *TrackTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferTrk, p.Schemas, p.pids(), cb)
}

// Put uploads a track log. A302 is download-only on every known device;
// callers should treat an upload timeout there as unsupported.
func (p *TrackTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferTrk, items, p.pids(), cb)
}
