// internal/proto/timesync.go
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// TimeSyncTransfer is the A1051 external time sync protocol: the host
// pushes a timezone- and DST-aware clock reference to the device. There
// is no read direction; the device only consumes.
type TimeSyncTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

// Put sends one packed D0 sync record.
func (p *TimeSyncTransfer) Put(ctx context.Context, data []byte) error {
	return p.PutSingle(ctx, p.Link.Pids().ExternalTimeSyncData, data)
}
