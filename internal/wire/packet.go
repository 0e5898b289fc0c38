// internal/wire/packet.go
package wire

import "context"

// Packet is the wire envelope shared by every transport: an id (0-255 on
// serial, 0-65535 on USB) and an opaque data payload.
type Packet struct {
	ID   uint16
	Data []byte
}

// Physical is the transport contract every protocol layer is built on. It
// is deliberately thin: a physical implementation owns framing, checksums,
// retries, and (on serial) ACK/NAK bookkeeping, but never interprets
// application-level pids.
type Physical interface {
	// SendPacket writes pid/data as a framed packet. On serial, if
	// acknowledge is true the call blocks for a matching ACK and retries
	// on NAK up to the configured budget. USB ignores acknowledge (the
	// transport is lossless).
	SendPacket(ctx context.Context, pid uint16, data []byte, acknowledge bool) error

	// ReadPacket reads and frames the next packet. On serial, if
	// acknowledge is true an ACK is sent on success and a NAK on parse
	// failure, with retries up to the configured budget.
	ReadPacket(ctx context.Context, acknowledge bool) (Packet, error)

	// Close releases the underlying handle. Further calls fail fast.
	Close() error
}
