// internal/proto/transfer.go
//
// The bulk-transfer envelope shared by every record transfer protocol:
// pid_command_data opens, pid_records announces a count, exactly that
// many data packets follow, and pid_xfer_cmplt closes echoing the
// command. Uploads mirror the sequence. Single-datum protocols (time,
// position, the fitness limit records) skip the envelope entirely.
package proto

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// Progress is invoked once per data packet during a bulk transfer. May be
// nil.
type Progress func(current, total int)

// Item is one record of a bulk transfer. SchemaIndex is the position of
// the record's pid in the protocol's declared pid list, which is also the
// index of the datatype schema it decodes with. Data is the raw payload;
// Record is the schema decode of Data (nil on upload items built from
// pre-packed bytes).
type Item struct {
	SchemaIndex int
	Data        []byte
	Record      *schema.Record
}

// Transfer is the envelope state shared by the protocol types in this
// package: the link to talk over and the negotiated command table.
type Transfer struct {
	Link *link.Link
	Cmds Commands
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// SendCommand writes a pid_command_data packet carrying cmd. A command
// the negotiated table does not define is rejected before touching the
// wire.
func (t *Transfer) SendCommand(ctx context.Context, cmd uint16) error {
	if cmd == CmdUnsupported {
		return wire.NewProtocolError("send command",
			fmt.Errorf("command not defined by the negotiated command protocol"))
	}
	return t.Link.SendPacket(ctx, t.Link.Pids().CommandData, u16le(cmd), true)
}

// decodeCount reads the 16-bit record count from a pid_records payload.
// Some firmware pads the payload to four bytes; the count is always the
// first two.
func decodeCount(data []byte) (int, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("records payload is %d bytes, need at least 2", len(data))
	}
	return int(binary.LittleEndian.Uint16(data)), nil
}

// GetData runs one download envelope: send cmd, read pid_records, read
// exactly that many data packets (each pid must appear in pids; its
// position there selects the schema), then consume pid_xfer_cmplt.
func (t *Transfer) GetData(ctx context.Context, cmd uint16, schemas []*schema.Schema, pids []uint16, cb Progress) ([]Item, error) {
	if err := t.SendCommand(ctx, cmd); err != nil {
		return nil, err
	}
	packet, err := t.Link.ExpectPacket(ctx, t.Link.Pids().Records, true)
	if err != nil {
		return nil, err
	}
	count, err := decodeCount(packet.Data)
	if err != nil {
		return nil, wire.NewProtocolError("read records count", err)
	}
	logging.Debugf("transfer: expecting %d records for command %d", count, cmd)

	items := make([]Item, 0, count)
	for i := 0; i < count; i++ {
		packet, err := t.Link.ReadPacket(ctx, true)
		if err != nil {
			return nil, err
		}
		if packet.ID == t.Link.Pids().XferCmplt {
			return nil, wire.NewProtocolError("read records",
				fmt.Errorf("transfer complete after %d of %d records", i, count))
		}
		item, err := decodeItem(packet, schemas, pids)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if cb != nil {
			cb(i+1, count)
		}
	}
	if _, err := t.Link.ExpectPacket(ctx, t.Link.Pids().XferCmplt, true); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeItem(packet wire.Packet, schemas []*schema.Schema, pids []uint16) (Item, error) {
	idx := -1
	for i, pid := range pids {
		if packet.ID == pid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Item{}, wire.NewProtocolError("read records",
			fmt.Errorf("unexpected pid %d, want one of %v", packet.ID, pids))
	}
	if idx >= len(schemas) || schemas[idx] == nil {
		return Item{}, wire.NewProtocolError("read records",
			fmt.Errorf("no datatype negotiated for pid %d (slot %d)", packet.ID, idx))
	}
	rec, err := schema.Unpack(schemas[idx], packet.Data)
	if err != nil {
		return Item{}, wire.NewProtocolError("decode record", err)
	}
	return Item{SchemaIndex: idx, Data: packet.Data, Record: rec}, nil
}

// PutData runs one upload envelope: send pid_records with the count, then
// each item on the pid its SchemaIndex selects, then pid_xfer_cmplt
// echoing cmd.
func (t *Transfer) PutData(ctx context.Context, cmd uint16, items []Item, pids []uint16, cb Progress) error {
	if cmd == CmdUnsupported {
		return wire.NewProtocolError("put data",
			fmt.Errorf("command not defined by the negotiated command protocol"))
	}
	count := len(items)
	if count > 0xFFFF {
		return wire.NewProtocolError("put data", fmt.Errorf("%d records exceed the 16-bit count", count))
	}
	logging.Debugf("transfer: sending %d records for command %d", count, cmd)
	if err := t.Link.SendPacket(ctx, t.Link.Pids().Records, u16le(uint16(count)), true); err != nil {
		return err
	}
	for i, item := range items {
		if item.SchemaIndex < 0 || item.SchemaIndex >= len(pids) {
			return wire.NewProtocolError("put data",
				fmt.Errorf("record %d: schema index %d outside pid list of %d", i, item.SchemaIndex, len(pids)))
		}
		if err := t.Link.SendPacket(ctx, pids[item.SchemaIndex], item.Data, true); err != nil {
			return err
		}
		if cb != nil {
			cb(i+1, count)
		}
	}
	return t.Link.SendPacket(ctx, t.Link.Pids().XferCmplt, u16le(cmd), true)
}

// firstSchema is the D0 slot of a single-datum protocol, nil when the
// device reported no usable datatype for it.
func firstSchema(schemas []*schema.Schema) *schema.Schema {
	if len(schemas) == 0 {
		return nil
	}
	return schemas[0]
}

// GetSingle runs a single-datum protocol: send cmd, expect exactly one
// packet of the given pid, decode it with the given schema.
func (t *Transfer) GetSingle(ctx context.Context, cmd uint16, pid uint16, s *schema.Schema) (Item, error) {
	if s == nil {
		return Item{}, wire.NewProtocolError("get single",
			fmt.Errorf("no datatype negotiated for pid %d", pid))
	}
	if err := t.SendCommand(ctx, cmd); err != nil {
		return Item{}, err
	}
	packet, err := t.Link.ExpectPacket(ctx, pid, true)
	if err != nil {
		return Item{}, err
	}
	rec, err := schema.Unpack(s, packet.Data)
	if err != nil {
		return Item{}, wire.NewProtocolError("decode record", err)
	}
	return Item{Data: packet.Data, Record: rec}, nil
}

// PutSingle writes one packet of the given pid. Single-datum protocols
// have no envelope in either direction.
func (t *Transfer) PutSingle(ctx context.Context, pid uint16, data []byte) error {
	return t.Link.SendPacket(ctx, pid, data, true)
}
