// internal/proto/mapmem.go
//
// A900 map memory transfer and A902 map unlock. Both are undocumented;
// the flows follow the behavior of Garmin's own map upload tools. Writes
// use the flash-style WREN/WEL/WRDI latch sequence, and the supplementary
// map lives in region 10 on every known unit.
package proto

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// mapWriteChunkCap is the observed device limit on pid_mem_write payload
// bytes. Larger chunks are accepted on the wire but silently corrupt the
// stored map.
const mapWriteChunkCap = 250

var (
	memPropertiesSchema = mustSchema("MemProperties",
		schema.FieldSpec{Name: "mem_region", Format: "H"},
		schema.FieldSpec{Name: "max_tiles", Format: "H"},
		schema.FieldSpec{Name: "mem_size", Format: "I"},
		schema.FieldSpec{Name: "unknown", Format: "I"},
	)
	memFileSchema = mustSchema("MemFile",
		schema.FieldSpec{Name: "unknown", Format: "I"},
		schema.FieldSpec{Name: "mem_region", Format: "H"},
		schema.FieldSpec{Name: "subfile", Format: "n"},
	)
	memRecordSchema = mustSchema("MemRecord",
		schema.FieldSpec{Name: "index", Format: "B"},
		schema.FieldSpec{Name: "chunk", Format: "$"},
	)
)

// MemProperties describes the map flash region the device exposes.
type MemProperties struct {
	Region   uint16
	MaxTiles uint16
	Size     uint32
}

// MapTransfer is the A900 Map Transfer Protocol.
type MapTransfer struct {
	Transfer
	props *MemProperties
}

// MemoryProperties asks for the capacity record. The answer is cached
// for the session.
func (p *MapTransfer) MemoryProperties(ctx context.Context) (MemProperties, error) {
	if p.props != nil {
		return *p.props, nil
	}
	item, err := p.GetSingle(ctx, p.Cmds.TransferMem, p.Link.Pids().CapacityData, memPropertiesSchema)
	if err != nil {
		return MemProperties{}, err
	}
	props := MemProperties{
		Region:   item.Record.MustGet("mem_region").(uint16),
		MaxTiles: item.Record.MustGet("max_tiles").(uint16),
		Size:     item.Record.MustGet("mem_size").(uint32),
	}
	logging.Infof("map memory: region %d, %d tiles max, %d bytes", props.Region, props.MaxTiles, props.Size)
	p.props = &props
	return props, nil
}

// ReadRegion downloads a subfile of the map region, or the whole region
// when subfile is empty. A device with nothing stored answers with a
// small literal pid_mem_data payload instead of a chunk stream; that
// yields a nil slice.
func (p *MapTransfer) ReadRegion(ctx context.Context, subfile string, cb Progress) ([]byte, error) {
	props, err := p.MemoryProperties(ctx)
	if err != nil {
		return nil, err
	}
	req, err := schema.Pack(&schema.Record{
		Schema: memFileSchema,
		Values: []schema.Value{uint32(0), props.Region, subfile},
	})
	if err != nil {
		return nil, wire.NewProtocolError("encode mem read request", err)
	}
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.MemRead, req, true); err != nil {
		return nil, err
	}
	packet, err := p.Link.ReadPacket(ctx, true)
	if err != nil {
		return nil, err
	}
	switch packet.ID {
	case pids.MemData:
		// A literal payload here means "nothing stored" or a short
		// status blob; either way there is no map to return.
		logging.Debugf("map memory: literal data answer, %d bytes", len(packet.Data))
		return nil, nil
	case pids.MemRecords:
		count, err := decodeCount(packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("read mem records count", err)
		}
		var out []byte
		for i := 0; i < count; i++ {
			packet, err := p.Link.ExpectPacket(ctx, pids.MemChunk, true)
			if err != nil {
				return nil, err
			}
			rec, err := schema.Unpack(memRecordSchema, packet.Data)
			if err != nil {
				return nil, wire.NewProtocolError("decode mem chunk", err)
			}
			out = append(out, rec.MustGet("chunk").([]byte)...)
			if cb != nil {
				cb(i+1, count)
			}
		}
		return out, nil
	default:
		return nil, wire.NewProtocolError("mem read",
			fmt.Errorf("unexpected pid %d, want %d or %d", packet.ID, pids.MemData, pids.MemRecords))
	}
}

// WriteRegion uploads data to the map region: async events off, WREN,
// wait for WEL, stream offset-tagged chunks, WRDI. A nil data deletes
// the stored map (the latch sequence runs with no chunks in between).
func (p *MapTransfer) WriteRegion(ctx context.Context, data []byte, cb Progress) error {
	props, err := p.MemoryProperties(ctx)
	if err != nil {
		return err
	}
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.EnableAsyncEvents, []byte{0x00, 0x00}, true); err != nil {
		return err
	}
	region := u16le(props.Region)
	if err := p.Link.SendPacket(ctx, pids.MemWren, region, true); err != nil {
		return err
	}
	if _, err := p.Link.ExpectPacket(ctx, pids.MemWel, true); err != nil {
		return err
	}
	logging.Infof("map memory: write enabled on region %d", props.Region)
	total := len(data)
	for offset := 0; offset < total; offset += mapWriteChunkCap {
		end := offset + mapWriteChunkCap
		if end > total {
			end = total
		}
		chunk := make([]byte, 4+end-offset)
		binary.LittleEndian.PutUint32(chunk, uint32(offset))
		copy(chunk[4:], data[offset:end])
		if err := p.Link.SendPacket(ctx, pids.MemWrite, chunk, true); err != nil {
			return err
		}
		if cb != nil {
			cb(end, total)
		}
	}
	return p.Link.SendPacket(ctx, pids.MemWrdi, region, true)
}

// MapUnlock is the A902 Map Unlock Protocol.
type MapUnlock struct {
	Transfer
}

// SendKey transmits the unlock key and waits for the acknowledgement.
// Run before WriteRegion when the map needs one.
func (p *MapUnlock) SendKey(ctx context.Context, key []byte) error {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.TxUnlockKey, key, true); err != nil {
		return err
	}
	_, err := p.Link.ExpectPacket(ctx, pids.AckUnlockKey, true)
	return err
}

func mustSchema(name string, fields ...schema.FieldSpec) *schema.Schema {
	s, err := schema.NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}
