// internal/proto/mapmem_test.go
package proto

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/wire"
)

func capacityPacket() wire.Packet {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint16(data[0:], 10)      // mem_region
	binary.LittleEndian.PutUint16(data[2:], 2048)    // max_tiles
	binary.LittleEndian.PutUint32(data[4:], 8<<20)   // mem_size
	return wire.Packet{ID: link.L001.CapacityData, Data: data}
}

func memChunkPacket(index uint8, chunk []byte) wire.Packet {
	return wire.Packet{ID: link.L001.MemChunk, Data: append([]byte{index}, chunk...)}
}

func TestMemoryPropertiesCached(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{capacityPacket()}}
	m := &MapTransfer{Transfer: newTransfer(phys)}
	ctx := context.Background()

	props, err := m.MemoryProperties(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(10), props.Region)
	require.Equal(t, uint16(2048), props.MaxTiles)
	require.Equal(t, uint32(8<<20), props.Size)

	// Second call answers from cache; the queue is already empty.
	again, err := m.MemoryProperties(ctx)
	require.NoError(t, err)
	require.Equal(t, props, again)
}

func TestReadRegionChunkStream(t *testing.T) {
	count := make([]byte, 2)
	binary.LittleEndian.PutUint16(count, 2)
	phys := &fakePhys{toRead: []wire.Packet{
		capacityPacket(),
		{ID: link.L001.MemRecords, Data: count},
		memChunkPacket(0, []byte("abc")),
		memChunkPacket(1, []byte("def")),
	}}
	m := &MapTransfer{Transfer: newTransfer(phys)}

	data, err := m.ReadRegion(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, []byte("abcdef"), data)

	// The read request names region 10 and an empty subfile.
	var req wire.Packet
	for _, p := range phys.sent {
		if p.ID == link.L001.MemRead {
			req = p
		}
	}
	require.Equal(t, link.L001.MemRead, req.ID)
	require.Equal(t, []byte{0, 0, 0, 0, 10, 0, 0}, req.Data)
}

func TestReadRegionLiteralAnswer(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		capacityPacket(),
		{ID: link.L001.MemData, Data: []byte{1, 0}},
	}}
	m := &MapTransfer{Transfer: newTransfer(phys)}

	data, err := m.ReadRegion(context.Background(), "", nil)
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestWriteRegionSequenceAndChunking(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		capacityPacket(),
		{ID: link.L001.MemWel},
	}}
	m := &MapTransfer{Transfer: newTransfer(phys)}

	data := bytes.Repeat([]byte{0xAB}, 600)
	require.NoError(t, m.WriteRegion(context.Background(), data, nil))

	// command (capacity), async off, wren, 3 chunks, wrdi.
	wantPids := []uint16{
		link.L001.CommandData,
		link.L001.EnableAsyncEvents,
		link.L001.MemWren,
		link.L001.MemWrite,
		link.L001.MemWrite,
		link.L001.MemWrite,
		link.L001.MemWrdi,
	}
	require.Len(t, phys.sent, len(wantPids))
	for i, pid := range wantPids {
		require.Equal(t, pid, phys.sent[i].ID, "packet %d", i)
	}

	// Chunks carry a 4-byte offset and at most 250 payload bytes.
	offsets := []uint32{0, 250, 500}
	sizes := []int{250, 250, 100}
	for i := 0; i < 3; i++ {
		chunk := phys.sent[3+i]
		require.Equal(t, offsets[i], binary.LittleEndian.Uint32(chunk.Data))
		require.Len(t, chunk.Data, 4+sizes[i])
	}

	// WREN and WRDI both name the region.
	require.Equal(t, []byte{10, 0}, phys.sent[2].Data)
	require.Equal(t, []byte{10, 0}, phys.sent[6].Data)
}

func TestMapUnlockKey(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{{ID: link.L001.AckUnlockKey}}}
	u := &MapUnlock{Transfer: newTransfer(phys)}

	require.NoError(t, u.SendKey(context.Background(), []byte("KEY12345")))
	require.Equal(t, link.L001.TxUnlockKey, phys.sent[0].ID)
	require.Equal(t, []byte("KEY12345"), phys.sent[0].Data)
}
