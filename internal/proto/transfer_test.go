// internal/proto/transfer_test.go
package proto

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/datatype"
	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// fakePhys queues packets for reads and records writes. An exhausted
// queue reads as a timeout, the same shape a silent device produces.
type fakePhys struct {
	toRead []wire.Packet
	sent   []wire.Packet
}

func (f *fakePhys) SendPacket(_ context.Context, pid uint16, data []byte, _ bool) error {
	f.sent = append(f.sent, wire.Packet{ID: pid, Data: data})
	return nil
}

func (f *fakePhys) ReadPacket(_ context.Context, _ bool) (wire.Packet, error) {
	if len(f.toRead) == 0 {
		return wire.Packet{}, wire.NewLinkError("read packet", context.DeadlineExceeded)
	}
	p := f.toRead[0]
	f.toRead = f.toRead[1:]
	return p, nil
}

func (f *fakePhys) Close() error { return nil }

func newTransfer(phys *fakePhys) Transfer {
	return Transfer{Link: link.New(phys, link.L001), Cmds: A010}
}

func packD100(t *testing.T, ident string) []byte {
	t.Helper()
	data, err := datatype.D100{Ident: ident, Posn: datatype.Position{Lat: 1, Lon: 2}}.Pack()
	require.NoError(t, err)
	return data
}

func d100Schema(t *testing.T) *schema.Schema {
	t.Helper()
	s, ok := datatype.Lookup(100)
	require.True(t, ok)
	return s
}

func recordsPacket(count uint16) wire.Packet {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, count)
	return wire.Packet{ID: link.L001.Records, Data: data}
}

func TestGetDataEnvelope(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		recordsPacket(2),
		{ID: link.L001.WptData, Data: packD100(t, "HOME")},
		{ID: link.L001.WptData, Data: packD100(t, "WORK")},
		{ID: link.L001.XferCmplt, Data: []byte{0x07, 0x00}},
	}}
	tr := newTransfer(phys)

	items, err := tr.GetData(context.Background(), A010.TransferWpt,
		[]*schema.Schema{d100Schema(t)}, []uint16{link.L001.WptData}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 0, items[0].SchemaIndex)
	ident, ok := items[1].Record.Get("ident")
	require.True(t, ok)
	require.Equal(t, "WORK", ident)

	// The opening command is 16-bit little-endian xfer_wpt.
	require.Equal(t, link.L001.CommandData, phys.sent[0].ID)
	require.Equal(t, []byte{0x07, 0x00}, phys.sent[0].Data)
}

func TestGetDataProgressCallback(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		recordsPacket(2),
		{ID: link.L001.WptData, Data: packD100(t, "A")},
		{ID: link.L001.WptData, Data: packD100(t, "B")},
		{ID: link.L001.XferCmplt, Data: []byte{0x07, 0x00}},
	}}
	tr := newTransfer(phys)

	var calls [][2]int
	_, err := tr.GetData(context.Background(), A010.TransferWpt,
		[]*schema.Schema{d100Schema(t)}, []uint16{link.L001.WptData},
		func(current, total int) { calls = append(calls, [2]int{current, total}) })
	require.NoError(t, err)
	require.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}

func TestGetDataShortTransfer(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		recordsPacket(2),
		{ID: link.L001.WptData, Data: packD100(t, "ONLY")},
		{ID: link.L001.XferCmplt, Data: []byte{0x07, 0x00}},
	}}
	tr := newTransfer(phys)

	_, err := tr.GetData(context.Background(), A010.TransferWpt,
		[]*schema.Schema{d100Schema(t)}, []uint16{link.L001.WptData}, nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestGetDataUnexpectedPid(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		recordsPacket(1),
		{ID: link.L001.TrkData, Data: []byte{0}},
	}}
	tr := newTransfer(phys)

	_, err := tr.GetData(context.Background(), A010.TransferWpt,
		[]*schema.Schema{d100Schema(t)}, []uint16{link.L001.WptData}, nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestGetDataExcessRecords(t *testing.T) {
	// The device announces one record but sends a second before the
	// terminator: the terminator expectation trips on the extra packet.
	phys := &fakePhys{toRead: []wire.Packet{
		recordsPacket(1),
		{ID: link.L001.WptData, Data: packD100(t, "A")},
		{ID: link.L001.WptData, Data: packD100(t, "B")},
		{ID: link.L001.XferCmplt, Data: []byte{0x07, 0x00}},
	}}
	tr := newTransfer(phys)

	_, err := tr.GetData(context.Background(), A010.TransferWpt,
		[]*schema.Schema{d100Schema(t)}, []uint16{link.L001.WptData}, nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestPutDataRouteUpload(t *testing.T) {
	// A route header, two waypoints, one link between them, on A201's
	// three-slot pid list.
	phys := &fakePhys{}
	route := &RouteTransfer{Transfer: newTransfer(phys), Variant: 201, Schemas: nil}

	items := []Item{
		{SchemaIndex: 0, Data: []byte{1, 0}},
		{SchemaIndex: 1, Data: packD100(t, "A")},
		{SchemaIndex: 2, Data: []byte{0, 0}},
		{SchemaIndex: 1, Data: packD100(t, "B")},
	}
	require.NoError(t, route.Put(context.Background(), items, nil))

	wantPids := []uint16{
		link.L001.Records,
		link.L001.RteHdr,
		link.L001.RteWptData,
		link.L001.RteLinkData,
		link.L001.RteWptData,
		link.L001.XferCmplt,
	}
	require.Len(t, phys.sent, len(wantPids))
	for i, pid := range wantPids {
		require.Equal(t, pid, phys.sent[i].ID, "packet %d", i)
	}
	require.Equal(t, []byte{0x04, 0x00}, phys.sent[0].Data)
	require.Equal(t, []byte{0x04, 0x00}, phys.sent[len(phys.sent)-1].Data)
}

func TestPutDataBadSchemaIndex(t *testing.T) {
	phys := &fakePhys{}
	tr := newTransfer(phys)
	err := tr.PutData(context.Background(), A010.TransferWpt,
		[]Item{{SchemaIndex: 3}}, []uint16{link.L001.WptData}, nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestSendCommandUnsupported(t *testing.T) {
	phys := &fakePhys{}
	tr := Transfer{Link: link.New(phys, link.L002), Cmds: A011}
	err := tr.SendCommand(context.Background(), A011.TransferRuns)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Empty(t, phys.sent)
}

func TestGetSingle(t *testing.T) {
	dt := datatype.D600{Month: 7, Day: 14, Year: 2009, Hour: 16, Minute: 20, Second: 11}
	data, err := dt.Pack()
	require.NoError(t, err)

	phys := &fakePhys{toRead: []wire.Packet{{ID: link.L001.DateTimeData, Data: data}}}
	tr := newTransfer(phys)
	s, ok := datatype.Lookup(600)
	require.True(t, ok)

	item, err := tr.GetSingle(context.Background(), A010.TransferTime, link.L001.DateTimeData, s)
	require.NoError(t, err)
	year, ok := item.Record.Get("year")
	require.True(t, ok)
	require.Equal(t, uint16(2009), year)
}

func TestGetDataTimeoutSurfacesLinkError(t *testing.T) {
	phys := &fakePhys{} // nothing to read
	tr := newTransfer(phys)
	_, err := tr.GetData(context.Background(), A010.TransferWpt,
		[]*schema.Schema{d100Schema(t)}, []uint16{link.L001.WptData}, nil)
	var le *wire.LinkError
	require.True(t, errors.As(err, &le))
}
