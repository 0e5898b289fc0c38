// internal/proto/pvt_test.go
package proto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/datatype"
	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

func newPVT(t *testing.T, phys *fakePhys) *PVTTransfer {
	t.Helper()
	d800, ok := datatype.Lookup(800)
	require.True(t, ok)
	return &PVTTransfer{
		Transfer:        newTransfer(phys),
		Schemas:         []*schema.Schema{d800},
		SatelliteSchema: datatype.SatelliteSchema(),
	}
}

func packD800(t *testing.T) []byte {
	t.Helper()
	data, err := datatype.D800{Alt: 12.5, Fix: 3}.Pack()
	require.NoError(t, err)
	return data
}

func packSatellite(t *testing.T) []byte {
	t.Helper()
	data, err := datatype.Satellite{Svid: 7, Snr: 40}.Pack()
	require.NoError(t, err)
	return data
}

func TestPVTStreamAlternates(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		{ID: link.L001.PvtData, Data: packD800(t)},
		{ID: link.L001.SatelliteData, Data: packSatellite(t)},
		{ID: link.L001.PvtData, Data: packD800(t)},
		{ID: link.L001.SatelliteData, Data: packSatellite(t)},
	}}
	pvt := newPVT(t, phys)
	ctx := context.Background()

	require.NoError(t, pvt.DataOn(ctx))
	require.Equal(t, link.L001.CommandData, phys.sent[0].ID)
	require.Equal(t, []byte{49, 0}, phys.sent[0].Data)

	wantIndex := []int{0, 1, 0, 1}
	for i, want := range wantIndex {
		item, err := pvt.Get(ctx)
		require.NoError(t, err, "packet %d", i)
		require.Equal(t, want, item.SchemaIndex, "packet %d", i)
	}

	require.NoError(t, pvt.DataOff(ctx))
	require.Equal(t, []byte{50, 0}, phys.sent[1].Data)

	// Stream stopped and drained: the next read times out.
	_, err := pvt.Get(ctx)
	var le *wire.LinkError
	require.ErrorAs(t, err, &le)
}

func TestPVTUnexpectedPid(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{{ID: link.L001.WptData, Data: []byte{0}}}}
	pvt := newPVT(t, phys)
	_, err := pvt.Get(context.Background())
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}
