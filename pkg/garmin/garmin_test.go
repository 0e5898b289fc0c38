// pkg/garmin/garmin_test.go
package garmin

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/capability"
	"github.com/guiperry/garminlink/internal/datatype"
	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/registry"
	"github.com/guiperry/garminlink/internal/wire"
)

type fakePhysical struct {
	toRead []wire.Packet
	sent   []wire.Packet
	closed bool
}

func (f *fakePhysical) SendPacket(_ context.Context, pid uint16, data []byte, _ bool) error {
	f.sent = append(f.sent, wire.Packet{ID: pid, Data: data})
	return nil
}

func (f *fakePhysical) ReadPacket(_ context.Context, _ bool) (wire.Packet, error) {
	if len(f.toRead) == 0 {
		return wire.Packet{}, wire.NewLinkError("read packet", context.DeadlineExceeded)
	}
	p := f.toRead[0]
	f.toRead = f.toRead[1:]
	return p, nil
}

func (f *fakePhysical) Close() error {
	f.closed = true
	return nil
}

// productDataPacket encodes identity for product 62 at firmware 2.10,
// a unit that never answers A001.
func productDataPacket() wire.Packet {
	data := make([]byte, 4, 20)
	binary.LittleEndian.PutUint16(data[0:], 62)
	binary.LittleEndian.PutUint16(data[2:], 210)
	data = append(data, []byte("GPS 38 Japanese\x00")...)
	return wire.Packet{ID: link.L001.ProductData, Data: data}
}

func recordsPacket(count uint16) wire.Packet {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, count)
	return wire.Packet{ID: link.L001.Records, Data: data}
}

func packD100(t *testing.T, ident string) []byte {
	t.Helper()
	data, err := datatype.D100{Ident: ident}.Pack()
	require.NoError(t, err)
	return data
}

func newFallbackDevice(t *testing.T, extra ...wire.Packet) (*Device, *fakePhysical) {
	t.Helper()
	// Bootstrap sees only the product data; the A001 probe times out on
	// the empty queue, as on a real device without it. Packets for the
	// operation under test are queued afterward.
	phys := &fakePhysical{toRead: []wire.Packet{productDataPacket()}}
	dev, err := New(phys)
	require.NoError(t, err)
	phys.toRead = append(phys.toRead, extra...)
	return dev, phys
}

func TestBootstrapFallbackRegistry(t *testing.T) {
	dev, phys := newFallbackDevice(t)

	prod := dev.ProductData()
	require.Equal(t, uint16(62), prod.ProductID)
	require.InDelta(t, 2.10, prod.SoftwareVersion, 0.001)
	require.Equal(t, "GPS 38 Japanese", prod.ProductDescription)

	// The session opened with a product request and nothing else.
	require.Equal(t, link.L001.ProductRqst, phys.sent[0].ID)

	reg := dev.Registry()
	for _, role := range []registry.Role{
		registry.RoleLink, registry.RoleCommand, registry.RoleWaypoint,
		registry.RoleRoute, registry.RoleTrack, registry.RoleAlmanac,
		registry.RoleDateTime, registry.RolePosition,
	} {
		require.True(t, reg.Has(role), "role %s", role)
	}
	require.False(t, reg.Has(registry.RoleRun))
	require.Equal(t, link.L001, reg.Pids())

	route, err := reg.Get(registry.RoleRoute)
	require.NoError(t, err)
	require.Equal(t, uint16(200), route.Protocol.Tag)
}

func TestBootstrapDeterministic(t *testing.T) {
	a, _ := newFallbackDevice(t)
	b, _ := newFallbackDevice(t)
	require.ElementsMatch(t, a.Registry().Roles(), b.Registry().Roles())
	require.Equal(t, a.Capabilities(), b.Capabilities())
}

func TestBootstrapProtocolArray(t *testing.T) {
	// The device reports its own set: L001, A010, A100/D100.
	var payload []byte
	for _, entry := range []struct {
		tag   byte
		value uint16
	}{
		{'P', 0}, {'L', 1}, {'A', 10}, {'A', 100}, {'D', 100},
	} {
		payload = append(payload, entry.tag, byte(entry.value), byte(entry.value>>8))
	}
	phys := &fakePhysical{toRead: []wire.Packet{
		productDataPacket(),
		{ID: link.L001.ProtocolArray, Data: payload},
	}}
	dev, err := New(phys)
	require.NoError(t, err)

	reg := dev.Registry()
	require.True(t, reg.Has(registry.RoleWaypoint))
	require.False(t, reg.Has(registry.RoleRoute))

	wpt, err := reg.Get(registry.RoleWaypoint)
	require.NoError(t, err)
	require.Len(t, wpt.Schemas, 1)
	require.Equal(t, "D100", wpt.Schemas[0].Name)
}

func TestBootstrapUnknownProduct(t *testing.T) {
	data := make([]byte, 4, 10)
	binary.LittleEndian.PutUint16(data[0:], 9999)
	binary.LittleEndian.PutUint16(data[2:], 100)
	data = append(data, []byte("Mystery\x00")...)
	phys := &fakePhysical{toRead: []wire.Packet{{ID: link.L001.ProductData, Data: data}}}

	_, err := New(phys)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestWaypointDownload(t *testing.T) {
	dev, phys := newFallbackDevice(t,
		recordsPacket(2),
		wire.Packet{ID: link.L001.WptData, Data: packD100(t, "HOME")},
		wire.Packet{ID: link.L001.WptData, Data: packD100(t, "WORK")},
		wire.Packet{ID: link.L001.XferCmplt, Data: []byte{0x07, 0x00}},
	)

	items, err := dev.Waypoints(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	wpt, err := datatype.DecodeD100(items[0].Data)
	require.NoError(t, err)
	require.Equal(t, "HOME", wpt.Ident)

	// Bootstrap sent the product request; the transfer opened with
	// xfer_wpt.
	require.Equal(t, link.L001.CommandData, phys.sent[1].ID)
	require.Equal(t, []byte{0x07, 0x00}, phys.sent[1].Data)
}

func TestTimeRoundTrip(t *testing.T) {
	want := time.Date(2009, 7, 14, 16, 20, 11, 0, time.UTC)
	data, err := datatype.NewD600(want).Pack()
	require.NoError(t, err)

	dev, phys := newFallbackDevice(t, wire.Packet{ID: link.L001.DateTimeData, Data: data})
	got, err := dev.Time(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, dev.SetTime(context.Background(), want))
	last := phys.sent[len(phys.sent)-1]
	require.Equal(t, link.L001.DateTimeData, last.ID)
	require.Equal(t, data, last.Data)
}

func TestUnsupportedProtocolIsProtocolError(t *testing.T) {
	dev, _ := newFallbackDevice(t)
	_, err := dev.Runs(context.Background(), nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestCloseReleasesTransport(t *testing.T) {
	dev, phys := newFallbackDevice(t)
	require.NoError(t, dev.Close())
	require.True(t, phys.closed)
}

func TestCapabilitiesIncludeImplicitProtocols(t *testing.T) {
	dev, _ := newFallbackDevice(t)
	caps := dev.Capabilities()
	_, hasTime := caps.Find(capability.ClassApplication, 600)
	_, hasPosn := caps.Find(capability.ClassApplication, 700)
	require.True(t, hasTime)
	require.True(t, hasPosn)
}
