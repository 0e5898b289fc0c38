// internal/proto/baud_test.go
package proto

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/wire"
)

type fakeBaudSetter struct {
	rates []int
}

func (f *fakeBaudSetter) SetBaudRate(baud int) error {
	f.rates = append(f.rates, baud)
	return nil
}

func TestDesiredBaudrate(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{9600, 9600},
		{9800, 9600},    // within +2.5% of 9600
		{9360, 9600},    // within -2.5%
		{10000, 0},      // outside every window
		{115942, 115200}, // the rate devices actually report for 115200
		{250000, 250000},
		{0, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, DesiredBaudrate(c.in), "input %d", c.in)
	}
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestSupportedBaudrates(t *testing.T) {
	payload := append(append(u32le(9600), u32le(38462)...), u32le(12345)...)
	phys := &fakePhys{toRead: []wire.Packet{{ID: link.L001.BaudData, Data: payload}}}
	tx := &Transmission{Transfer: newTransfer(phys)}

	rates, err := tx.SupportedBaudrates(context.Background())
	require.NoError(t, err)
	// 38462 snaps to 38400; 12345 is dropped.
	require.Equal(t, []int{9600, 38400}, rates)
}

func TestSetBaudrate(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{{ID: link.L001.BaudAcptData, Data: u32le(115942)}}}
	setter := &fakeBaudSetter{}
	tx := &Transmission{Transfer: newTransfer(phys), Phys: setter}

	got, err := tx.SetBaudrate(context.Background(), 115200)
	require.NoError(t, err)
	require.Equal(t, 115200, got)
	require.Equal(t, []int{115200}, setter.rates)

	// async events off, baud request, then the two confirming pings.
	require.Equal(t, link.L001.EnableAsyncEvents, phys.sent[0].ID)
	require.Equal(t, link.L001.BaudRqstData, phys.sent[1].ID)
	require.Equal(t, u32le(115200), phys.sent[1].Data)
	require.Equal(t, link.L001.CommandData, phys.sent[2].ID)
	require.Equal(t, []byte{58, 0}, phys.sent[2].Data)
	require.Equal(t, link.L001.CommandData, phys.sent[3].ID)
	require.Equal(t, []byte{58, 0}, phys.sent[3].Data)
}

func TestSetBaudrateOutOfTolerance(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{{ID: link.L001.BaudAcptData, Data: u32le(12345)}}}
	setter := &fakeBaudSetter{}
	tx := &Transmission{Transfer: newTransfer(phys), Phys: setter}

	_, err := tx.SetBaudrate(context.Background(), 12345)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Empty(t, setter.rates)
}
