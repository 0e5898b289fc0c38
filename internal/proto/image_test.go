// internal/proto/image_test.go
package proto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/wire"
)

func TestColorsUsed(t *testing.T) {
	require.Equal(t, 2, colorsUsed(1))
	require.Equal(t, 4, colorsUsed(2))
	require.Equal(t, 16, colorsUsed(4))
	require.Equal(t, 256, colorsUsed(8))
	require.Equal(t, 0, colorsUsed(24))
	require.Equal(t, -1, colorsUsed(16))
	require.Equal(t, -1, colorsUsed(32))
}

func TestPadUnpadRoundTrip(t *testing.T) {
	// 3 bytes per row, padded to 4; two rows.
	pixels := []byte{1, 2, 3, 4, 5, 6}
	padded := padBottomUp(pixels, 3, 4, 2)
	require.Equal(t, []byte{4, 5, 6, 0, 1, 2, 3, 0}, padded)

	back, err := unpadBottomUp(padded, 4, 3, 2)
	require.NoError(t, err)
	require.Equal(t, pixels, back)
}

func TestUnpadShortBuffer(t *testing.T) {
	_, err := unpadBottomUp([]byte{1, 2}, 4, 3, 2)
	require.Error(t, err)
}

// imagePropsPacket builds an ImageInformationHeader payload.
func imagePropsPacket(bpp uint8, width, height, bytewidth uint16) wire.Packet {
	data := []byte{
		0, bpp,
		0, 0,
		byte(height), byte(height >> 8),
		byte(width), byte(width >> 8),
		byte(bytewidth), byte(bytewidth >> 8),
		0, 0,
		255, 0, 255, 0, // magenta transparency
	}
	return wire.Packet{ID: link.L001.ImagePropsTx, Data: data}
}

func TestGetPropertiesRejectsUnsupportedDepth(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{imagePropsPacket(16, 16, 16, 32)}}
	p := &ImageTransfer{Transfer: newTransfer(phys)}

	_, err := p.GetProperties(context.Background(), 3)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestGetProperties(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{imagePropsPacket(8, 16, 16, 16)}}
	p := &ImageTransfer{Transfer: newTransfer(phys)}

	props, err := p.GetProperties(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 8, props.BPP)
	require.Equal(t, 16, props.Width)
	require.Equal(t, 16, props.Height)
	require.Equal(t, 16, props.ByteWidth)
	require.NotNil(t, props.Transparent)
	require.Equal(t, [3]uint8{255, 0, 255}, *props.Transparent)

	// The request names the slot as a 16-bit index.
	require.Equal(t, link.L001.ImagePropsRx, phys.sent[0].ID)
	require.Equal(t, []byte{3, 0}, phys.sent[0].Data)
}

func TestGetImageTypes(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		{ID: link.L001.ImageTypeIdxTx, Data: []byte{0, 2}},
		{ID: link.L001.ImageTypeNameTx, Data: []byte("Screenshots\x00")},
		{ID: link.L001.ImageTypeNameTx, Data: []byte("Icons\x00")},
	}}
	p := &ImageTransfer{Transfer: newTransfer(phys)}

	types, err := p.GetTypes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []ImageType{
		{Index: 0, Name: "Screenshots"},
		{Index: 2, Name: "Icons"},
	}, types)
}
