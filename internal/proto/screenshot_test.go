// internal/proto/screenshot_test.go
package proto

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/wire"
)

func screenHeaderPacket(bytewidth, bpp, width, height uint32) wire.Packet {
	data := make([]byte, 36)
	binary.LittleEndian.PutUint32(data[0:], screenSectionHeader)
	binary.LittleEndian.PutUint32(data[8:], bytewidth)
	binary.LittleEndian.PutUint32(data[12:], bpp)
	binary.LittleEndian.PutUint32(data[16:], width)
	binary.LittleEndian.PutUint32(data[20:], height)
	return wire.Packet{ID: link.L001.ScreenData, Data: data}
}

func screenChunkPacket(section uint32, chunk []byte) wire.Packet {
	data := make([]byte, 8+len(chunk))
	binary.LittleEndian.PutUint32(data[0:], section)
	copy(data[8:], chunk)
	return wire.Packet{ID: link.L001.ScreenData, Data: data}
}

func TestScreenshot2bppUsesFixedPalette(t *testing.T) {
	// 8 pixels wide at 2 bpp: 2-byte rows padded to 4; two rows,
	// bottom-up on the wire.
	phys := &fakePhys{toRead: []wire.Packet{
		screenHeaderPacket(4, 2, 8, 2),
		screenChunkPacket(screenSectionPixelArray, []byte{0x11, 0x22, 0, 0}),
		screenChunkPacket(screenSectionPixelArray, []byte{0x33, 0x44, 0, 0}),
	}}
	p := &ScreenshotTransfer{Transfer: newTransfer(phys)}

	bmp, err := p.Get(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 8, bmp.Width)
	require.Equal(t, 2, bmp.Height)
	require.Equal(t, 2, bmp.BPP)
	require.Equal(t, grayscale2bpp, bmp.Palette)
	// Top row last on the wire, first in the result, padding stripped.
	require.Equal(t, []byte{0x33, 0x44, 0x11, 0x22}, bmp.Pixels)
}

func TestScreenshot4bppColorTable(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{screenHeaderPacket(4, 4, 8, 1)}}
	for i := 0; i < 16; i++ {
		phys.toRead = append(phys.toRead,
			screenChunkPacket(screenSectionColorTable, []byte{byte(i), byte(i), byte(i)}))
	}
	phys.toRead = append(phys.toRead,
		screenChunkPacket(screenSectionPixelArray, []byte{1, 2, 3, 4}))
	p := &ScreenshotTransfer{Transfer: newTransfer(phys)}

	bmp, err := p.Get(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, bmp.Palette, 16)
	require.Equal(t, [3]uint8{5, 5, 5}, bmp.Palette[5])
	require.Equal(t, []byte{1, 2, 3, 4}, bmp.Pixels)
}

func TestScreenshotSectionOutOfOrder(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{
		screenHeaderPacket(4, 4, 8, 1),
		// Pixel data where the color table belongs.
		screenChunkPacket(screenSectionPixelArray, []byte{1, 2, 3}),
	}}
	p := &ScreenshotTransfer{Transfer: newTransfer(phys)}

	_, err := p.Get(context.Background(), nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestScreenshotUnsupportedDepth(t *testing.T) {
	phys := &fakePhys{toRead: []wire.Packet{screenHeaderPacket(4, 64, 8, 1)}}
	p := &ScreenshotTransfer{Transfer: newTransfer(phys)}

	_, err := p.Get(context.Background(), nil)
	var pe *wire.ProtocolError
	require.ErrorAs(t, err, &pe)
}
