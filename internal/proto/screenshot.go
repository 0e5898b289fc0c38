// internal/proto/screenshot.go
//
// Screenshot transfer: one command, then a stream of pid_screen_data
// packets, each tagged with a section enum. The header comes first, then
// the color table (for indexed depths, except 2 bpp where the device
// assumes a fixed grayscale palette), then the pixel array.
package proto

import (
	"context"
	"fmt"

	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// Screen data section tags.
const (
	screenSectionHeader     uint32 = 0
	screenSectionPixelArray uint32 = 1
	screenSectionColorTable uint32 = 2
)

// screenChunkCap is the maximum pixel payload per screen data packet.
const screenChunkCap = 128

var (
	screenshotHeaderSchema = mustSchema("ScreenshotHeader",
		schema.FieldSpec{Name: "section", Format: "I"},
		schema.FieldSpec{Name: "offset", Format: "I"},
		schema.FieldSpec{Name: "bytewidth", Format: "I"},
		schema.FieldSpec{Name: "bpp", Format: "I"},
		schema.FieldSpec{Name: "width", Format: "I"},
		schema.FieldSpec{Name: "height", Format: "I"},
		schema.FieldSpec{Name: "unknown", Format: "12[B]"},
	)
	screenshotColorSchema = mustSchema("ScreenshotColor",
		schema.FieldSpec{Name: "section", Format: "I"},
		schema.FieldSpec{Name: "offset", Format: "I"},
		schema.FieldSpec{Name: "color", Format: "(BBB)"},
	)
	screenshotChunkSchema = mustSchema("ScreenshotChunk",
		schema.FieldSpec{Name: "section", Format: "I"},
		schema.FieldSpec{Name: "offset", Format: "I"},
		schema.FieldSpec{Name: "chunk", Format: "$"},
	)
)

// grayscale2bpp is the palette the device assumes for 2-bit screenshots,
// which it never transmits.
var grayscale2bpp = [][3]uint8{
	{255, 255, 255},
	{192, 192, 192},
	{128, 128, 128},
	{0, 0, 0},
}

// ScreenshotTransfer drives the screenshot command of units that answer
// it.
type ScreenshotTransfer struct {
	Transfer
}

// Get captures the current screen as a top-down, unpadded bitmap.
func (p *ScreenshotTransfer) Get(ctx context.Context, cb Progress) (*Bitmap, error) {
	pids := p.Link.Pids()
	if err := p.SendCommand(ctx, p.Cmds.TransferScreen); err != nil {
		return nil, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.ScreenData, true)
	if err != nil {
		return nil, err
	}
	hdr, err := schema.Unpack(screenshotHeaderSchema, packet.Data)
	if err != nil {
		return nil, wire.NewProtocolError("decode screenshot header", err)
	}
	if section := hdr.MustGet("section").(uint32); section != screenSectionHeader {
		return nil, wire.NewProtocolError("screenshot",
			fmt.Errorf("expected header section, got %d", section))
	}
	bmp := &Bitmap{
		Width:  int(hdr.MustGet("width").(uint32)),
		Height: int(hdr.MustGet("height").(uint32)),
		BPP:    int(hdr.MustGet("bpp").(uint32)),
	}
	byteWidth := int(hdr.MustGet("bytewidth").(uint32))
	logging.Infof("screenshot: %dx%d, %d bpp", bmp.Width, bmp.Height, bmp.BPP)

	var paletteSize int
	switch {
	case bmp.BPP == 2:
		// Never transmitted for this depth.
		bmp.Palette = grayscale2bpp
	case bmp.BPP <= 8:
		paletteSize = 1 << bmp.BPP
	case bmp.BPP == 16 || bmp.BPP == 24 || bmp.BPP == 32:
		// Direct color, no table.
	default:
		return nil, wire.NewProtocolError("screenshot",
			fmt.Errorf("unsupported color depth %d bpp", bmp.BPP))
	}

	done := 0
	chunksPerRow := (byteWidth + screenChunkCap - 1) / screenChunkCap
	total := paletteSize + chunksPerRow*bmp.Height
	for i := 0; i < paletteSize; i++ {
		packet, err := p.Link.ExpectPacket(ctx, pids.ScreenData, true)
		if err != nil {
			return nil, err
		}
		rec, err := schema.Unpack(screenshotColorSchema, packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("decode screenshot color", err)
		}
		if section := rec.MustGet("section").(uint32); section != screenSectionColorTable {
			return nil, wire.NewProtocolError("screenshot",
				fmt.Errorf("expected color table section, got %d", section))
		}
		c := rec.MustGet("color").([]schema.Value)
		bmp.Palette = append(bmp.Palette, [3]uint8{c[0].(uint8), c[1].(uint8), c[2].(uint8)})
		done++
		if cb != nil {
			cb(done, total)
		}
	}

	raw := make([]byte, 0, byteWidth*bmp.Height)
	for len(raw) < byteWidth*bmp.Height {
		packet, err := p.Link.ExpectPacket(ctx, pids.ScreenData, true)
		if err != nil {
			return nil, err
		}
		rec, err := schema.Unpack(screenshotChunkSchema, packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("decode screenshot chunk", err)
		}
		if section := rec.MustGet("section").(uint32); section != screenSectionPixelArray {
			return nil, wire.NewProtocolError("screenshot",
				fmt.Errorf("expected pixel array section, got %d", section))
		}
		raw = append(raw, rec.MustGet("chunk").([]byte)...)
		done++
		if cb != nil {
			cb(done, total)
		}
	}
	bmp.Pixels, err = unpadBottomUp(raw, byteWidth, bmp.rowSize(), bmp.Height)
	if err != nil {
		return nil, wire.NewProtocolError("screenshot pixels", err)
	}
	return bmp, nil
}
