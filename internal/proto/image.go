// internal/proto/image.go
//
// The image transfer protocol: custom waypoint icons and other symbol
// slots. Undocumented; the request/response pairs follow what Garmin's
// xImage utility does on the wire. Each slot has fixed dimensions and
// color depth, so uploads must supply a bitmap already conforming to the
// slot and its palette.
package proto

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// imageChunkCap is the maximum pixel payload per image data packet; the
// 4-byte image id precedes it for a 500-byte packet ceiling.
const imageChunkCap = 496

var (
	imageNameSchema = mustSchema("ImageName",
		schema.FieldSpec{Name: "name", Format: "n"},
	)
	imageListSchema = mustSchema("ImageList",
		schema.FieldSpec{Name: "images", Format: "{(H?B)}"},
	)
	imageInfoSchema = mustSchema("ImageInformationHeader",
		schema.FieldSpec{Name: "unknown1", Format: "B"},
		schema.FieldSpec{Name: "bpp", Format: "B"},
		schema.FieldSpec{Name: "unknown2", Format: "H"},
		schema.FieldSpec{Name: "height", Format: "H"},
		schema.FieldSpec{Name: "width", Format: "H"},
		schema.FieldSpec{Name: "bytewidth", Format: "H"},
		schema.FieldSpec{Name: "unknown3", Format: "H"},
		schema.FieldSpec{Name: "color", Format: "(BBBB)"},
	)
	imageIDSchema = mustSchema("ImageId",
		schema.FieldSpec{Name: "id", Format: "I"},
	)
	imageColorTableSchema = mustSchema("ImageColorTable",
		schema.FieldSpec{Name: "id", Format: "I"},
		schema.FieldSpec{Name: "colors", Format: "{(BBBB)}"},
	)
	imageChunkSchema = mustSchema("ImageChunk",
		schema.FieldSpec{Name: "id", Format: "I"},
		schema.FieldSpec{Name: "chunk", Format: "$"},
	)
)

// ImageType is one category of symbol slots.
type ImageType struct {
	Index uint16
	Name  string
}

// ImageSlot is one entry of the device's image list.
type ImageSlot struct {
	Index    uint16
	Writable bool
	Type     uint8
	Name     string
}

// ImageProperties describes one slot's pixel format.
type ImageProperties struct {
	BPP         int
	Width       int
	Height      int
	ByteWidth   int
	Transparent *[3]uint8 // nil when the slot has no transparency color
}

// Bitmap is a decoded image: top-down rows, no padding, palette indices
// (bpp <= 8) or packed RGB (bpp == 24).
type Bitmap struct {
	Width   int
	Height  int
	BPP     int
	Palette [][3]uint8
	Pixels  []byte
}

// rowSize is the unpadded byte width of one pixel row.
func (b *Bitmap) rowSize() int { return b.Width * b.BPP / 8 }

// colorsUsed maps a color depth to its palette size: 2^bpp for indexed
// formats, 0 for 24-bit, -1 for depths this transfer cannot carry.
func colorsUsed(bpp int) int {
	switch bpp {
	case 1, 2, 4, 8:
		return 1 << bpp
	case 24:
		return 0
	default:
		return -1
	}
}

// ImageTransfer drives the image slots of a device that reports the
// image protocol.
type ImageTransfer struct {
	Transfer
}

// GetTypes enumerates the image type categories.
func (p *ImageTransfer) GetTypes(ctx context.Context) ([]ImageType, error) {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.ImageTypeIdxRx, nil, true); err != nil {
		return nil, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.ImageTypeIdxTx, true)
	if err != nil {
		return nil, err
	}
	types := make([]ImageType, 0, len(packet.Data))
	for _, idx := range packet.Data {
		if err := p.Link.SendPacket(ctx, pids.ImageTypeNameRx, u16le(uint16(idx)), true); err != nil {
			return nil, err
		}
		packet, err := p.Link.ExpectPacket(ctx, pids.ImageTypeNameTx, true)
		if err != nil {
			return nil, err
		}
		rec, err := schema.Unpack(imageNameSchema, packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("decode image type name", err)
		}
		types = append(types, ImageType{Index: uint16(idx), Name: rec.MustGet("name").(string)})
	}
	return types, nil
}

// GetList enumerates every image slot with its name.
func (p *ImageTransfer) GetList(ctx context.Context) ([]ImageSlot, error) {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.ImageListRx, nil, true); err != nil {
		return nil, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.ImageListTx, true)
	if err != nil {
		return nil, err
	}
	rec, err := schema.Unpack(imageListSchema, packet.Data)
	if err != nil {
		return nil, wire.NewProtocolError("decode image list", err)
	}
	entries := rec.MustGet("images").([]schema.Value)
	slots := make([]ImageSlot, 0, len(entries))
	for _, entry := range entries {
		fields := entry.([]schema.Value)
		slot := ImageSlot{
			Index:    fields[0].(uint16),
			Writable: fields[1].(bool),
			Type:     fields[2].(uint8),
		}
		if err := p.Link.SendPacket(ctx, pids.ImageNameRx, u16le(slot.Index), true); err != nil {
			return nil, err
		}
		packet, err := p.Link.ExpectPacket(ctx, pids.ImageNameTx, true)
		if err != nil {
			return nil, err
		}
		name, err := schema.Unpack(imageNameSchema, packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("decode image name", err)
		}
		slot.Name = name.MustGet("name").(string)
		slots = append(slots, slot)
	}
	return slots, nil
}

// GetProperties fetches one slot's pixel format.
func (p *ImageTransfer) GetProperties(ctx context.Context, idx uint16) (ImageProperties, error) {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.ImagePropsRx, u16le(idx), true); err != nil {
		return ImageProperties{}, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.ImagePropsTx, true)
	if err != nil {
		return ImageProperties{}, err
	}
	if len(packet.Data) == 0 {
		return ImageProperties{}, wire.NewProtocolError("image properties",
			fmt.Errorf("empty answer for slot %d: no such slot", idx))
	}
	rec, err := schema.Unpack(imageInfoSchema, packet.Data)
	if err != nil {
		return ImageProperties{}, wire.NewProtocolError("decode image properties", err)
	}
	props := ImageProperties{
		BPP:       int(rec.MustGet("bpp").(uint8)),
		Height:    int(rec.MustGet("height").(uint16)),
		Width:     int(rec.MustGet("width").(uint16)),
		ByteWidth: int(rec.MustGet("bytewidth").(uint16)),
	}
	if colorsUsed(props.BPP) < 0 {
		return ImageProperties{}, wire.NewProtocolError("image properties",
			fmt.Errorf("unsupported color depth %d bpp", props.BPP))
	}
	color := rec.MustGet("color").([]schema.Value)
	rgba := [4]uint8{color[0].(uint8), color[1].(uint8), color[2].(uint8), color[3].(uint8)}
	if rgba != [4]uint8{} {
		props.Transparent = &[3]uint8{rgba[0], rgba[1], rgba[2]}
	}
	return props, nil
}

func (p *ImageTransfer) getImageID(ctx context.Context, idx uint16) (uint32, []byte, error) {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.ImageIDRx, u16le(idx), true); err != nil {
		return 0, nil, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.ImageIDTx, true)
	if err != nil {
		return 0, nil, err
	}
	rec, err := schema.Unpack(imageIDSchema, packet.Data)
	if err != nil {
		return 0, nil, wire.NewProtocolError("decode image id", err)
	}
	return rec.MustGet("id").(uint32), packet.Data, nil
}

func (p *ImageTransfer) getColorTable(ctx context.Context, idBytes []byte) ([][3]uint8, []byte, error) {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.ColorTableRx, idBytes, true); err != nil {
		return nil, nil, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.ColorTableTx, true)
	if err != nil {
		return nil, nil, err
	}
	rec, err := schema.Unpack(imageColorTableSchema, packet.Data)
	if err != nil {
		return nil, nil, wire.NewProtocolError("decode color table", err)
	}
	entries := rec.MustGet("colors").([]schema.Value)
	palette := make([][3]uint8, 0, len(entries))
	for _, entry := range entries {
		c := entry.([]schema.Value)
		palette = append(palette, [3]uint8{c[0].(uint8), c[1].(uint8), c[2].(uint8)})
	}
	return palette, packet.Data, nil
}

// Get downloads slot idx as a top-down, unpadded bitmap.
func (p *ImageTransfer) Get(ctx context.Context, idx uint16, cb Progress) (*Bitmap, error) {
	pids := p.Link.Pids()
	props, err := p.GetProperties(ctx, idx)
	if err != nil {
		return nil, err
	}
	_, idBytes, err := p.getImageID(ctx, idx)
	if err != nil {
		return nil, err
	}
	bmp := &Bitmap{Width: props.Width, Height: props.Height, BPP: props.BPP}
	if used := colorsUsed(props.BPP); used > 0 {
		palette, _, err := p.getColorTable(ctx, idBytes)
		if err != nil {
			return nil, err
		}
		// The table can carry more colors than the depth uses.
		if len(palette) > used {
			palette = palette[:used]
		}
		bmp.Palette = palette
	}
	byteSize := props.ByteWidth * props.Height
	chunkCount := (byteSize + imageChunkCap - 1) / imageChunkCap
	logging.Debugf("image %d: expecting %d chunks, %d bytes", idx, chunkCount, byteSize)
	raw := make([]byte, 0, byteSize)
	for i := 0; i < chunkCount; i++ {
		if err := p.Link.SendPacket(ctx, pids.ImageDataRx, idBytes, true); err != nil {
			return nil, err
		}
		packet, err := p.Link.ExpectPacket(ctx, pids.ImageDataTx, true)
		if err != nil {
			return nil, err
		}
		rec, err := schema.Unpack(imageChunkSchema, packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("decode image chunk", err)
		}
		raw = append(raw, rec.MustGet("chunk").([]byte)...)
		if cb != nil {
			cb(i+1, chunkCount)
		}
	}
	if err := p.Link.SendPacket(ctx, pids.ImageDataCmplt, idBytes, true); err != nil {
		return nil, err
	}
	bmp.Pixels, err = unpadBottomUp(raw, props.ByteWidth, bmp.rowSize(), props.Height)
	if err != nil {
		return nil, wire.NewProtocolError("image pixels", err)
	}
	return bmp, nil
}

// Put uploads a bitmap to slot idx. The bitmap must already conform to
// the slot's depth, dimensions, and palette; the palette in use is
// fetched and echoed back before the pixel rows go out.
func (p *ImageTransfer) Put(ctx context.Context, idx uint16, bmp *Bitmap, cb Progress) error {
	pids := p.Link.Pids()
	props, err := p.GetProperties(ctx, idx)
	if err != nil {
		return err
	}
	if props.BPP != bmp.BPP {
		return wire.NewProtocolError("put image",
			fmt.Errorf("wrong color depth: slot wants %d bpp, got %d", props.BPP, bmp.BPP))
	}
	if props.Width != bmp.Width || props.Height != bmp.Height {
		return wire.NewProtocolError("put image",
			fmt.Errorf("wrong dimensions: slot wants %dx%d, got %dx%d",
				props.Width, props.Height, bmp.Width, bmp.Height))
	}
	id, idBytes, err := p.getImageID(ctx, idx)
	if err != nil {
		return err
	}
	if used := colorsUsed(props.BPP); used > 0 {
		palette, tableBytes, err := p.getColorTable(ctx, idBytes)
		if err != nil {
			return err
		}
		if len(palette) > used {
			palette = palette[:used]
		}
		if !paletteEqual(palette, bmp.Palette) {
			return wire.NewProtocolError("put image", fmt.Errorf("wrong color palette for slot %d", idx))
		}
		// Echo the table back unchanged; the device insists on seeing it
		// before pixel data.
		if err := p.Link.SendPacket(ctx, pids.ColorTableTx, tableBytes, true); err != nil {
			return err
		}
		packet, err := p.Link.ExpectPacket(ctx, pids.ColorTableRx, true)
		if err != nil {
			return err
		}
		if err := checkIDEcho(packet.Data, id); err != nil {
			return err
		}
	}
	rowSize := bmp.rowSize()
	rows := padBottomUp(bmp.Pixels, rowSize, props.ByteWidth, bmp.Height)
	for i := 0; i < bmp.Height; i++ {
		chunk := make([]byte, 0, 4+props.ByteWidth)
		chunk = append(chunk, idBytes[:4]...)
		chunk = append(chunk, rows[i*props.ByteWidth:(i+1)*props.ByteWidth]...)
		if err := p.Link.SendPacket(ctx, pids.ImageDataTx, chunk, true); err != nil {
			return err
		}
		packet, err := p.Link.ExpectPacket(ctx, pids.ImageDataRx, true)
		if err != nil {
			return err
		}
		if err := checkIDEcho(packet.Data, id); err != nil {
			return err
		}
		if cb != nil {
			cb(i+1, bmp.Height)
		}
	}
	return p.Link.SendPacket(ctx, pids.ImageDataCmplt, idBytes, true)
}

func checkIDEcho(data []byte, id uint32) error {
	if len(data) < 4 {
		return wire.NewProtocolError("image id echo", fmt.Errorf("payload is %d bytes, need 4", len(data)))
	}
	if echo := binary.LittleEndian.Uint32(data); echo != id {
		return wire.NewProtocolError("image id echo", fmt.Errorf("expected id %d, got %d", id, echo))
	}
	return nil
}

func paletteEqual(a, b [][3]uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// unpadBottomUp turns a padded bottom-up pixel array into top-down
// unpadded rows.
func unpadBottomUp(raw []byte, byteWidth, rowSize, height int) ([]byte, error) {
	if len(raw) < byteWidth*height {
		return nil, fmt.Errorf("pixel array is %d bytes, need %d", len(raw), byteWidth*height)
	}
	out := make([]byte, 0, rowSize*height)
	for row := height - 1; row >= 0; row-- {
		out = append(out, raw[row*byteWidth:row*byteWidth+rowSize]...)
	}
	return out, nil
}

// padBottomUp is the inverse: top-down unpadded rows to a padded
// bottom-up pixel array.
func padBottomUp(pixels []byte, rowSize, byteWidth, height int) []byte {
	out := make([]byte, 0, byteWidth*height)
	padding := bytes.Repeat([]byte{0}, byteWidth-rowSize)
	for row := height - 1; row >= 0; row-- {
		out = append(out, pixels[row*rowSize:(row+1)*rowSize]...)
		out = append(out, padding...)
	}
	return out
}
