// internal/wire/usb.go
package wire

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// GarminVendorID is the USB vendor id every Garmin device enumerates
	// under.
	GarminVendorID = 0x091E

	usbConfigValue = 1

	// Endpoints.
	usbEndpointIn  = 0x81 // interrupt IN
	usbEndpointOut = 0x02 // bulk OUT

	// usbMaxRead is the largest single read the physical layer will
	// attempt; USB packets never exceed this in practice.
	usbMaxRead = 4096

	// Packet container layers.
	usbLayerControl     byte   = 0
	usbLayerApplication byte   = 20
	pidStartSession     uint16 = 5
	pidSessionStarted   uint16 = 6
)

// USB is the bulk/interrupt physical layer used when a Garmin device is
// addressed directly (bypassing any OS serial-over-USB driver). Open is
// gousb.NewContext → OpenDeviceWithVIDPID → Config(1) → Interface(0,0) →
// Out/InEndpoint, generalized from one hardcoded vendor/product pair to
// Garmin's vendor id and the two-layer (control/application) packet header.
type USB struct {
	ctx        *gousb.Context
	device     *gousb.Device
	config     *gousb.Config
	intf       *gousb.Interface
	epOut      *gousb.OutEndpoint
	epIn       *gousb.InEndpoint
	maxRetries int
	timeout    time.Duration
}

// USBConfig configures a USB physical layer.
type USBConfig struct {
	ProductID  gousb.ID
	MaxRetries int
	Timeout    time.Duration
}

func (c USBConfig) withDefaults() USBConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultRetryBudget
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultReadTimeout
	}
	return c
}

// OpenUSB opens the first Garmin device found (matching vendor id
// GarminVendorID, optionally a specific product id), claims its interface,
// and runs the USB-layer session-start handshake: a
// pid_start_session write followed by reads until pid_session_started is
// observed, discarding anything received before it.
func OpenUSB(cfg USBConfig) (*USB, error) {
	cfg = cfg.withDefaults()
	ctx := gousb.NewContext()

	var device *gousb.Device
	var err error
	if cfg.ProductID != 0 {
		device, err = ctx.OpenDeviceWithVIDPID(gousb.ID(GarminVendorID), cfg.ProductID)
	} else {
		devices, derr := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
			return desc.Vendor == gousb.ID(GarminVendorID)
		})
		if derr == nil && len(devices) > 0 {
			device = devices[0]
			for _, extra := range devices[1:] {
				extra.Close()
			}
		}
		err = derr
	}
	if err != nil {
		ctx.Close()
		return nil, NewLinkError("open USB device", err)
	}
	if device == nil {
		ctx.Close()
		return nil, NewLinkError("open USB device", fmt.Errorf("no Garmin device found (vendor 0x%04x)", GarminVendorID))
	}

	config, err := device.Config(usbConfigValue)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, NewLinkError("set USB configuration", err)
	}
	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, NewLinkError("claim USB interface", err)
	}
	epOut, err := intf.OutEndpoint(usbEndpointOut)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, NewLinkError("open USB OUT endpoint", err)
	}
	epIn, err := intf.InEndpoint(usbEndpointIn)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, NewLinkError("open USB IN endpoint", err)
	}

	u := &USB{
		ctx:        ctx,
		device:     device,
		config:     config,
		intf:       intf,
		epOut:      epOut,
		epIn:       epIn,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
	}

	if err := u.startSession(); err != nil {
		u.Close()
		return nil, err
	}
	return u, nil
}

func (u *USB) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	if u.config != nil {
		u.config.Close()
	}
	if u.device != nil {
		u.device.Close()
	}
	if u.ctx != nil {
		u.ctx.Close()
	}
	return nil
}

// packContainer builds the 12-byte USB packet container header plus data.
func packContainer(layer byte, pid uint16, data []byte) []byte {
	buf := make([]byte, 12+len(data))
	buf[0] = layer
	binary.LittleEndian.PutUint16(buf[4:6], pid)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(data)))
	copy(buf[12:], data)
	return buf
}

func unpackContainer(buf []byte) (Packet, error) {
	if len(buf) < 12 {
		return Packet{}, NewLinkError("decode USB container", fmt.Errorf("short container: %d bytes", len(buf)))
	}
	pid := binary.LittleEndian.Uint16(buf[4:6])
	size := binary.LittleEndian.Uint32(buf[8:12])
	data := buf[12:]
	if int(size) != len(data) {
		return Packet{}, NewLinkError("decode USB container", fmt.Errorf("size mismatch: header says %d, got %d", size, len(data)))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return Packet{ID: pid, Data: out}, nil
}

func (u *USB) writeContainer(ctx context.Context, buf []byte) error {
	wctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	_, err := u.epOut.WriteContext(wctx, buf)
	if err != nil {
		return NewLinkError("USB write", err)
	}
	return nil
}

func (u *USB) readContainer(ctx context.Context) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	buf := make([]byte, usbMaxRead)
	n, err := u.epIn.ReadContext(rctx, buf)
	if err != nil {
		return nil, NewLinkError("USB read", err)
	}
	return buf[:n], nil
}

func (u *USB) startSession() error {
	start := packContainer(usbLayerControl, pidStartSession, nil)
	ctx := context.Background()
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if err := u.writeContainer(ctx, start); err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return NewLinkError("start USB session", lastErr)
	}
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		raw, err := u.readContainer(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		packet, err := unpackContainer(raw)
		if err != nil {
			lastErr = err
			continue
		}
		if packet.ID == pidSessionStarted {
			return nil
		}
		// Any packet received before pid_session_started is discarded.
	}
	return NewLinkError("start USB session", fmt.Errorf("session never started: %w", lastErr))
}

// SendPacket writes an application-layer packet. USB is lossless so the
// acknowledge flag is accepted but has no effect.
func (u *USB) SendPacket(ctx context.Context, pid uint16, data []byte, acknowledge bool) error {
	buf := packContainer(usbLayerApplication, pid, data)
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if err := u.writeContainer(ctx, buf); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return NewLinkError("send USB packet", fmt.Errorf("maximum retries exceeded: %w", lastErr))
}

// ReadPacket reads the next application-layer packet. acknowledge is
// accepted for interface parity with Serial but ignored.
func (u *USB) ReadPacket(ctx context.Context, acknowledge bool) (Packet, error) {
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		raw, err := u.readContainer(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		packet, err := unpackContainer(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return packet, nil
	}
	return Packet{}, NewLinkError("read USB packet", fmt.Errorf("maximum retries exceeded: %w", lastErr))
}
