// internal/proto/baud.go
//
// T001, the undocumented baud-rate negotiation. The flow follows
// Appendix C of the Garmin GPS 18x Technical Specifications: request a
// rate, accept the device's counter-offer, switch the port, and confirm
// with two ack pings inside two seconds or the device falls back to
// 9600.
package proto

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/wire"
)

// baudTolerance is the per-module deviation an 8N1 UART pairing can
// absorb: the spec allows ±5% total, so each end gets ±2.5%.
const baudTolerance = 0.025

// nominalBaudrates are the rates Garmin serial units are known to offer.
var nominalBaudrates = []int{9600, 14400, 19200, 28800, 38400, 57600, 115200, 250000}

// BaudSetter is the part of the serial physical layer T001 reconfigures.
type BaudSetter interface {
	SetBaudRate(baud int) error
}

// Transmission is the T001 Transmission Protocol.
type Transmission struct {
	Transfer
	Phys BaudSetter
}

// DesiredBaudrate maps a device-reported rate to the nominal rate within
// tolerance, or 0 if the report is outside every supported window.
func DesiredBaudrate(baud int) int {
	for _, nominal := range nominalBaudrates {
		diff := float64(baud) - float64(nominal)
		if diff < 0 {
			diff = -diff
		}
		if diff <= baudTolerance*float64(nominal) {
			return nominal
		}
	}
	return 0
}

// SupportedBaudrates asks the device for its rate list. Reported values
// are snapped to nominal; unrecognizable entries are dropped.
func (p *Transmission) SupportedBaudrates(ctx context.Context) ([]int, error) {
	if err := p.SendCommand(ctx, p.Cmds.TransferBaud); err != nil {
		return nil, err
	}
	packet, err := p.Link.ExpectPacket(ctx, p.Link.Pids().BaudData, true)
	if err != nil {
		return nil, err
	}
	if len(packet.Data)%4 != 0 {
		return nil, wire.NewProtocolError("baud list",
			fmt.Errorf("payload of %d bytes is not a multiple of 4", len(packet.Data)))
	}
	var rates []int
	for off := 0; off < len(packet.Data); off += 4 {
		raw := int(binary.LittleEndian.Uint32(packet.Data[off:]))
		if nominal := DesiredBaudrate(raw); nominal != 0 {
			rates = append(rates, nominal)
		}
	}
	logging.Infof("baud: device supports %v", rates)
	return rates, nil
}

// SetBaudrate negotiates baud and reconfigures the port. The accepted
// rate may differ from the request; the device picks the highest rate it
// supports at or below it. Callers must not interleave other traffic
// between the port switch and the confirming pings.
func (p *Transmission) SetBaudrate(ctx context.Context, baud int) (int, error) {
	pids := p.Link.Pids()
	if err := p.Link.SendPacket(ctx, pids.EnableAsyncEvents, []byte{0x00, 0x00}, true); err != nil {
		return 0, err
	}
	req := make([]byte, 4)
	binary.LittleEndian.PutUint32(req, uint32(baud))
	if err := p.Link.SendPacket(ctx, pids.BaudRqstData, req, true); err != nil {
		return 0, err
	}
	packet, err := p.Link.ExpectPacket(ctx, pids.BaudAcptData, true)
	if err != nil {
		return 0, err
	}
	if len(packet.Data) < 4 {
		return 0, wire.NewProtocolError("baud accept",
			fmt.Errorf("payload is %d bytes, need 4", len(packet.Data)))
	}
	accepted := int(binary.LittleEndian.Uint32(packet.Data))
	nominal := DesiredBaudrate(accepted)
	if nominal == 0 {
		return 0, wire.NewProtocolError("baud accept",
			fmt.Errorf("accepted rate %d is outside tolerance of every nominal rate", accepted))
	}
	logging.Infof("baud: accepted %d, switching port to %d", accepted, nominal)
	if err := p.Phys.SetBaudRate(nominal); err != nil {
		return 0, wire.NewLinkError("set baud rate", err)
	}
	// Two pings within two seconds of the switch, or the device reverts
	// to 9600.
	if err := p.SendCommand(ctx, p.Cmds.AckPing); err != nil {
		return 0, err
	}
	if err := p.SendCommand(ctx, p.Cmds.AckPing); err != nil {
		return 0, err
	}
	return nominal, nil
}
