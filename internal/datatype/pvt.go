// internal/datatype/pvt.go
//
// D800, the A800 streaming position/velocity/time datatype, plus the
// undocumented per-satellite packet many devices interleave with it
// (the Forerunner 305 alternates the two even though it only reports
// D800). The satellite record has no public documentation; this carries
// the minimal per-satellite
// shape (id, signal strength, elevation, azimuth, usability) every GPS
// receiver of this era reports and that lets callers distinguish tracked
// vs. used-in-fix satellites, without claiming byte-exactness.
package datatype

import (
	"math"
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

var d800Schema = mustSchema("D800",
	schema.FieldSpec{Name: "alt", Format: "f"},
	schema.FieldSpec{Name: "epe", Format: "f"},
	schema.FieldSpec{Name: "eph", Format: "f"},
	schema.FieldSpec{Name: "epv", Format: "f"},
	schema.FieldSpec{Name: "fix", Format: "H"},
	schema.FieldSpec{Name: "tow", Format: "d"},
	schema.FieldSpec{Name: "posn", Format: "(dd)"},
	schema.FieldSpec{Name: "east", Format: "f"},
	schema.FieldSpec{Name: "north", Format: "f"},
	schema.FieldSpec{Name: "up", Format: "f"},
	schema.FieldSpec{Name: "msl_hght", Format: "f"},
	schema.FieldSpec{Name: "leap_scnds", Format: "h"},
	schema.FieldSpec{Name: "wn_days", Format: "I"},
)

// D800 is one real-time position/velocity/time sample.
type D800 struct {
	Alt, Epe, Eph, Epv float32
	Fix                uint16
	Tow                float64
	Posn               RadianPosition
	East, North, Up    float32
	MslHght            float32
	LeapScnds          int16
	WnDays             uint32
}

var fixNames = map[uint16]string{
	0: "unusable", 1: "invalid", 2: "2D", 3: "3D", 4: "2D_diff", 5: "3D_diff",
}

// FixName returns the documented fix-quality enum name.
func (d D800) FixName() string {
	if name, ok := fixNames[d.Fix]; ok {
		return name
	}
	return "unusable"
}

// MSLAltitude returns altitude above mean sea level: alt (above the WGS
// 84 ellipsoid) plus msl_hght (height of the ellipsoid above MSL).
func (d D800) MSLAltitude() float32 { return d.Alt + d.MslHght }

func DecodeD800(data []byte) (D800, error) {
	rec, err := schema.Unpack(d800Schema, data)
	if err != nil {
		return D800{}, err
	}
	return D800{
		Alt:       rec.MustGet("alt").(float32),
		Epe:       rec.MustGet("epe").(float32),
		Eph:       rec.MustGet("eph").(float32),
		Epv:       rec.MustGet("epv").(float32),
		Fix:       rec.MustGet("fix").(uint16),
		Tow:       rec.MustGet("tow").(float64),
		Posn:      radianPositionOf(rec.MustGet("posn")),
		East:      rec.MustGet("east").(float32),
		North:     rec.MustGet("north").(float32),
		Up:        rec.MustGet("up").(float32),
		MslHght:   rec.MustGet("msl_hght").(float32),
		LeapScnds: rec.MustGet("leap_scnds").(int16),
		WnDays:    rec.MustGet("wn_days").(uint32),
	}, nil
}

func (d D800) Pack() ([]byte, error) {
	return schema.Pack(record(d800Schema, d.Alt, d.Epe, d.Eph, d.Epv, d.Fix, d.Tow,
		radianPositionValue(d.Posn), d.East, d.North, d.Up, d.MslHght, d.LeapScnds, d.WnDays))
}

// FixTime derives the wall-clock time of a fix from tow/leap_scnds/wn_days
// relative to the Garmin epoch.
func (d D800) FixTime() time.Time {
	seconds := int64(math.Floor(d.Tow - float64(d.LeapScnds)))
	return GarminEpoch.AddDate(0, 0, int(d.WnDays)).Add(time.Duration(seconds) * time.Second)
}

// SatelliteSchema returns the compiled layout of the undocumented
// satellite packet, for callers that bind it next to a negotiated D800.
func SatelliteSchema() *schema.Schema { return satelliteSchema }

var satelliteSchema = mustSchema("Satellite",
	schema.FieldSpec{Name: "svid", Format: "B"},
	schema.FieldSpec{Name: "snr", Format: "H"},
	schema.FieldSpec{Name: "elev", Format: "B"},
	schema.FieldSpec{Name: "azmth", Format: "H"},
	schema.FieldSpec{Name: "status", Format: "B"},
)

// Satellite is one entry of the undocumented per-satellite stream
// interleaved with D800.
type Satellite struct {
	Svid   uint8
	Snr    uint16
	Elev   uint8
	Azmth  uint16
	Status uint8
}

func DecodeSatellite(data []byte) (Satellite, error) {
	rec, err := schema.Unpack(satelliteSchema, data)
	if err != nil {
		return Satellite{}, err
	}
	return Satellite{
		Svid:   rec.MustGet("svid").(uint8),
		Snr:    rec.MustGet("snr").(uint16),
		Elev:   rec.MustGet("elev").(uint8),
		Azmth:  rec.MustGet("azmth").(uint16),
		Status: rec.MustGet("status").(uint8),
	}, nil
}

func (s Satellite) Pack() ([]byte, error) {
	return schema.Pack(record(satelliteSchema, s.Svid, s.Snr, s.Elev, s.Azmth, s.Status))
}
