// internal/datatype/track.go
//
// Track point and track header datatypes (A300/A301's D0/D1 slots):
// D300/D301/D310/D311.
package datatype

import "github.com/guiperry/garminlink/internal/schema"

var d300Schema = mustSchema("D300",
	schema.FieldSpec{Name: "posn", Format: "(ii)"},
	schema.FieldSpec{Name: "time", Format: "I"},
	schema.FieldSpec{Name: "new_trk", Format: "?"},
)

// D300 is the bare track point: position, timestamp, and a "starts a new
// segment" flag.
type D300 struct {
	Posn   Position
	Time   uint32
	NewTrk bool
}

// IsValidTime: some devices use
// 0x7FFFFFFF in addition to the documented 0xFFFFFFFF sentinel, and a
// value of exactly 0 means "not recorded by the device itself."
func (d D300) IsValidTime() bool {
	return d.Time != 0 && d.Time != 0xFFFFFFFF && d.Time != 0x7FFFFFFF
}

func DecodeD300(data []byte) (D300, error) {
	rec, err := schema.Unpack(d300Schema, data)
	if err != nil {
		return D300{}, err
	}
	return D300{
		Posn:   positionOf(rec.MustGet("posn")),
		Time:   rec.MustGet("time").(uint32),
		NewTrk: rec.MustGet("new_trk").(bool),
	}, nil
}

func (d D300) Pack() ([]byte, error) {
	return schema.Pack(record(d300Schema, positionValue(d.Posn), d.Time, d.NewTrk))
}

var d301Schema = mustSchema("D301",
	schema.FieldSpec{Name: "posn", Format: "(ii)"},
	schema.FieldSpec{Name: "time", Format: "I"},
	schema.FieldSpec{Name: "alt", Format: "f"},
	schema.FieldSpec{Name: "dpth", Format: "f"},
	schema.FieldSpec{Name: "new_trk", Format: "?"},
)

// D301 adds altitude and depth over D300.
type D301 struct {
	Posn   Position
	Time   uint32
	Alt    float32
	Dpth   float32
	NewTrk bool
}

func DecodeD301(data []byte) (D301, error) {
	rec, err := schema.Unpack(d301Schema, data)
	if err != nil {
		return D301{}, err
	}
	return D301{
		Posn:   positionOf(rec.MustGet("posn")),
		Time:   rec.MustGet("time").(uint32),
		Alt:    rec.MustGet("alt").(float32),
		Dpth:   rec.MustGet("dpth").(float32),
		NewTrk: rec.MustGet("new_trk").(bool),
	}, nil
}

func (d D301) Pack() ([]byte, error) {
	return schema.Pack(record(d301Schema, positionValue(d.Posn), d.Time, d.Alt, d.Dpth, d.NewTrk))
}

var d310Schema = mustSchema("D310",
	schema.FieldSpec{Name: "dspl", Format: "?"},
	schema.FieldSpec{Name: "color", Format: "B"},
	schema.FieldSpec{Name: "trk_ident", Format: "n"},
)

// D310 is a track header identifying the segment that follows.
type D310 struct {
	Dspl     bool
	Color    uint8
	TrkIdent string
}

func DecodeD310(data []byte) (D310, error) {
	rec, err := schema.Unpack(d310Schema, data)
	if err != nil {
		return D310{}, err
	}
	return D310{
		Dspl:     rec.MustGet("dspl").(bool),
		Color:    rec.MustGet("color").(uint8),
		TrkIdent: rec.MustGet("trk_ident").(string),
	}, nil
}

func (d D310) Pack() ([]byte, error) {
	return schema.Pack(record(d310Schema, d.Dspl, d.Color, d.TrkIdent))
}

var d311Schema = mustSchema("D311",
	schema.FieldSpec{Name: "index", Format: "H"},
)

// D311 is a bare track-segment index, used by devices that identify
// tracks numerically rather than by name.
type D311 struct{ Index uint16 }

func DecodeD311(data []byte) (D311, error) {
	rec, err := schema.Unpack(d311Schema, data)
	if err != nil {
		return D311{}, err
	}
	return D311{Index: rec.MustGet("index").(uint16)}, nil
}

func (d D311) Pack() ([]byte, error) { return schema.Pack(record(d311Schema, d.Index)) }
