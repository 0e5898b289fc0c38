// internal/datatype/route.go
//
// Route header and route link datatypes (A200/A201's D0/D2 slots):
// D200/D201/D202/D210.
package datatype

import "github.com/guiperry/garminlink/internal/schema"

var d200Schema = mustSchema("D200",
	schema.FieldSpec{Name: "nmbr", Format: "B"},
)

// D200 is the bare route-number header.
type D200 struct{ Nmbr uint8 }

func DecodeD200(data []byte) (D200, error) {
	rec, err := schema.Unpack(d200Schema, data)
	if err != nil {
		return D200{}, err
	}
	return D200{Nmbr: rec.MustGet("nmbr").(uint8)}, nil
}

func (d D200) Pack() ([]byte, error) { return schema.Pack(record(d200Schema, d.Nmbr)) }

var d201Schema = mustSchema("D201",
	schema.FieldSpec{Name: "nmbr", Format: "B"},
	schema.FieldSpec{Name: "cmnt", Format: "20s"},
)

// D201 adds a free-text comment to the route number.
type D201 struct {
	Nmbr uint8
	Cmnt string
}

func DecodeD201(data []byte) (D201, error) {
	rec, err := schema.Unpack(d201Schema, data)
	if err != nil {
		return D201{}, err
	}
	return D201{Nmbr: rec.MustGet("nmbr").(uint8), Cmnt: rec.MustGet("cmnt").(string)}, nil
}

func (d D201) Pack() ([]byte, error) { return schema.Pack(record(d201Schema, d.Nmbr, d.Cmnt)) }

var d202Schema = mustSchema("D202",
	schema.FieldSpec{Name: "ident", Format: "n"},
)

// D202 replaces the numeric route header with a free-form identifier.
type D202 struct{ Ident string }

func DecodeD202(data []byte) (D202, error) {
	rec, err := schema.Unpack(d202Schema, data)
	if err != nil {
		return D202{}, err
	}
	return D202{Ident: rec.MustGet("ident").(string)}, nil
}

func (d D202) Pack() ([]byte, error) { return schema.Pack(record(d202Schema, d.Ident)) }

var d210Schema = mustSchema("D210",
	schema.FieldSpec{Name: "lnk_class", Format: "H"},
	schema.FieldSpec{Name: "subclass", Format: "18s"},
	schema.FieldSpec{Name: "ident", Format: "n"},
)

// D210 is a route link (A201's D2 slot): the connecting segment between
// two consecutive route waypoints.
type D210 struct {
	LnkClass uint16
	Subclass string
	Ident    string
}

var linkClassNames = map[uint16]string{0: "line", 1: "link", 2: "net", 3: "direct", 255: "snap"}

func (d D210) LinkClassName() string {
	if name, ok := linkClassNames[d.LnkClass]; ok {
		return name
	}
	return "line"
}

func DecodeD210(data []byte) (D210, error) {
	rec, err := schema.Unpack(d210Schema, data)
	if err != nil {
		return D210{}, err
	}
	return D210{
		LnkClass: rec.MustGet("lnk_class").(uint16),
		Subclass: rec.MustGet("subclass").(string),
		Ident:    rec.MustGet("ident").(string),
	}, nil
}

func (d D210) Pack() ([]byte, error) {
	return schema.Pack(record(d210Schema, d.LnkClass, d.Subclass, d.Ident))
}
