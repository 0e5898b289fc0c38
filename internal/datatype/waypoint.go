// internal/datatype/waypoint.go
//
// Waypoint datatypes (A100's D0 slot) and waypoint category datatypes
// (A101's D0 slot). Byte-exact field lists per the D100/D103/D109/D110/
// D120 sections of Garmin's Device Interface Specification. This catalog
// covers four waypoint records (D100/D103/D109/D110) plus the one
// waypoint-category record (D120); the remaining D10x variants
// (D101/D102/D104-D108) and the D15x generation are not implemented,
// although some fallback.go rows name D101, D102 and D150-D152 — those
// datatypes have no schema here — see DESIGN.md.
package datatype

import (
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

var d100Schema = mustSchema("D100",
	schema.FieldSpec{Name: "ident", Format: "6s"},
	schema.FieldSpec{Name: "posn", Format: "(ii)"},
	schema.FieldSpec{Name: "unused", Format: "I"},
	schema.FieldSpec{Name: "cmnt", Format: "40s"},
)

// D100 is the original waypoint datatype: identifier, position, and a
// free-text comment.
type D100 struct {
	Ident string
	Posn  Position
	Cmnt  string
}

func DecodeD100(data []byte) (D100, error) {
	rec, err := schema.Unpack(d100Schema, data)
	if err != nil {
		return D100{}, err
	}
	return D100{
		Ident: rec.MustGet("ident").(string),
		Posn:  positionOf(rec.MustGet("posn")),
		Cmnt:  rec.MustGet("cmnt").(string),
	}, nil
}

func (d D100) Pack() ([]byte, error) {
	return schema.Pack(record(d100Schema, d.Ident, positionValue(d.Posn), uint32(0), d.Cmnt))
}

var d103Schema = mustSchema("D103",
	schema.FieldSpec{Name: "ident", Format: "6s"},
	schema.FieldSpec{Name: "posn", Format: "(ii)"},
	schema.FieldSpec{Name: "unused", Format: "I"},
	schema.FieldSpec{Name: "cmnt", Format: "40s"},
	schema.FieldSpec{Name: "smbl", Format: "B"},
	schema.FieldSpec{Name: "dspl", Format: "B"},
)

// D103 adds a symbol id and a display option over D100.
type D103 struct {
	Ident string
	Posn  Position
	Cmnt  string
	Smbl  uint8
	Dspl  uint8
}

func DecodeD103(data []byte) (D103, error) {
	rec, err := schema.Unpack(d103Schema, data)
	if err != nil {
		return D103{}, err
	}
	return D103{
		Ident: rec.MustGet("ident").(string),
		Posn:  positionOf(rec.MustGet("posn")),
		Cmnt:  rec.MustGet("cmnt").(string),
		Smbl:  rec.MustGet("smbl").(uint8),
		Dspl:  rec.MustGet("dspl").(uint8),
	}, nil
}

func (d D103) Pack() ([]byte, error) {
	return schema.Pack(record(d103Schema, d.Ident, positionValue(d.Posn), uint32(0), d.Cmnt, d.Smbl, d.Dspl))
}

var d109Schema = mustSchema("D109",
	schema.FieldSpec{Name: "dtyp", Format: "B"},
	schema.FieldSpec{Name: "wpt_class", Format: "B"},
	schema.FieldSpec{Name: "dspl_color", Format: "B"},
	schema.FieldSpec{Name: "attr", Format: "B"},
	schema.FieldSpec{Name: "smbl", Format: "H"},
	schema.FieldSpec{Name: "subclass", Format: "18s"},
	schema.FieldSpec{Name: "posn", Format: "(ii)"},
	schema.FieldSpec{Name: "alt", Format: "f"},
	schema.FieldSpec{Name: "dpth", Format: "f"},
	schema.FieldSpec{Name: "dist", Format: "f"},
	schema.FieldSpec{Name: "state", Format: "2s"},
	schema.FieldSpec{Name: "cc", Format: "2s"},
	schema.FieldSpec{Name: "ete", Format: "I"},
	schema.FieldSpec{Name: "ident", Format: "n"},
	schema.FieldSpec{Name: "cmnt", Format: "n"},
	schema.FieldSpec{Name: "facility", Format: "n"},
	schema.FieldSpec{Name: "city", Format: "n"},
	schema.FieldSpec{Name: "addr", Format: "n"},
	schema.FieldSpec{Name: "cross_road", Format: "n"},
)

// D109 is the variable-length waypoint generation used by mapping
// handhelds: a packed display/color byte, an altitude/depth/proximity
// triple, and a run of trailing NUL-terminated strings.
type D109 struct {
	Dtyp       uint8
	WptClass   uint8
	DsplColor  uint8
	Attr       uint8
	Smbl       uint16
	Subclass   string
	Posn       Position
	Alt        float32
	Dpth       float32
	Dist       float32
	State      string
	CC         string
	ETE        uint32
	Ident      string
	Cmnt       string
	Facility   string
	City       string
	Addr       string
	CrossRoad  string
}

var d103DsplNames = map[uint8]string{
	0: "dspl_smbl_name",
	1: "dspl_smbl_none",
	2: "dspl_smbl_cmnt",
}

// DsplName returns the documented display option name; invalid values
// read as dspl_smbl_name. D103's numbering differs from the packed
// dspl_color encoding D109 introduced.
func (d D103) DsplName() string {
	if name, ok := d103DsplNames[d.Dspl]; ok {
		return name
	}
	return "dspl_smbl_name"
}

var wptClassNames = map[uint8]string{
	0:   "user_wpt",
	64:  "avtn_apt_wpt",
	65:  "avtn_int_wpt",
	66:  "avtn_ndb_wpt",
	67:  "avtn_vor_wpt",
	68:  "avtn_arwy_wpt",
	69:  "avtn_aint_wpt",
	70:  "avtn_andb_wpt",
	128: "map_pnt_wpt",
	129: "map_area_wpt",
	130: "map_int_wpt",
	131: "map_adrs_wpt",
	132: "map_line_wpt",
}

// WptClassName returns the documented waypoint class name; invalid
// values read as user_wpt.
func (d D109) WptClassName() string {
	if name, ok := wptClassNames[d.WptClass]; ok {
		return name
	}
	return "user_wpt"
}

var colorNames = map[uint8]string{
	0:  "clr_black",
	1:  "clr_dark_red",
	2:  "clr_dark_green",
	3:  "clr_dark_yellow",
	4:  "clr_dark_blue",
	5:  "clr_dark_magenta",
	6:  "clr_dark_cyan",
	7:  "clr_light_gray",
	8:  "clr_dark_gray",
	9:  "clr_red",
	10: "clr_green",
	11: "clr_yellow",
	12: "clr_blue",
	13: "clr_magenta",
	14: "clr_cyan",
	15: "clr_white",
}

var dsplNames = map[uint8]string{
	0: "dspl_smbl_name",
	1: "dspl_smbl_only",
	2: "dspl_smbl_comment",
}

// Color extracts bits 0-4 of the packed dspl_color byte. Bits 5-6 are
// the display attribute and bit 7 must be 0.
func (d D109) Color() uint8 { return d.DsplColor & 0x1F }

// Dspl extracts the display attribute, bits 5-6 of dspl_color.
func (d D109) Dspl() uint8 { return d.DsplColor >> 5 & 0x03 }

// ColorName returns the documented color name; 31 and invalid values
// read as the default color.
func (d D109) ColorName() string {
	if name, ok := colorNames[d.Color()]; ok {
		return name
	}
	return "clr_default_color"
}

// DsplName returns the documented display attribute name.
func (d D109) DsplName() string {
	if name, ok := dsplNames[d.Dspl()]; ok {
		return name
	}
	return "dspl_smbl_none"
}

func DecodeD109(data []byte) (D109, error) {
	rec, err := schema.Unpack(d109Schema, data)
	if err != nil {
		return D109{}, err
	}
	return D109{
		Dtyp:      rec.MustGet("dtyp").(uint8),
		WptClass:  rec.MustGet("wpt_class").(uint8),
		DsplColor: rec.MustGet("dspl_color").(uint8),
		Attr:      rec.MustGet("attr").(uint8),
		Smbl:      rec.MustGet("smbl").(uint16),
		Subclass:  rec.MustGet("subclass").(string),
		Posn:      positionOf(rec.MustGet("posn")),
		Alt:       rec.MustGet("alt").(float32),
		Dpth:      rec.MustGet("dpth").(float32),
		Dist:      rec.MustGet("dist").(float32),
		State:     rec.MustGet("state").(string),
		CC:        rec.MustGet("cc").(string),
		ETE:       rec.MustGet("ete").(uint32),
		Ident:     rec.MustGet("ident").(string),
		Cmnt:      rec.MustGet("cmnt").(string),
		Facility:  rec.MustGet("facility").(string),
		City:      rec.MustGet("city").(string),
		Addr:      rec.MustGet("addr").(string),
		CrossRoad: rec.MustGet("cross_road").(string),
	}, nil
}

// IsValidETE reports whether the outbound-link ETE field carries a
// value, vs. the 0xFFFFFFFF "no route link" default.
func (d D109) IsValidETE() bool { return d.ETE != TimeUnknown }

func (d D109) Pack() ([]byte, error) {
	return schema.Pack(record(d109Schema, d.Dtyp, d.WptClass, d.DsplColor, d.Attr, d.Smbl, d.Subclass,
		positionValue(d.Posn), d.Alt, d.Dpth, d.Dist, d.State, d.CC, d.ETE,
		d.Ident, d.Cmnt, d.Facility, d.City, d.Addr, d.CrossRoad))
}

var d110Schema = mustSchema("D110",
	schema.FieldSpec{Name: "dtyp", Format: "B"},
	schema.FieldSpec{Name: "wpt_class", Format: "B"},
	schema.FieldSpec{Name: "dspl_color", Format: "B"},
	schema.FieldSpec{Name: "attr", Format: "B"},
	schema.FieldSpec{Name: "smbl", Format: "H"},
	schema.FieldSpec{Name: "subclass", Format: "18s"},
	schema.FieldSpec{Name: "posn", Format: "(ii)"},
	schema.FieldSpec{Name: "alt", Format: "f"},
	schema.FieldSpec{Name: "dpth", Format: "f"},
	schema.FieldSpec{Name: "dist", Format: "f"},
	schema.FieldSpec{Name: "state", Format: "2s"},
	schema.FieldSpec{Name: "cc", Format: "2s"},
	schema.FieldSpec{Name: "ete", Format: "I"},
	schema.FieldSpec{Name: "temp", Format: "f"},
	schema.FieldSpec{Name: "time", Format: "I"},
	schema.FieldSpec{Name: "wpt_cat", Format: "H"},
	schema.FieldSpec{Name: "ident", Format: "n"},
	schema.FieldSpec{Name: "cmnt", Format: "n"},
	schema.FieldSpec{Name: "facility", Format: "n"},
	schema.FieldSpec{Name: "city", Format: "n"},
	schema.FieldSpec{Name: "addr", Format: "n"},
	schema.FieldSpec{Name: "cross_road", Format: "n"},
)

// D110 adds a temperature, a creation timestamp, and a category bitmask
// over D109.
type D110 struct {
	D109
	Temp   float32
	Time   uint32
	WptCat uint16
}

func DecodeD110(data []byte) (D110, error) {
	rec, err := schema.Unpack(d110Schema, data)
	if err != nil {
		return D110{}, err
	}
	return D110{
		D109: D109{
			Dtyp:      rec.MustGet("dtyp").(uint8),
			WptClass:  rec.MustGet("wpt_class").(uint8),
			DsplColor: rec.MustGet("dspl_color").(uint8),
			Attr:      rec.MustGet("attr").(uint8),
			Smbl:      rec.MustGet("smbl").(uint16),
			Subclass:  rec.MustGet("subclass").(string),
			Posn:      positionOf(rec.MustGet("posn")),
			Alt:       rec.MustGet("alt").(float32),
			Dpth:      rec.MustGet("dpth").(float32),
			Dist:      rec.MustGet("dist").(float32),
			State:     rec.MustGet("state").(string),
			CC:        rec.MustGet("cc").(string),
			ETE:       rec.MustGet("ete").(uint32),
			Ident:     rec.MustGet("ident").(string),
			Cmnt:      rec.MustGet("cmnt").(string),
			Facility:  rec.MustGet("facility").(string),
			City:      rec.MustGet("city").(string),
			Addr:      rec.MustGet("addr").(string),
			CrossRoad: rec.MustGet("cross_road").(string),
		},
		Temp:   rec.MustGet("temp").(float32),
		Time:   rec.MustGet("time").(uint32),
		WptCat: rec.MustGet("wpt_cat").(uint16),
	}, nil
}

// CreatedAt reports the waypoint's creation time, ok=false if unset.
func (d D110) CreatedAt() (time.Time, bool) {
	return DecodeTime(d.Time)
}

// ColorName overrides D109's mapping: D110 names 16 clr_transparent and
// reads invalid values as black.
func (d D110) ColorName() string {
	if d.Color() == 16 {
		return "clr_transparent"
	}
	if name, ok := colorNames[d.Color()]; ok {
		return name
	}
	return "clr_black"
}

func (d D110) Pack() ([]byte, error) {
	return schema.Pack(record(d110Schema, d.Dtyp, d.WptClass, d.DsplColor, d.Attr, d.Smbl, d.Subclass,
		positionValue(d.Posn), d.Alt, d.Dpth, d.Dist, d.State, d.CC, d.ETE,
		d.Temp, d.Time, d.WptCat, d.Ident, d.Cmnt, d.Facility, d.City, d.Addr, d.CrossRoad))
}

var d120Schema = mustSchema("D120",
	schema.FieldSpec{Name: "name", Format: "17s"},
)

// D120 is a waypoint category name (A101's D0 slot).
type D120 struct {
	Name string
}

func DecodeD120(data []byte) (D120, error) {
	rec, err := schema.Unpack(d120Schema, data)
	if err != nil {
		return D120{}, err
	}
	return D120{Name: rec.MustGet("name").(string)}, nil
}

func (d D120) Pack() ([]byte, error) {
	return schema.Pack(record(d120Schema, d.Name))
}
