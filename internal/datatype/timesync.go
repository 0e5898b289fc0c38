// internal/datatype/timesync.go
//
// D1051, the A1051 external time sync datatype: gives the device a
// timezone- and DST-aware reference for its internal clock (D1051).
package datatype

import (
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

var d1051Schema = mustSchema("D1051",
	schema.FieldSpec{Name: "current_utc", Format: "I"},
	schema.FieldSpec{Name: "timezone_offset", Format: "i"},
	schema.FieldSpec{Name: "is_dst_info_included", Format: "?"},
	schema.FieldSpec{Name: "dst_adjustment", Format: "B"},
	schema.FieldSpec{Name: "dst_start", Format: "I"},
	schema.FieldSpec{Name: "dst_end", Format: "I"},
)

// D1051 carries UTC time plus the local timezone/DST context the device
// needs to display local time (A1051).
type D1051 struct {
	CurrentUTC        uint32
	TimezoneOffset    int32 // seconds east of UTC
	IsDSTInfoIncluded bool
	DSTAdjustment     uint8 // 15-minute increments
	DSTStart, DSTEnd  uint32
}

// CurrentTime returns the synced UTC instant with the local offset applied.
func (d D1051) CurrentTime() (time.Time, bool) {
	t, ok := DecodeTime(d.CurrentUTC)
	if !ok {
		return time.Time{}, false
	}
	loc := time.FixedZone("", int(d.TimezoneOffset))
	return t.In(loc), true
}

// DST returns the daylight-saving adjustment as a duration, when the
// current UTC time falls within the reported DST window.
func (d D1051) DST() time.Duration {
	if !d.IsDSTInfoIncluded {
		return 0
	}
	if d.CurrentUTC <= d.DSTStart || d.CurrentUTC >= d.DSTEnd {
		return 0
	}
	return time.Duration(d.DSTAdjustment) * 15 * time.Minute
}

func DecodeD1051(data []byte) (D1051, error) {
	rec, err := schema.Unpack(d1051Schema, data)
	if err != nil {
		return D1051{}, err
	}
	return D1051{
		CurrentUTC:        rec.MustGet("current_utc").(uint32),
		TimezoneOffset:    rec.MustGet("timezone_offset").(int32),
		IsDSTInfoIncluded: rec.MustGet("is_dst_info_included").(bool),
		DSTAdjustment:     rec.MustGet("dst_adjustment").(uint8),
		DSTStart:          rec.MustGet("dst_start").(uint32),
		DSTEnd:            rec.MustGet("dst_end").(uint32),
	}, nil
}

func (d D1051) Pack() ([]byte, error) {
	return schema.Pack(record(d1051Schema, d.CurrentUTC, d.TimezoneOffset, d.IsDSTInfoIncluded,
		d.DSTAdjustment, d.DSTStart, d.DSTEnd))
}
