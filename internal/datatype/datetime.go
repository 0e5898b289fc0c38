// internal/datatype/datetime.go
//
// D600, the A600 date/time datatype: broken-out
// calendar fields rather than a Garmin epoch offset, since this is the
// protocol the device uses to learn wall-clock time in the first place.
package datatype

import (
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

var d600Schema = mustSchema("D600",
	schema.FieldSpec{Name: "month", Format: "B"},
	schema.FieldSpec{Name: "day", Format: "B"},
	schema.FieldSpec{Name: "year", Format: "H"},
	schema.FieldSpec{Name: "hour", Format: "H"},
	schema.FieldSpec{Name: "minute", Format: "B"},
	schema.FieldSpec{Name: "second", Format: "B"},
)

// D600 is the device's broken-out calendar date/time.
type D600 struct {
	Month, Day   uint8
	Year, Hour   uint16
	Minute, Second uint8
}

func DecodeD600(data []byte) (D600, error) {
	rec, err := schema.Unpack(d600Schema, data)
	if err != nil {
		return D600{}, err
	}
	return D600{
		Month:  rec.MustGet("month").(uint8),
		Day:    rec.MustGet("day").(uint8),
		Year:   rec.MustGet("year").(uint16),
		Hour:   rec.MustGet("hour").(uint16),
		Minute: rec.MustGet("minute").(uint8),
		Second: rec.MustGet("second").(uint8),
	}, nil
}

func (d D600) Pack() ([]byte, error) {
	return schema.Pack(record(d600Schema, d.Month, d.Day, d.Year, d.Hour, d.Minute, d.Second))
}

// Time converts the broken-out fields to a UTC time.Time.
func (d D600) Time() time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), int(d.Hour), int(d.Minute), int(d.Second), 0, time.UTC)
}

// NewD600 builds a D600 from a UTC time.Time, the inverse of Time.
func NewD600(t time.Time) D600 {
	t = t.UTC()
	return D600{
		Month:  uint8(t.Month()),
		Day:    uint8(t.Day()),
		Year:   uint16(t.Year()),
		Hour:   uint16(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
	}
}
