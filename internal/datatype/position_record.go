// internal/datatype/position_record.go
//
// D700, the A700 position datatype (current position in radians).
package datatype

import "github.com/guiperry/garminlink/internal/schema"

var d700Schema = mustSchema("D700",
	schema.FieldSpec{Name: "lat", Format: "d"},
	schema.FieldSpec{Name: "lon", Format: "d"},
)

// D700 is the device's current position in radians.
type D700 struct {
	Lat, Lon float64
}

func DecodeD700(data []byte) (D700, error) {
	rec, err := schema.Unpack(d700Schema, data)
	if err != nil {
		return D700{}, err
	}
	return D700{Lat: rec.MustGet("lat").(float64), Lon: rec.MustGet("lon").(float64)}, nil
}

func (d D700) Pack() ([]byte, error) { return schema.Pack(record(d700Schema, d.Lat, d.Lon)) }

// Degrees converts the radian position to degrees.
func (d D700) Degrees() (lat, lon float64) {
	return RadianPosition{Lat: d.Lat, Lon: d.Lon}.Degrees()
}
