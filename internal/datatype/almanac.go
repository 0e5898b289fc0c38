// internal/datatype/almanac.go
//
// GPS almanac datatypes (A500's D0 slot): the classic 11-field Keplerian
// orbital element set, optionally with a
// trailing satellite-health byte.
package datatype

import "github.com/guiperry/garminlink/internal/schema"

var d500Schema = mustSchema("D500",
	schema.FieldSpec{Name: "wn", Format: "H"},
	schema.FieldSpec{Name: "toa", Format: "f"},
	schema.FieldSpec{Name: "af0", Format: "f"},
	schema.FieldSpec{Name: "af1", Format: "f"},
	schema.FieldSpec{Name: "e", Format: "f"},
	schema.FieldSpec{Name: "sqrta", Format: "f"},
	schema.FieldSpec{Name: "m0", Format: "f"},
	schema.FieldSpec{Name: "w", Format: "f"},
	schema.FieldSpec{Name: "omg0", Format: "f"},
	schema.FieldSpec{Name: "odot", Format: "f"},
	schema.FieldSpec{Name: "i", Format: "f"},
)

// D500 is one satellite's almanac entry.
type D500 struct {
	Wn    uint16
	Toa   float32
	Af0   float32
	Af1   float32
	E     float32
	Sqrta float32
	M0    float32
	W     float32
	Omg0  float32
	Odot  float32
	I     float32
}

func DecodeD500(data []byte) (D500, error) {
	rec, err := schema.Unpack(d500Schema, data)
	if err != nil {
		return D500{}, err
	}
	return D500{
		Wn:    rec.MustGet("wn").(uint16),
		Toa:   rec.MustGet("toa").(float32),
		Af0:   rec.MustGet("af0").(float32),
		Af1:   rec.MustGet("af1").(float32),
		E:     rec.MustGet("e").(float32),
		Sqrta: rec.MustGet("sqrta").(float32),
		M0:    rec.MustGet("m0").(float32),
		W:     rec.MustGet("w").(float32),
		Omg0:  rec.MustGet("omg0").(float32),
		Odot:  rec.MustGet("odot").(float32),
		I:     rec.MustGet("i").(float32),
	}, nil
}

func (d D500) Pack() ([]byte, error) {
	return schema.Pack(record(d500Schema, d.Wn, d.Toa, d.Af0, d.Af1, d.E, d.Sqrta, d.M0, d.W, d.Omg0, d.Odot, d.I))
}

var d501Schema = mustSchema("D501",
	schema.FieldSpec{Name: "wn", Format: "H"},
	schema.FieldSpec{Name: "toa", Format: "f"},
	schema.FieldSpec{Name: "af0", Format: "f"},
	schema.FieldSpec{Name: "af1", Format: "f"},
	schema.FieldSpec{Name: "e", Format: "f"},
	schema.FieldSpec{Name: "sqrta", Format: "f"},
	schema.FieldSpec{Name: "m0", Format: "f"},
	schema.FieldSpec{Name: "w", Format: "f"},
	schema.FieldSpec{Name: "omg0", Format: "f"},
	schema.FieldSpec{Name: "odot", Format: "f"},
	schema.FieldSpec{Name: "i", Format: "f"},
	schema.FieldSpec{Name: "hlth", Format: "B"},
)

// D501 is D500 plus a satellite health byte.
type D501 struct {
	D500
	Hlth uint8
}

func DecodeD501(data []byte) (D501, error) {
	rec, err := schema.Unpack(d501Schema, data)
	if err != nil {
		return D501{}, err
	}
	return D501{
		D500: D500{
			Wn:    rec.MustGet("wn").(uint16),
			Toa:   rec.MustGet("toa").(float32),
			Af0:   rec.MustGet("af0").(float32),
			Af1:   rec.MustGet("af1").(float32),
			E:     rec.MustGet("e").(float32),
			Sqrta: rec.MustGet("sqrta").(float32),
			M0:    rec.MustGet("m0").(float32),
			W:     rec.MustGet("w").(float32),
			Omg0:  rec.MustGet("omg0").(float32),
			Odot:  rec.MustGet("odot").(float32),
			I:     rec.MustGet("i").(float32),
		},
		Hlth: rec.MustGet("hlth").(uint8),
	}, nil
}

func (d D501) Pack() ([]byte, error) {
	return schema.Pack(record(d501Schema, d.Wn, d.Toa, d.Af0, d.Af1, d.E, d.Sqrta, d.M0, d.W, d.Omg0, d.Odot, d.I, d.Hlth))
}
