// internal/datatype/run.go
//
// Run datatypes (A1000 run transfer's top-level D0 slot):
// D1000/D1009/D1010,
// a run record referencing a track and a list of laps by index rather
// than embedding them, matching A1000's chained transfer (run, then its
// laps, then its track).
package datatype

import "github.com/guiperry/garminlink/internal/schema"

var d1000Schema = mustSchema("D1000",
	schema.FieldSpec{Name: "track_index", Format: "H"},
	schema.FieldSpec{Name: "first_lap_index", Format: "H"},
	schema.FieldSpec{Name: "last_lap_index", Format: "H"},
	schema.FieldSpec{Name: "sport_type", Format: "B"},
	schema.FieldSpec{Name: "program_type", Format: "B"},
)

var sportTypeNames = map[uint8]string{0: "running", 1: "biking", 2: "other"}

// SportTypeName returns the sport-type enum name for the given raw value.
func SportTypeName(v uint8) string {
	if name, ok := sportTypeNames[v]; ok {
		return name
	}
	return "other"
}

// D1000 is a run: a reference to a track and an inclusive lap index range.
type D1000 struct {
	TrackIndex    uint16
	FirstLapIndex uint16
	LastLapIndex  uint16
	SportType     uint8
	ProgramType   uint8
}

func (d D1000) SportTypeName() string { return SportTypeName(d.SportType) }

func DecodeD1000(data []byte) (D1000, error) {
	rec, err := schema.Unpack(d1000Schema, data)
	if err != nil {
		return D1000{}, err
	}
	return D1000{
		TrackIndex:    rec.MustGet("track_index").(uint16),
		FirstLapIndex: rec.MustGet("first_lap_index").(uint16),
		LastLapIndex:  rec.MustGet("last_lap_index").(uint16),
		SportType:     rec.MustGet("sport_type").(uint8),
		ProgramType:   rec.MustGet("program_type").(uint8),
	}, nil
}

func (d D1000) Pack() ([]byte, error) {
	return schema.Pack(record(d1000Schema, d.TrackIndex, d.FirstLapIndex, d.LastLapIndex, d.SportType, d.ProgramType))
}

var d1009Schema = mustSchema("D1009",
	schema.FieldSpec{Name: "track_index", Format: "H"},
	schema.FieldSpec{Name: "first_lap_index", Format: "H"},
	schema.FieldSpec{Name: "last_lap_index", Format: "H"},
	schema.FieldSpec{Name: "sport_type", Format: "B"},
	schema.FieldSpec{Name: "program_type", Format: "B"},
	schema.FieldSpec{Name: "multisport", Format: "B"},
	schema.FieldSpec{Name: "unused", Format: "B"},
	schema.FieldSpec{Name: "quick_workout", Format: "(HH)"},
)

// D1009 adds a multisport flag and a quick-workout reference over D1000.
type D1009 struct {
	D1000
	Multisport      uint8
	QuickWorkoutID  uint16
	QuickWorkoutRep uint16
}

var multisportNames = map[uint8]string{
	0: "no",
	1: "yes",
	2: "yesAndLastInGroup",
}

// MultisportName returns the documented multisport flag name: whether
// the run stands alone, belongs to a multisport session, or closes one.
func (d D1009) MultisportName() string {
	if name, ok := multisportNames[d.Multisport]; ok {
		return name
	}
	return "no"
}

func DecodeD1009(data []byte) (D1009, error) {
	rec, err := schema.Unpack(d1009Schema, data)
	if err != nil {
		return D1009{}, err
	}
	qw := rec.MustGet("quick_workout").([]schema.Value)
	return D1009{
		D1000: D1000{
			TrackIndex:    rec.MustGet("track_index").(uint16),
			FirstLapIndex: rec.MustGet("first_lap_index").(uint16),
			LastLapIndex:  rec.MustGet("last_lap_index").(uint16),
			SportType:     rec.MustGet("sport_type").(uint8),
			ProgramType:   rec.MustGet("program_type").(uint8),
		},
		Multisport:      rec.MustGet("multisport").(uint8),
		QuickWorkoutID:  qw[0].(uint16),
		QuickWorkoutRep: qw[1].(uint16),
	}, nil
}

func (d D1009) Pack() ([]byte, error) {
	return schema.Pack(record(d1009Schema, d.TrackIndex, d.FirstLapIndex, d.LastLapIndex, d.SportType, d.ProgramType,
		d.Multisport, uint8(0), []schema.Value{d.QuickWorkoutID, d.QuickWorkoutRep}))
}

var d1010Schema = mustSchema("D1010",
	schema.FieldSpec{Name: "track_index", Format: "H"},
	schema.FieldSpec{Name: "first_lap_index", Format: "H"},
	schema.FieldSpec{Name: "last_lap_index", Format: "H"},
	schema.FieldSpec{Name: "sport_type", Format: "B"},
	schema.FieldSpec{Name: "program_type", Format: "B"},
	schema.FieldSpec{Name: "multisport", Format: "B"},
	schema.FieldSpec{Name: "unused", Format: "B"},
	schema.FieldSpec{Name: "quick_workout", Format: "(HH)"},
)

// D1010 is D1009 unchanged on the wire; the generation bump
// tracks a protocol version only. It is kept as a distinct Go type rather
// than aliased; the datatype catalog resolves tag 1010 to the D1009 schema.
type D1010 struct {
	D1009
}

func DecodeD1010(data []byte) (D1010, error) {
	inner, err := DecodeD1009(data)
	if err != nil {
		return D1010{}, err
	}
	return D1010{D1009: inner}, nil
}

func (d D1010) Pack() ([]byte, error) { return d.D1009.Pack() }
