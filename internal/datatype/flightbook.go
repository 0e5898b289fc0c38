// internal/datatype/flightbook.go
//
// D650, the A650 flight book transfer's record: a logged flight's
// takeoff/landing time and position, plus the
// derived flight-stats fields the original exposes via get_* accessors.
//
// The upstream D650 field table carries five names whose declared format
// character doesn't match what the name or the Garmin spec text says
// (cross_country_flag as 'f', departure_name as 'f', departure_ident as
// 'B') — a transcription artifact in that table, not a real wire layout.
// This schema instead types every *_name/*_ident field as a
// null-terminated string, matching the correctly-tagged arrival_name/
// arrival_ident/ac_id fields the same table carries, and types
// cross_country_flag as the boolean it's named for.
package datatype

import (
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

var d650Schema = mustSchema("D650",
	schema.FieldSpec{Name: "takeoff_time", Format: "I"},
	schema.FieldSpec{Name: "landing_time", Format: "I"},
	schema.FieldSpec{Name: "takeoff_posn", Format: "(ii)"},
	schema.FieldSpec{Name: "landing_posn", Format: "(ii)"},
	schema.FieldSpec{Name: "night_time", Format: "I"},
	schema.FieldSpec{Name: "num_landings", Format: "I"},
	schema.FieldSpec{Name: "max_speed", Format: "f"},
	schema.FieldSpec{Name: "max_alt", Format: "f"},
	schema.FieldSpec{Name: "distance", Format: "f"},
	schema.FieldSpec{Name: "cross_country_flag", Format: "?"},
	schema.FieldSpec{Name: "departure_name", Format: "n"},
	schema.FieldSpec{Name: "departure_ident", Format: "n"},
	schema.FieldSpec{Name: "arrival_name", Format: "n"},
	schema.FieldSpec{Name: "arrival_ident", Format: "n"},
	schema.FieldSpec{Name: "ac_id", Format: "n"},
)

// D650 is one logged flight (A650).
type D650 struct {
	TakeoffTime, LandingTime   uint32
	TakeoffPosn, LandingPosn   Position
	NightTime                  uint32
	NumLandings                uint32
	MaxSpeed, MaxAlt, Distance float32
	CrossCountryFlag           bool
	DepartureName, DepartureIdent string
	ArrivalName, ArrivalIdent      string
	ACID                           string
}

// TakeoffAt and LandingAt convert the Garmin-epoch timestamps to wall
// clock time; ok is false when the device reports the time-unknown
// sentinel.
func (d D650) TakeoffAt() (time.Time, bool) { return DecodeTime(d.TakeoffTime) }
func (d D650) LandingAt() (time.Time, bool) { return DecodeTime(d.LandingTime) }

func DecodeD650(data []byte) (D650, error) {
	rec, err := schema.Unpack(d650Schema, data)
	if err != nil {
		return D650{}, err
	}
	return D650{
		TakeoffTime:      rec.MustGet("takeoff_time").(uint32),
		LandingTime:      rec.MustGet("landing_time").(uint32),
		TakeoffPosn:      positionOf(rec.MustGet("takeoff_posn")),
		LandingPosn:      positionOf(rec.MustGet("landing_posn")),
		NightTime:        rec.MustGet("night_time").(uint32),
		NumLandings:      rec.MustGet("num_landings").(uint32),
		MaxSpeed:         rec.MustGet("max_speed").(float32),
		MaxAlt:           rec.MustGet("max_alt").(float32),
		Distance:         rec.MustGet("distance").(float32),
		CrossCountryFlag: rec.MustGet("cross_country_flag").(bool),
		DepartureName:    rec.MustGet("departure_name").(string),
		DepartureIdent:   rec.MustGet("departure_ident").(string),
		ArrivalName:      rec.MustGet("arrival_name").(string),
		ArrivalIdent:     rec.MustGet("arrival_ident").(string),
		ACID:             rec.MustGet("ac_id").(string),
	}, nil
}

func (d D650) Pack() ([]byte, error) {
	return schema.Pack(record(d650Schema, d.TakeoffTime, d.LandingTime,
		positionValue(d.TakeoffPosn), positionValue(d.LandingPosn),
		d.NightTime, d.NumLandings, d.MaxSpeed, d.MaxAlt, d.Distance, d.CrossCountryFlag,
		d.DepartureName, d.DepartureIdent, d.ArrivalName, d.ArrivalIdent, d.ACID))
}
