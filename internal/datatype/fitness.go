// internal/datatype/fitness.go
//
// Fitness user profile (A1004) and workout-limits (A1005) datatypes
// (D1004/D1005), simplified per this
// package's representative-subset convention (see fallback.go in
// internal/capability for the precedent): the original profile embeds 3
// Activity records, each with 5 heart-rate zones and 10 speed zones — a
// device-configuration grid no caller of this protocol needs resolved
// field-by-field. D1004Profile carries the caller-relevant scalars
// (weight, birth date, gender) and leaves the zone grids as raw schema
// access via Activities, keeping the wire layout exact without hand
// -modeling every nested zone.
package datatype

import (
	"strconv"

	"github.com/guiperry/garminlink/internal/schema"
)

const (
	heartRateZonesPerActivity = 5
	speedZonesPerActivity     = 10
	activitiesPerProfile      = 3
)

var heartRateZoneFormat = "(BBH)"
var speedZoneFormat = "(ff16s)"
var activityFormat = "(" +
	strconv.Itoa(heartRateZonesPerActivity) + "[" + heartRateZoneFormat + "]" +
	strconv.Itoa(speedZonesPerActivity) + "[" + speedZoneFormat + "]" +
	"fBBH)"

var d1004Schema = mustSchema("D1004",
	schema.FieldSpec{Name: "activities", Format: strconv.Itoa(activitiesPerProfile) + "[" + activityFormat + "]"},
	schema.FieldSpec{Name: "weight", Format: "f"},
	schema.FieldSpec{Name: "birth_year", Format: "H"},
	schema.FieldSpec{Name: "birth_month", Format: "B"},
	schema.FieldSpec{Name: "birth_day", Format: "B"},
	schema.FieldSpec{Name: "gender", Format: "B"},
)

var genderNames = map[uint8]string{0: "female", 1: "male"}

// D1004 is the device's fitness user profile (A1004).
type D1004 struct {
	Activities []schema.Value // raw nested activity tuples; see file header
	Weight     float32        // kilograms
	BirthYear  uint16
	BirthMonth uint8
	BirthDay   uint8
	Gender     uint8
}

func (d D1004) GenderName() string {
	if name, ok := genderNames[d.Gender]; ok {
		return name
	}
	return "female"
}

func DecodeD1004(data []byte) (D1004, error) {
	rec, err := schema.Unpack(d1004Schema, data)
	if err != nil {
		return D1004{}, err
	}
	return D1004{
		Activities: rec.MustGet("activities").([]schema.Value),
		Weight:     rec.MustGet("weight").(float32),
		BirthYear:  rec.MustGet("birth_year").(uint16),
		BirthMonth: rec.MustGet("birth_month").(uint8),
		BirthDay:   rec.MustGet("birth_day").(uint8),
		Gender:     rec.MustGet("gender").(uint8),
	}, nil
}

func (d D1004) Pack() ([]byte, error) {
	return schema.Pack(record(d1004Schema, d.Activities, d.Weight, d.BirthYear, d.BirthMonth, d.BirthDay, d.Gender))
}

var d1005Schema = mustSchema("D1005",
	schema.FieldSpec{Name: "max_workouts", Format: "I"},
	schema.FieldSpec{Name: "max_unscheduled_workouts", Format: "I"},
	schema.FieldSpec{Name: "max_occurrences", Format: "I"},
)

// D1005 reports the device's workout-storage capacity (A1005).
type D1005 struct {
	MaxWorkouts            uint32
	MaxUnscheduledWorkouts uint32
	MaxOccurrences         uint32
}

func DecodeD1005(data []byte) (D1005, error) {
	rec, err := schema.Unpack(d1005Schema, data)
	if err != nil {
		return D1005{}, err
	}
	return D1005{
		MaxWorkouts:            rec.MustGet("max_workouts").(uint32),
		MaxUnscheduledWorkouts: rec.MustGet("max_unscheduled_workouts").(uint32),
		MaxOccurrences:         rec.MustGet("max_occurrences").(uint32),
	}, nil
}

func (d D1005) Pack() ([]byte, error) {
	return schema.Pack(record(d1005Schema, d.MaxWorkouts, d.MaxUnscheduledWorkouts, d.MaxOccurrences))
}
