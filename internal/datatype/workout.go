// internal/datatype/workout.go
//
// Workout datatypes (A1002 custom workout transfer, A1003 workout
// occurrences): D1002/D1003. Workout.Steps is
// the schema's "20[...]" fixed-count array alphabet element; its nested
// tuple elements decode positionally (schema.Unpack has no field names
// inside a nested composite), the same convention positionOf/
// radianPositionOf in common.go use for the "(ii)"/"(dd)" position pairs.
package datatype

import "github.com/guiperry/garminlink/internal/schema"

const MaxWorkoutSteps = 20

const stepFormat = "(16sffHBBBBH)"

var workoutSchema = mustSchema("Workout",
	schema.FieldSpec{Name: "num_valid_steps", Format: "I"},
	schema.FieldSpec{Name: "steps", Format: "20[" + stepFormat + "]"},
	schema.FieldSpec{Name: "name", Format: "16s"},
	schema.FieldSpec{Name: "sport_type", Format: "B"},
)

var durationTypeNames = map[uint8]string{
	0: "time", 1: "distance", 2: "heart_rate_less_than", 3: "heart_rate_greater_than",
	4: "calories_burned", 5: "open", 6: "repeat",
}

var targetTypeNames = map[uint8]string{0: "speed", 1: "heart_rate", 2: "open", 3: "cadence"}

// Step is one entry of a custom workout's step list.
type Step struct {
	CustomName           string
	TargetCustomZoneLow  float32
	TargetCustomZoneHigh float32
	DurationValue        uint16
	Intensity            uint8
	DurationType         uint8
	TargetType           uint8
	TargetValue          uint8
}

func (s Step) IntensityName() string { return intensityName(s.Intensity) }

func (s Step) DurationTypeName() string {
	if name, ok := durationTypeNames[s.DurationType]; ok {
		return name
	}
	return "open"
}

func (s Step) TargetTypeName() string {
	if name, ok := targetTypeNames[s.TargetType]; ok {
		return name
	}
	return "open"
}

// decodeStep reads a "(16sffHBBBBH)" nested tuple, already decoded into
// its positional []schema.Value form.
func decodeStep(v schema.Value) Step {
	f := v.([]schema.Value)
	return Step{
		CustomName:           f[0].(string),
		TargetCustomZoneLow:  f[1].(float32),
		TargetCustomZoneHigh: f[2].(float32),
		DurationValue:        f[3].(uint16),
		Intensity:            f[4].(uint8),
		DurationType:         f[5].(uint8),
		TargetType:           f[6].(uint8),
		TargetValue:          f[7].(uint8),
	}
}

func (s Step) value() schema.Value {
	return []schema.Value{
		s.CustomName, s.TargetCustomZoneLow, s.TargetCustomZoneHigh,
		s.DurationValue, s.Intensity, s.DurationType, s.TargetType, s.TargetValue, uint16(0),
	}
}

// Workout is a named sequence of up to MaxWorkoutSteps steps (A1002).
type Workout struct {
	NumValidSteps uint32
	Steps         []Step
	Name          string
	SportType     uint8
}

func (w Workout) SportTypeName() string { return SportTypeName(w.SportType) }

func decodeWorkout(rec *schema.Record) Workout {
	raw := rec.MustGet("steps").([]schema.Value)
	steps := make([]Step, len(raw))
	for i, v := range raw {
		steps[i] = decodeStep(v)
	}
	return Workout{
		NumValidSteps: rec.MustGet("num_valid_steps").(uint32),
		Steps:         steps,
		Name:          rec.MustGet("name").(string),
		SportType:     rec.MustGet("sport_type").(uint8),
	}
}

func (w Workout) values() []schema.Value {
	steps := make([]schema.Value, MaxWorkoutSteps)
	for i := range steps {
		if i < len(w.Steps) {
			steps[i] = w.Steps[i].value()
		} else {
			steps[i] = Step{}.value()
		}
	}
	return []schema.Value{w.NumValidSteps, steps, w.Name, w.SportType}
}

// D1002 is a custom workout (A1002's record).
type D1002 struct {
	Workout
}

func DecodeD1002(data []byte) (D1002, error) {
	rec, err := schema.Unpack(workoutSchema, data)
	if err != nil {
		return D1002{}, err
	}
	return D1002{Workout: decodeWorkout(rec)}, nil
}

func (d D1002) Pack() ([]byte, error) {
	return schema.Pack(record(workoutSchema, d.Workout.values()...))
}

var d1003Schema = mustSchema("D1003",
	schema.FieldSpec{Name: "workout_name", Format: "16s"},
	schema.FieldSpec{Name: "day", Format: "I"},
)

// D1003 is a workout occurrence: a workout name scheduled for a given day
// (A1003; day is a Garmin-epoch day count, not a timestamp).
type D1003 struct {
	WorkoutName string
	Day         uint32
}

func DecodeD1003(data []byte) (D1003, error) {
	rec, err := schema.Unpack(d1003Schema, data)
	if err != nil {
		return D1003{}, err
	}
	return D1003{
		WorkoutName: rec.MustGet("workout_name").(string),
		Day:         rec.MustGet("day").(uint32),
	}, nil
}

func (d D1003) Pack() ([]byte, error) {
	return schema.Pack(record(d1003Schema, d.WorkoutName, d.Day))
}
