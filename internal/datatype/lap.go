// internal/datatype/lap.go
//
// Lap datatypes (A906's D0 and A1000/A1006's dependent lap transfers):
// D906/D1001/D1011,
// three generations of the same shape, each adding fields the
// last one didn't have.
package datatype

import "github.com/guiperry/garminlink/internal/schema"

var intensityNames = map[uint8]string{0: "active", 1: "rest"}

func intensityName(v uint8) string {
	if name, ok := intensityNames[v]; ok {
		return name
	}
	return "active"
}

var d906Schema = mustSchema("D906",
	schema.FieldSpec{Name: "start_time", Format: "I"},
	schema.FieldSpec{Name: "total_time", Format: "I"},
	schema.FieldSpec{Name: "total_dist", Format: "f"},
	schema.FieldSpec{Name: "begin", Format: "(ii)"},
	schema.FieldSpec{Name: "end", Format: "(ii)"},
	schema.FieldSpec{Name: "calories", Format: "H"},
	schema.FieldSpec{Name: "track_index", Format: "B"},
	schema.FieldSpec{Name: "unused", Format: "B"},
)

// D906 is the fitness-era lap record, standalone (not yet indexed).
type D906 struct {
	StartTime  uint32
	TotalTime  uint32 // hundredths of a second
	TotalDist  float32
	Begin, End Position
	Calories   uint16
	TrackIndex uint8
}

func DecodeD906(data []byte) (D906, error) {
	rec, err := schema.Unpack(d906Schema, data)
	if err != nil {
		return D906{}, err
	}
	return D906{
		StartTime:  rec.MustGet("start_time").(uint32),
		TotalTime:  rec.MustGet("total_time").(uint32),
		TotalDist:  rec.MustGet("total_dist").(float32),
		Begin:      positionOf(rec.MustGet("begin")),
		End:        positionOf(rec.MustGet("end")),
		Calories:   rec.MustGet("calories").(uint16),
		TrackIndex: rec.MustGet("track_index").(uint8),
	}, nil
}

func (d D906) Pack() ([]byte, error) {
	return schema.Pack(record(d906Schema, d.StartTime, d.TotalTime, d.TotalDist,
		positionValue(d.Begin), positionValue(d.End), d.Calories, d.TrackIndex, uint8(0)))
}

var d1001Schema = mustSchema("D1001",
	schema.FieldSpec{Name: "index", Format: "I"},
	schema.FieldSpec{Name: "start_time", Format: "I"},
	schema.FieldSpec{Name: "total_time", Format: "I"},
	schema.FieldSpec{Name: "total_dist", Format: "f"},
	schema.FieldSpec{Name: "max_speed", Format: "f"},
	schema.FieldSpec{Name: "begin", Format: "(ii)"},
	schema.FieldSpec{Name: "end", Format: "(ii)"},
	schema.FieldSpec{Name: "calories", Format: "H"},
	schema.FieldSpec{Name: "avg_heart_rate", Format: "B"},
	schema.FieldSpec{Name: "max_heart_rate", Format: "B"},
	schema.FieldSpec{Name: "intensity", Format: "B"},
)

// D1001 is an indexed lap (A1000 run transfer's dependent lap list).
type D1001 struct {
	Index         uint32
	StartTime     uint32
	TotalTime     uint32
	TotalDist     float32
	MaxSpeed      float32
	Begin, End    Position
	Calories      uint16
	AvgHeartRate  uint8
	MaxHeartRate  uint8
	Intensity     uint8
}

func (d D1001) IntensityName() string { return intensityName(d.Intensity) }

func DecodeD1001(data []byte) (D1001, error) {
	rec, err := schema.Unpack(d1001Schema, data)
	if err != nil {
		return D1001{}, err
	}
	return D1001{
		Index:        rec.MustGet("index").(uint32),
		StartTime:    rec.MustGet("start_time").(uint32),
		TotalTime:    rec.MustGet("total_time").(uint32),
		TotalDist:    rec.MustGet("total_dist").(float32),
		MaxSpeed:     rec.MustGet("max_speed").(float32),
		Begin:        positionOf(rec.MustGet("begin")),
		End:          positionOf(rec.MustGet("end")),
		Calories:     rec.MustGet("calories").(uint16),
		AvgHeartRate: rec.MustGet("avg_heart_rate").(uint8),
		MaxHeartRate: rec.MustGet("max_heart_rate").(uint8),
		Intensity:    rec.MustGet("intensity").(uint8),
	}, nil
}

func (d D1001) Pack() ([]byte, error) {
	return schema.Pack(record(d1001Schema, d.Index, d.StartTime, d.TotalTime, d.TotalDist, d.MaxSpeed,
		positionValue(d.Begin), positionValue(d.End), d.Calories, d.AvgHeartRate, d.MaxHeartRate, d.Intensity))
}

var triggerMethodNames = map[uint8]string{
	0: "manual", 1: "distance", 2: "location", 3: "time", 4: "heart_rate",
}

var d1011Schema = mustSchema("D1011",
	schema.FieldSpec{Name: "index", Format: "H"},
	schema.FieldSpec{Name: "unused", Format: "H"},
	schema.FieldSpec{Name: "start_time", Format: "I"},
	schema.FieldSpec{Name: "total_time", Format: "I"},
	schema.FieldSpec{Name: "total_dist", Format: "f"},
	schema.FieldSpec{Name: "max_speed", Format: "f"},
	schema.FieldSpec{Name: "begin", Format: "(ii)"},
	schema.FieldSpec{Name: "end", Format: "(ii)"},
	schema.FieldSpec{Name: "calories", Format: "H"},
	schema.FieldSpec{Name: "avg_heart_rate", Format: "B"},
	schema.FieldSpec{Name: "max_heart_rate", Format: "B"},
	schema.FieldSpec{Name: "intensity", Format: "B"},
	schema.FieldSpec{Name: "avg_cadence", Format: "B"},
	schema.FieldSpec{Name: "trigger_method", Format: "B"},
)

// D1011 adds cadence and a lap-trigger-method enum over D1001; used by
// both A1000 run transfer and A1006 course transfer's dependent laps.
type D1011 struct {
	D1001
	AvgCadence    uint8
	TriggerMethod uint8
}

func (d D1011) TriggerMethodName() string {
	if name, ok := triggerMethodNames[d.TriggerMethod]; ok {
		return name
	}
	return "manual"
}

func DecodeD1011(data []byte) (D1011, error) {
	rec, err := schema.Unpack(d1011Schema, data)
	if err != nil {
		return D1011{}, err
	}
	return D1011{
		D1001: D1001{
			Index:        uint32(rec.MustGet("index").(uint16)),
			StartTime:    rec.MustGet("start_time").(uint32),
			TotalTime:    rec.MustGet("total_time").(uint32),
			TotalDist:    rec.MustGet("total_dist").(float32),
			MaxSpeed:     rec.MustGet("max_speed").(float32),
			Begin:        positionOf(rec.MustGet("begin")),
			End:          positionOf(rec.MustGet("end")),
			Calories:     rec.MustGet("calories").(uint16),
			AvgHeartRate: rec.MustGet("avg_heart_rate").(uint8),
			MaxHeartRate: rec.MustGet("max_heart_rate").(uint8),
			Intensity:    rec.MustGet("intensity").(uint8),
		},
		AvgCadence:    rec.MustGet("avg_cadence").(uint8),
		TriggerMethod: rec.MustGet("trigger_method").(uint8),
	}, nil
}

func (d D1011) Pack() ([]byte, error) {
	return schema.Pack(record(d1011Schema, uint16(d.Index), uint16(0), d.StartTime, d.TotalTime, d.TotalDist, d.MaxSpeed,
		positionValue(d.Begin), positionValue(d.End), d.Calories, d.AvgHeartRate, d.MaxHeartRate, d.Intensity, d.AvgCadence, d.TriggerMethod))
}
