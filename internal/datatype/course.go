// internal/datatype/course.go
//
// Course datatypes (A1006 course transfer's chained record set: course,
// course lap, course point, plus the course-limits capability record),
// per the D1006/D1007/D1012/D1013 sections of Garmin's Device Interface
// Specification
// classes.
package datatype

import (
	"time"

	"github.com/guiperry/garminlink/internal/schema"
)

var d1006Schema = mustSchema("D1006",
	schema.FieldSpec{Name: "index", Format: "H"},
	schema.FieldSpec{Name: "unused", Format: "H"},
	schema.FieldSpec{Name: "course_name", Format: "16s"},
	schema.FieldSpec{Name: "track_index", Format: "H"},
)

// D1006 is a course: a named reference to a track (A1006's top record).
type D1006 struct {
	Index      uint16
	CourseName string
	TrackIndex uint16
}

func DecodeD1006(data []byte) (D1006, error) {
	rec, err := schema.Unpack(d1006Schema, data)
	if err != nil {
		return D1006{}, err
	}
	return D1006{
		Index:      rec.MustGet("index").(uint16),
		CourseName: rec.MustGet("course_name").(string),
		TrackIndex: rec.MustGet("track_index").(uint16),
	}, nil
}

func (d D1006) Pack() ([]byte, error) {
	return schema.Pack(record(d1006Schema, d.Index, uint16(0), d.CourseName, d.TrackIndex))
}

var d1007Schema = mustSchema("D1007",
	schema.FieldSpec{Name: "course_index", Format: "H"},
	schema.FieldSpec{Name: "lap_index", Format: "H"},
	schema.FieldSpec{Name: "total_time", Format: "I"},
	schema.FieldSpec{Name: "total_dist", Format: "f"},
	schema.FieldSpec{Name: "begin", Format: "(ii)"},
	schema.FieldSpec{Name: "end", Format: "(ii)"},
	schema.FieldSpec{Name: "avg_heart_rate", Format: "B"},
	schema.FieldSpec{Name: "max_heart_rate", Format: "B"},
	schema.FieldSpec{Name: "intensity", Format: "B"},
	schema.FieldSpec{Name: "avg_cadence", Format: "B"},
)

// D1007 is one lap of a course.
type D1007 struct {
	CourseIndex   uint16
	LapIndex      uint16
	TotalTime     uint32
	TotalDist     float32
	Begin, End    Position
	AvgHeartRate  uint8
	MaxHeartRate  uint8
	Intensity     uint8
	AvgCadence    uint8
}

func (d D1007) IntensityName() string { return intensityName(d.Intensity) }

// IsValidAvgHeartRate reports whether avg_heart_rate carries a measured
// value (0 means unsupported/unknown).
func (d D1007) IsValidAvgHeartRate() bool { return d.AvgHeartRate != 0 }

// IsValidMaxHeartRate is IsValidAvgHeartRate's max-heart-rate counterpart.
func (d D1007) IsValidMaxHeartRate() bool { return d.MaxHeartRate != 0 }

// IsValidAvgCadence reports whether avg_cadence carries a measured value
// (0xFF means unsupported/unknown).
func (d D1007) IsValidAvgCadence() bool { return d.AvgCadence != 0xFF }

func DecodeD1007(data []byte) (D1007, error) {
	rec, err := schema.Unpack(d1007Schema, data)
	if err != nil {
		return D1007{}, err
	}
	return D1007{
		CourseIndex:  rec.MustGet("course_index").(uint16),
		LapIndex:     rec.MustGet("lap_index").(uint16),
		TotalTime:    rec.MustGet("total_time").(uint32),
		TotalDist:    rec.MustGet("total_dist").(float32),
		Begin:        positionOf(rec.MustGet("begin")),
		End:          positionOf(rec.MustGet("end")),
		AvgHeartRate: rec.MustGet("avg_heart_rate").(uint8),
		MaxHeartRate: rec.MustGet("max_heart_rate").(uint8),
		Intensity:    rec.MustGet("intensity").(uint8),
		AvgCadence:   rec.MustGet("avg_cadence").(uint8),
	}, nil
}

func (d D1007) Pack() ([]byte, error) {
	return schema.Pack(record(d1007Schema, d.CourseIndex, d.LapIndex, d.TotalTime, d.TotalDist,
		positionValue(d.Begin), positionValue(d.End), d.AvgHeartRate, d.MaxHeartRate, d.Intensity, d.AvgCadence))
}

var coursePointTypeNames = map[uint8]string{
	0: "generic", 1: "summit", 2: "valley", 3: "water", 4: "food", 5: "danger",
	6: "left", 7: "right", 8: "straight", 9: "first_aid",
	10: "fourth_category", 11: "third_category", 12: "second_category",
	13: "first_category", 14: "hors_category", 15: "sprint",
}

var d1012Schema = mustSchema("D1012",
	schema.FieldSpec{Name: "name", Format: "11s"},
	schema.FieldSpec{Name: "unused1", Format: "B"},
	schema.FieldSpec{Name: "course_index", Format: "H"},
	schema.FieldSpec{Name: "unused2", Format: "H"},
	schema.FieldSpec{Name: "track_point_time", Format: "I"},
	schema.FieldSpec{Name: "point_type", Format: "B"},
)

// D1012 is a named point of interest along a course.
type D1012 struct {
	Name           string
	CourseIndex    uint16
	TrackPointTime uint32
	PointType      uint8
}

func (d D1012) PointTypeName() string {
	if name, ok := coursePointTypeNames[d.PointType]; ok {
		return name
	}
	return "generic"
}

// TrackPointAt returns the point's timestamp; ok is false when the device
// reports the time-unknown sentinel.
func (d D1012) TrackPointAt() (time.Time, bool) {
	return DecodeTime(d.TrackPointTime)
}

func DecodeD1012(data []byte) (D1012, error) {
	rec, err := schema.Unpack(d1012Schema, data)
	if err != nil {
		return D1012{}, err
	}
	return D1012{
		Name:           rec.MustGet("name").(string),
		CourseIndex:    rec.MustGet("course_index").(uint16),
		TrackPointTime: rec.MustGet("track_point_time").(uint32),
		PointType:      rec.MustGet("point_type").(uint8),
	}, nil
}

func (d D1012) Pack() ([]byte, error) {
	return schema.Pack(record(d1012Schema, d.Name, uint8(0), d.CourseIndex, uint16(0), d.TrackPointTime, d.PointType))
}

var d1013Schema = mustSchema("D1013",
	schema.FieldSpec{Name: "max_courses", Format: "I"},
	schema.FieldSpec{Name: "max_course_laps", Format: "I"},
	schema.FieldSpec{Name: "max_course_pnt", Format: "I"},
	schema.FieldSpec{Name: "max_course_trk_pnt", Format: "I"},
)

// D1013 reports the device's course-storage capacity.
type D1013 struct {
	MaxCourses      uint32
	MaxCourseLaps   uint32
	MaxCoursePoints uint32
	MaxCourseTrackPoints uint32
}

func DecodeD1013(data []byte) (D1013, error) {
	rec, err := schema.Unpack(d1013Schema, data)
	if err != nil {
		return D1013{}, err
	}
	return D1013{
		MaxCourses:           rec.MustGet("max_courses").(uint32),
		MaxCourseLaps:        rec.MustGet("max_course_laps").(uint32),
		MaxCoursePoints:      rec.MustGet("max_course_pnt").(uint32),
		MaxCourseTrackPoints: rec.MustGet("max_course_trk_pnt").(uint32),
	}, nil
}

func (d D1013) Pack() ([]byte, error) {
	return schema.Pack(record(d1013Schema, d.MaxCourses, d.MaxCourseLaps, d.MaxCoursePoints, d.MaxCourseTrackPoints))
}
