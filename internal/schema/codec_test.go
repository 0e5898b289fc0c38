// internal/schema/codec_test.go
package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func waypointLikeSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema("D100",
		FieldSpec{Name: "ident", Format: "6s"},
		FieldSpec{Name: "posn", Format: "(ii)"},
		FieldSpec{Name: "unused", Format: "I"},
		FieldSpec{Name: "comment", Format: "40s"},
	)
	require.NoError(t, err)
	return s
}

func TestUnpackPackRoundTrip(t *testing.T) {
	s := waypointLikeSchema(t)
	ident := make([]byte, 6)
	copy(ident, "WPT001")
	comment := make([]byte, 40)
	copy(comment, "home")

	var buf []byte
	buf = append(buf, ident...)
	buf = append(buf, 0x10, 0x27, 0x00, 0x00) // lat = 10000
	buf = append(buf, 0x20, 0x4e, 0x00, 0x00) // lon = 20000
	buf = append(buf, 0, 0, 0, 0)             // unused
	buf = append(buf, comment...)

	rec, err := Unpack(s, buf)
	require.NoError(t, err)
	require.Equal(t, "WPT001", rec.MustGet("ident"))
	require.Equal(t, "home", rec.MustGet("comment"))
	posn, ok := rec.Get("posn")
	require.True(t, ok)
	coords := posn.([]Value)
	require.Equal(t, int32(10000), coords[0])
	require.Equal(t, int32(20000), coords[1])

	out, err := Pack(rec)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestVarLengthFieldReferencesPriorField(t *testing.T) {
	s, err := NewSchema("variable_record",
		FieldSpec{Name: "length", Format: "B"},
		FieldSpec{Name: "data", Format: "/0s"},
	)
	require.NoError(t, err)

	buf := append([]byte{5}, []byte("hello")...)
	rec, err := Unpack(s, buf)
	require.NoError(t, err)
	require.EqualValues(t, 5, rec.MustGet("length"))
	require.Equal(t, []byte("hello"), rec.MustGet("data"))

	out, err := Pack(rec)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestVarLengthFieldKeepsEmbeddedZeroBytes(t *testing.T) {
	// The payload is raw binary, not a NUL-delimited string: zero bytes
	// in the middle must survive the round trip.
	s, err := NewSchema("variable_record",
		FieldSpec{Name: "length", Format: "B"},
		FieldSpec{Name: "data", Format: "/0s"},
	)
	require.NoError(t, err)

	buf := []byte{4, 0xAA, 0x00, 0xBB, 0x00}
	rec, err := Unpack(s, buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x00, 0xBB, 0x00}, rec.MustGet("data"))

	out, err := Pack(rec)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestArrayDecodesExactlyNElements(t *testing.T) {
	s, err := NewSchema("satellite_block",
		FieldSpec{Name: "svids", Format: "4[B]"},
	)
	require.NoError(t, err)

	buf := []byte{1, 2, 3, 4}
	rec, err := Unpack(s, buf)
	require.NoError(t, err)
	svids := rec.MustGet("svids").([]Value)
	require.Len(t, svids, 4)
	require.Equal(t, uint8(1), svids[0])
	require.Equal(t, uint8(4), svids[3])

	out, err := Pack(rec)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestGreedyRepetitionConsumesRemainingBuffer(t *testing.T) {
	s, err := NewSchema("point_list",
		FieldSpec{Name: "points", Format: "{H}"},
	)
	require.NoError(t, err)

	buf := []byte{1, 0, 2, 0, 3, 0}
	rec, err := Unpack(s, buf)
	require.NoError(t, err)
	points := rec.MustGet("points").([]Value)
	require.Len(t, points, 3)
	require.Equal(t, uint16(1), points[0])
	require.Equal(t, uint16(3), points[2])

	out, err := Pack(rec)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestUnpackRejectsTrailingBytes(t *testing.T) {
	s, err := NewSchema("short_record", FieldSpec{Name: "v", Format: "B"})
	require.NoError(t, err)
	_, err = Unpack(s, []byte{1, 2})
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
}

func TestUnpackRejectsShortBuffer(t *testing.T) {
	s, err := NewSchema("needs_four", FieldSpec{Name: "v", Format: "I"})
	require.NoError(t, err)
	_, err = Unpack(s, []byte{1, 2})
	require.Error(t, err)
}

func TestRemainderCapturesTrailingBytes(t *testing.T) {
	s, err := NewSchema("blob",
		FieldSpec{Name: "tag", Format: "B"},
		FieldSpec{Name: "rest", Format: "$"},
	)
	require.NoError(t, err)
	buf := []byte{9, 1, 2, 3}
	rec, err := Unpack(s, buf)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, rec.MustGet("rest"))

	out, err := Pack(rec)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}
