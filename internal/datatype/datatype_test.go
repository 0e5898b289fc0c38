// internal/datatype/datatype_test.go
package datatype

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestD100RoundTrip(t *testing.T) {
	want := D100{Ident: "WPT01", Posn: Position{Lat: 100, Lon: -200}, Cmnt: "home"}
	buf, err := want.Pack()
	require.NoError(t, err)
	got, err := DecodeD100(buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestD103RoundTrip(t *testing.T) {
	want := D103{Ident: "SMBL", Posn: Position{Lat: 1, Lon: 2}, Cmnt: "c", Smbl: 8, Dspl: 1}
	buf, err := want.Pack()
	require.NoError(t, err)
	got, err := DecodeD103(buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestD109VariableLengthFieldsRoundTrip(t *testing.T) {
	want := D109{
		Dtyp: 1, WptClass: 0, DsplColor: 2, Attr: 0x60, Smbl: 8226,
		Subclass: "", Posn: Position{Lat: 10, Lon: 20}, Alt: FloatUnknown, Dpth: FloatUnknown,
		Dist: 0, State: "CA", CC: "US", ETE: TimeUnknown,
		Ident: "POI1", Cmnt: "a comment", Facility: "", City: "Sacramento", Addr: "", CrossRoad: "",
	}
	buf, err := want.Pack()
	require.NoError(t, err)
	got, err := DecodeD109(buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.False(t, got.IsValidETE())
}

func TestD110CreatedAtUnknownSentinel(t *testing.T) {
	d := D110{Time: TimeUnknown}
	_, ok := d.CreatedAt()
	require.False(t, ok)

	d.Time = EncodeTime(time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC))
	got, ok := d.CreatedAt()
	require.True(t, ok)
	require.Equal(t, 2020, got.Year())
}

func TestD300IsValidTime(t *testing.T) {
	require.False(t, D300{Time: 0}.IsValidTime())
	require.False(t, D300{Time: TimeUnknown}.IsValidTime())
	require.False(t, D300{Time: 0x7FFFFFFF}.IsValidTime())
	require.True(t, D300{Time: 12345}.IsValidTime())
}

func TestD800FixTimeAndMSLAltitude(t *testing.T) {
	d := D800{Alt: 100, MslHght: -20, WnDays: 0, Tow: 3600, LeapScnds: 18}
	require.InDelta(t, 80, d.MSLAltitude(), 0.001)
	ft := d.FixTime()
	require.Equal(t, GarminEpoch.Add(3600*time.Second-18*time.Second), ft)
}

func TestWorkoutStepsRoundTrip(t *testing.T) {
	w := Workout{
		NumValidSteps: 2,
		Steps: []Step{
			{CustomName: "warmup", DurationValue: 300, DurationType: 0, TargetType: 2},
			{CustomName: "sprint", DurationValue: 100, DurationType: 1, TargetType: 0},
		},
		Name:      "speedwork",
		SportType: 0,
	}
	d := D1002{Workout: w}
	buf, err := d.Pack()
	require.NoError(t, err)
	got, err := DecodeD1002(buf)
	require.NoError(t, err)
	require.Len(t, got.Steps, MaxWorkoutSteps)
	require.Equal(t, "warmup", got.Steps[0].CustomName)
	require.Equal(t, "sprint", got.Steps[1].CustomName)
	require.Equal(t, "", got.Steps[2].CustomName)
	require.Equal(t, w.Name, got.Name)
}

func TestD1011TriggerMethodName(t *testing.T) {
	d := D1011{TriggerMethod: 4}
	require.Equal(t, "heart_rate", d.TriggerMethodName())
	require.Equal(t, "manual", D1011{TriggerMethod: 99}.TriggerMethodName())
}

func TestD1051DSTWindow(t *testing.T) {
	d := D1051{
		IsDSTInfoIncluded: true,
		CurrentUTC:        1000,
		DSTStart:          500,
		DSTEnd:            1500,
		DSTAdjustment:     4, // 4 * 15min = 1h
	}
	require.Equal(t, time.Hour, d.DST())

	d.CurrentUTC = 2000
	require.Equal(t, time.Duration(0), d.DST())
}

func TestCatalogLookup(t *testing.T) {
	s, ok := Lookup(109)
	require.True(t, ok)
	require.Equal(t, "D109", s.Name)

	_, ok = Lookup(9999)
	require.False(t, ok)

	tags := Supported()
	require.Contains(t, tags, uint16(100))
	require.Contains(t, tags, uint16(1051))
}

func TestSymbolStringFallback(t *testing.T) {
	require.Equal(t, "sym_anchor", Symbol(0).String())
	require.Equal(t, "sym_12345", Symbol(12345).String())
}

func TestSymbolTableSpansAllRanges(t *testing.T) {
	// Marine, land, and aviation id ranges all resolve.
	require.Equal(t, "sym_wpt_dot", Symbol(18).String())
	require.Equal(t, "sym_is_hwy", Symbol(8192).String())
	require.Equal(t, "sym_geocache", Symbol(8255).String())
	require.Equal(t, "sym_airport", Symbol(16384).String())
}

func TestD109PackedDsplColor(t *testing.T) {
	// Color in bits 0-4, display attribute in bits 5-6.
	d := D109{WptClass: 64, DsplColor: 1<<5 | 9}
	require.Equal(t, uint8(9), d.Color())
	require.Equal(t, uint8(1), d.Dspl())
	require.Equal(t, "clr_red", d.ColorName())
	require.Equal(t, "dspl_smbl_only", d.DsplName())
	require.Equal(t, "avtn_apt_wpt", d.WptClassName())

	require.Equal(t, "clr_default_color", D109{DsplColor: 31}.ColorName())
	require.Equal(t, "user_wpt", D109{WptClass: 200}.WptClassName())
}

func TestD110ColorNameOverrides(t *testing.T) {
	require.Equal(t, "clr_transparent", D110{D109: D109{DsplColor: 16}}.ColorName())
	require.Equal(t, "clr_black", D110{D109: D109{DsplColor: 31}}.ColorName())
	require.Equal(t, "clr_cyan", D110{D109: D109{DsplColor: 14}}.ColorName())
}

func TestD103DsplName(t *testing.T) {
	require.Equal(t, "dspl_smbl_none", D103{Dspl: 1}.DsplName())
	require.Equal(t, "dspl_smbl_name", D103{Dspl: 9}.DsplName())
}

func TestD1009MultisportName(t *testing.T) {
	require.Equal(t, "no", D1009{}.MultisportName())
	require.Equal(t, "yes", D1009{Multisport: 1}.MultisportName())
	require.Equal(t, "yesAndLastInGroup", D1009{Multisport: 2}.MultisportName())
	require.Equal(t, "no", D1009{Multisport: 9}.MultisportName())
}
