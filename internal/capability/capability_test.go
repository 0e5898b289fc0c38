// internal/capability/capability_test.go
package capability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeProductData(t *testing.T) {
	var buf []byte
	buf = append(buf, 62, 0)       // product_id = 62
	buf = append(buf, 210, 0)      // software_version raw = 210 -> 2.10
	buf = append(buf, []byte("GPS 62\x00")...)

	pd, err := DecodeProductData(buf)
	require.NoError(t, err)
	require.EqualValues(t, 62, pd.ProductID)
	require.InDelta(t, 2.10, pd.SoftwareVersion, 0.001)
	require.Equal(t, "GPS 62", pd.ProductDescription)
}

func TestDecodeProtocolArrayGroupsDatatypesUnderPrecedingProtocol(t *testing.T) {
	// tag_phys_prot_id ('P') then tag_appl_prot_id('A')=A100 then two
	// tag_data_type_id('D') entries.
	var buf []byte
	appendEntry := func(tag byte, val uint16) {
		buf = append(buf, tag, byte(val), byte(val>>8))
	}
	appendEntry('P', 1)
	appendEntry('A', 100)
	appendEntry('D', 152)
	appendEntry('A', 200)
	appendEntry('D', 201)
	appendEntry('D', 152)

	set, err := DecodeProtocolArray(buf)
	require.NoError(t, err)
	require.Len(t, set, 2)
	require.Equal(t, ProtocolTag{Class: ClassApplication, Tag: 100}, set[0].Protocol)
	require.Equal(t, []DatatypeTag{{Tag: 152}}, set[0].Datatypes)
	require.Equal(t, ProtocolTag{Class: ClassApplication, Tag: 200}, set[1].Protocol)
	require.Equal(t, []DatatypeTag{{Tag: 201}, {Tag: 152}}, set[1].Datatypes)
}

func TestDecodeProtocolArrayRejectsLeadingDatatype(t *testing.T) {
	buf := []byte{'D', 100, 0}
	_, err := DecodeProtocolArray(buf)
	require.Error(t, err)
}

func TestFallbackLookupPicksHighestSatisfiedVersionRow(t *testing.T) {
	// Product 77 has rows at 3.61, 3.50, 3.01, 0 (descending, highest first
	// in the table; the loop in Lookup replaces its choice only with a row
	// whose minVersion <= version and is greater than the current choice,
	// so the highest qualifying row wins).
	set, err := Lookup(77, 3.30)
	require.NoError(t, err)
	cap, ok := set.Find(ClassApplication, 100)
	require.True(t, ok)
	require.Equal(t, []DatatypeTag{{Tag: 103}}, cap.Datatypes)

	set, err = Lookup(77, 0)
	require.NoError(t, err)
	cap, ok = set.Find(ClassApplication, 100)
	require.True(t, ok)
	require.Equal(t, []DatatypeTag{{Tag: 100}}, cap.Datatypes)
}

func TestFallbackLookupIncludesImplicitCapabilities(t *testing.T) {
	set, err := Lookup(62, 2.10)
	require.NoError(t, err)
	_, ok := set.Find(ClassApplication, 0)
	require.True(t, ok, "A000 should always be present")
	_, ok = set.Find(ClassApplication, 600)
	require.True(t, ok, "A600/D600 date-time should always be present")
	_, ok = set.Find(ClassApplication, 700)
	require.True(t, ok, "A700/D700 position should always be present")
}

func TestFallbackLookupSkipsNilProtocolSlots(t *testing.T) {
	// Product 7's row has two nil slots (track, proximity).
	set, err := Lookup(7, 0)
	require.NoError(t, err)
	_, ok := set.Find(ClassApplication, 300)
	require.False(t, ok)
	_, ok = set.Find(ClassApplication, 400)
	require.False(t, ok)
}

func TestFallbackLookupRejectsUnknownProductID(t *testing.T) {
	_, err := Lookup(65535, 1.0)
	require.Error(t, err)
}
