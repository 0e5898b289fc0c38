// internal/capability/fallback.go
//
// The fallback capability table, consulted when a device doesn't answer
// A001. Row shape and content follow Appendix A of Garmin's Device
// Interface Specification: keyed by product id, each entry a sequence of
// (min_software_version, link, command, waypoint, route, track,
// proximity, almanac, [extra]) rows; the matching row is the one with the
// greatest min_software_version at or below the device's reported
// version, whatever order the rows are listed in.
//
// The appendix tabulates roughly fifty product ids; this table carries a
// representative subset spanning every row shape that appendix uses
// (single-version rows, multi-version rows with version-gated capability
// changes, L001 and L002 link protocols, rows missing a track or
// proximity slot, and rows with a trailing map-unlock protocol). Product ids
// outside this subset fall through to the "unknown to the fallback table"
// ProtocolError, the same failure mode as a device that reports neither
// A001 nor a tabulated id.
package capability

import (
	"fmt"
	"strconv"
)

// fallbackEntry is one protocol slot in a fallback row; a nil entry means that
// capability is absent for this row.
type fallbackEntry struct {
	tag       string
	datatypes []string
}

func e(tag string, datatypes ...string) *fallbackEntry {
	return &fallbackEntry{tag: tag, datatypes: datatypes}
}

// fallbackRow is one (min_software_version, protocols...) tuple.
type fallbackRow struct {
	minVersion float32
	protocols  []*fallbackEntry
}

// fallbackTable maps product id to its ordered list of version rows.
var fallbackTable = map[uint16][]fallbackRow{
	112: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D152"), e("A200", "D201", "D152"), e("A300", "D300"), nil, e("A500", "D501"), e("A903")}}},
	106: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D103"), e("A200", "D201", "D103"), e("A300", "D300"), e("A400", "D403"), e("A500", "D501")}}},
	100: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D103"), e("A200", "D201", "D103"), e("A300", "D300"), e("A400", "D403"), e("A500", "D501")}}},
	98:  {{0, []*fallbackEntry{e("L002"), e("A011"), e("A100", "D150"), e("A200", "D201", "D150"), nil, e("A400", "D450"), e("A500", "D551")}}},
	88:  {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D102"), e("A200", "D201", "D102"), e("A300", "D300"), e("A400", "D102"), e("A500", "D501")}}},
	77: {
		{3.61, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D103"), e("A200", "D201", "D103"), e("A300", "D300"), e("A400", "D403"), e("A500", "D501")}},
		{3.50, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D103"), e("A200", "D201", "D103"), e("A300", "D300"), nil, e("A500", "D501")}},
		{3.01, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D103"), e("A200", "D201", "D103"), e("A300", "D300"), e("A400", "D403"), e("A500", "D501")}},
		{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D201", "D100"), e("A300", "D300"), e("A400", "D400"), e("A500", "D501")}},
	},
	74: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D201", "D100"), e("A300", "D300"), nil, e("A500", "D500")}}},
	64: {{0, []*fallbackEntry{e("L002"), e("A011"), e("A100", "D150"), e("A200", "D201", "D150"), nil, e("A400", "D450"), e("A500", "D551")}}},
	// GPS 38 Japanese.
	62: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D201", "D100"), e("A300", "D300"), nil, e("A500", "D500")}}},
	61: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D201", "D100"), e("A300", "D300"), nil, e("A500", "D500")}}},
	53: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D152"), e("A200", "D201", "D152"), e("A300", "D300"), nil, e("A500", "D501"), e("A903")}}},
	44: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D101"), e("A200", "D201", "D101"), e("A300", "D300"), e("A400", "D101"), e("A500", "D500")}}},
	42: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D200", "D100"), e("A300", "D300"), e("A400", "D400"), e("A500", "D500")}}},
	36: {
		{3.00, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D152"), e("A200", "D200", "D152"), e("A300", "D300"), nil, e("A500", "D500"), e("A903")}},
		{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D152"), e("A200", "D200", "D152"), e("A300", "D300"), e("A400", "D152"), e("A500", "D500"), e("A903")}},
	},
	35: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D200", "D100"), e("A300", "D300"), e("A400", "D400"), e("A500", "D500")}}},
	29: {
		{4.00, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D102"), e("A200", "D201", "D102"), e("A300", "D300"), e("A400", "D102"), e("A500", "D500")}},
		{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D101"), e("A200", "D201", "D101"), e("A300", "D300"), e("A400", "D101"), e("A500", "D500")}},
	},
	25: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D200", "D100"), e("A300", "D300"), e("A400", "D400"), e("A500", "D500")}}},
	18: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D200", "D100"), e("A300", "D300"), e("A400", "D400"), e("A500", "D500")}}},
	15: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D151"), e("A200", "D200", "D151"), nil, e("A400", "D151"), e("A500", "D500")}}},
	13: {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D200", "D100"), e("A300", "D300"), e("A400", "D400"), e("A500", "D500")}}},
	7:  {{0, []*fallbackEntry{e("L001"), e("A010"), e("A100", "D100"), e("A200", "D200", "D100"), nil, nil, e("A500", "D500")}}},
}

// Lookup resolves the capability set for a product id/version pair: among
// the rows whose minVersion is ≤ version, the one with the greatest
// minVersion wins ("last row whose min_software_version is at or below
// the device version", read as version-ascending
// order regardless of how the table lists them).
func Lookup(productID uint16, version float32) (Set, error) {
	rows, ok := fallbackTable[productID]
	if !ok {
		return nil, fmt.Errorf("product id %d not found in fallback capability table", productID)
	}
	var chosen *fallbackRow
	for i := range rows {
		if rows[i].minVersion <= version && (chosen == nil || rows[i].minVersion > chosen.minVersion) {
			chosen = &rows[i]
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("product id %d: no fallback row matches software version %.2f", productID, version)
	}

	set := make(Set, 0, len(chosen.protocols)+2)
	// Implicit additions to every row: A000, A600/D600
	// (date/time), A700/D700 (position). The physical layer isn't modeled
	// as a Capability entry — it's already selected by the transport. The
	// row's link protocol (L001/L002) is appended below like any other slot.
	set = append(set,
		Capability{Protocol: ProtocolTag{Class: ClassApplication, Tag: 0}},
		Capability{Protocol: ProtocolTag{Class: ClassApplication, Tag: 600}, Datatypes: []DatatypeTag{{Tag: 600}}},
		Capability{Protocol: ProtocolTag{Class: ClassApplication, Tag: 700}, Datatypes: []DatatypeTag{{Tag: 700}}},
	)
	for _, p := range chosen.protocols {
		if p == nil {
			continue
		}
		tag, err := parseProtocolTag(p.tag)
		if err != nil {
			return nil, err
		}
		cap := Capability{Protocol: tag}
		for _, d := range p.datatypes {
			dt, err := parseDatatypeTag(d)
			if err != nil {
				return nil, err
			}
			cap.Datatypes = append(cap.Datatypes, dt)
		}
		set = append(set, cap)
	}
	return set, nil
}

func parseProtocolTag(s string) (ProtocolTag, error) {
	if len(s) < 2 {
		return ProtocolTag{}, fmt.Errorf("malformed protocol tag %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return ProtocolTag{}, fmt.Errorf("malformed protocol tag %q: %w", s, err)
	}
	return ProtocolTag{Class: ProtocolClass(s[0]), Tag: uint16(n)}, nil
}

func parseDatatypeTag(s string) (DatatypeTag, error) {
	if len(s) < 2 || s[0] != 'D' {
		return DatatypeTag{}, fmt.Errorf("malformed datatype tag %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return DatatypeTag{}, fmt.Errorf("malformed datatype tag %q: %w", s, err)
	}
	return DatatypeTag{Tag: uint16(n)}, nil
}
