// internal/datatype/catalog.go
//
// The Tag -> Schema lookup every application protocol in internal/proto
// and internal/registry needs to resolve a capability's negotiated
// datatype list into something
// that can actually decode bytes, without internal/registry needing to
// know about each concrete D-number Go type.
//
// Carries every D-number this package implements; a documented D-number
// this package doesn't model (see each file's own
// representative-subset note) is simply absent; Lookup's caller treats
// a miss as "unsupported datatype" the same way internal/capability's
// Lookup treats an untabulated product id.
package datatype

import (
	"sort"

	"github.com/guiperry/garminlink/internal/schema"
)

var catalog = map[uint16]*schema.Schema{
	100:  d100Schema,
	103:  d103Schema,
	109:  d109Schema,
	110:  d110Schema,
	120:  d120Schema,
	200:  d200Schema,
	201:  d201Schema,
	202:  d202Schema,
	210:  d210Schema,
	300:  d300Schema,
	301:  d301Schema,
	310:  d310Schema,
	311:  d311Schema,
	400:  d400Schema,
	403:  d403Schema,
	500:  d500Schema,
	501:  d501Schema,
	600:  d600Schema,
	650:  d650Schema,
	700:  d700Schema,
	800:  d800Schema,
	906:  d906Schema,
	1000: d1000Schema,
	1001: d1001Schema,
	1002: workoutSchema,
	1003: d1003Schema,
	1004: d1004Schema,
	1005: d1005Schema,
	1006: d1006Schema,
	1007: d1007Schema,
	1009: d1009Schema,
	1010: d1009Schema, // D1010 is D1009's wire-identical successor; see run.go
	1011: d1011Schema,
	1012: d1012Schema,
	1013: d1013Schema,
	1051: d1051Schema,
}

// Lookup returns the compiled schema for a Dnnn tag, for callers that
// need to decode a record generically (registry binding, diagnostics
// dumps) without committing to one of this package's typed Decode*
// functions.
func Lookup(tag uint16) (*schema.Schema, bool) {
	s, ok := catalog[tag]
	return s, ok
}

// Supported reports every D-number this package can decode, sorted
// ascending, for diagnostics and registry-binding error messages.
func Supported() []uint16 {
	tags := make([]uint16, 0, len(catalog))
	for t := range catalog {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
