// internal/capability/a001.go
package capability

import (
	"fmt"

	"github.com/guiperry/garminlink/internal/schema"
)

var protocolArraySchema = mustSchema("ProtocolArray",
	schema.FieldSpec{Name: "protocol_array", Format: "{(BH)}"},
)

// DecodeProtocolArray unpacks the pid_protocol_array payload (A001) into a
// capability Set. Each tagged tuple either opens a new protocol group
// (T/L/A) or appends a datatype to the most recently opened group (D);
// the physical tag (P) is skipped and never surfaced as a capability since
// the transport is already chosen. Unknown tag bytes are skipped without
// logging; this function returns every group it builds.
func DecodeProtocolArray(data []byte) (Set, error) {
	rec, err := schema.Unpack(protocolArraySchema, data)
	if err != nil {
		return nil, fmt.Errorf("decode protocol array: %w", err)
	}
	entries := rec.MustGet("protocol_array").([]schema.Value)

	var set Set
	for _, entry := range entries {
		pair := entry.([]schema.Value)
		tagByte := ProtocolClass(pair[0].(uint8))
		value := pair[1].(uint16)

		switch tagByte {
		case ClassPhysical:
			// Physical protocol is already chosen by the transport in use;
			// the device's report of it carries no actionable information.
			continue
		case ClassTransmission, ClassLink, ClassApplication:
			set = append(set, Capability{Protocol: ProtocolTag{Class: tagByte, Tag: value}})
		case ClassDatatype:
			if len(set) == 0 {
				return nil, fmt.Errorf("decode protocol array: datatype tag D%03d with no preceding protocol", value)
			}
			last := &set[len(set)-1]
			last.Datatypes = append(last.Datatypes, DatatypeTag{Tag: value})
		default:
			// Unknown tag byte: ignored.
		}
	}
	return set, nil
}
