// internal/capability/types.go
//
// Go types for product identity and the negotiated capability set, per
// the A000/A001 sections of Garmin's Device Interface Specification.
package capability

import "fmt"

// ProductData is the device identity acquired once at session start via
// A000.
type ProductData struct {
	ProductID         uint16
	SoftwareVersion   float32 // raw value already divided by 100
	ProductDescription string
}

// ProtocolClass is the single-character tag A001 uses to distinguish
// physical/transmission/link/application protocol ids from datatype ids.
type ProtocolClass byte

const (
	ClassPhysical     ProtocolClass = 'P'
	ClassTransmission ProtocolClass = 'T'
	ClassLink         ProtocolClass = 'L'
	ClassApplication  ProtocolClass = 'A'
	ClassDatatype     ProtocolClass = 'D'
)

// ProtocolTag identifies one protocol, e.g. A100 is {Class: 'A', Tag: 100}.
type ProtocolTag struct {
	Class ProtocolClass
	Tag   uint16
}

func (t ProtocolTag) String() string { return fmt.Sprintf("%c%03d", t.Class, t.Tag) }

// DatatypeTag identifies one datatype, e.g. D152 is {Tag: 152}.
type DatatypeTag struct {
	Tag uint16
}

func (t DatatypeTag) String() string { return fmt.Sprintf("D%03d", t.Tag) }

// Capability is one (protocol, datatypes) group: a single entry in the
// negotiated capability set. Datatypes are positional —
// the first is D0 in the protocol's own schema, the second D1, and so on.
type Capability struct {
	Protocol  ProtocolTag
	Datatypes []DatatypeTag
}

// Set is the ordered capability list built either from A001 or from the
// fallback table. Order matches the device's reported or tabulated order;
// internal/registry walks it once to bind roles.
type Set []Capability

// Find returns the first capability whose protocol has the given class and
// tag, or false if none matches.
func (s Set) Find(class ProtocolClass, tag uint16) (Capability, bool) {
	for _, c := range s {
		if c.Protocol.Class == class && c.Protocol.Tag == tag {
			return c, true
		}
	}
	return Capability{}, false
}
