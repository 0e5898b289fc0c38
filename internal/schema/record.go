// internal/schema/record.go
package schema

import "fmt"

// Field is one named, typed member of a Schema.
type Field struct {
	Name string
	Type Op
}

// Schema is a compiled, named field list — the decode/encode target for one
// datatype (D100, D800, …). Built once by internal/datatype and reused for
// every record of that type in a transfer.
type Schema struct {
	Name   string
	Fields []Field
}

// NewSchema compiles a sequence of (name, format) pairs into a Schema.
func NewSchema(name string, fields ...FieldSpec) (*Schema, error) {
	s := &Schema{Name: name, Fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		op, err := Compile(f.Format)
		if err != nil {
			return nil, fmt.Errorf("schema %s: field %s: %w", name, f.Name, err)
		}
		s.Fields = append(s.Fields, Field{Name: f.Name, Type: op})
	}
	return s, nil
}

// FieldSpec is the (name, format) pair NewSchema compiles from. Kept as a
// separate type so datatype definitions read as a table rather than a
// sequence of Compile calls.
type FieldSpec struct {
	Name   string
	Format string
}

// Record is a decoded (or not-yet-encoded) instance of a Schema: an ordered
// value per field, index-aligned with Schema.Fields. The raw bytes it came
// from are never retained here; internal/datatype's semantic layer reads
// through Record without mutating it.
type Record struct {
	Schema *Schema
	Values []Value
}

// Value is the decoded representation of one field. Concrete dynamic types:
//
//	scalars:     uint8, int8, uint16, int16, uint32, int32, float32, float64, bool
//	Ns / n:      string
//	/Ns / $:     []byte (raw, never NUL-delimited)
//	(…):         []Value  (sub-record, field order preserved, unnamed)
//	N[…] / {…}:  []Value  (elements, not field-named)
type Value any

// Get returns the value of the named top-level field, or nil and false if
// no such field exists.
func (r *Record) Get(name string) (Value, bool) {
	for i, f := range r.Schema.Fields {
		if f.Name == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// MustGet is Get without the ok return, for callers that already know the
// schema shape (internal/datatype's semantic decoders).
func (r *Record) MustGet(name string) Value {
	v, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("schema: record %s has no field %q", r.Schema.Name, name))
	}
	return v
}
