// internal/schema/codec.go
//
// The decode/encode walker that runs the opcodes format.go compiles: an
// explicit cursor plus a small recursive walker over the compiled Op tree.
package schema

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Unpack decodes buf according to the schema's field list into a Record.
func Unpack(s *Schema, buf []byte) (*Record, error) {
	pos := 0
	frame := make([]Value, 0, len(s.Fields))
	for _, f := range s.Fields {
		if _, err := decodeOp(f.Type, buf, &pos, &frame); err != nil {
			return nil, newError(fmt.Sprintf("unpack %s.%s", s.Name, f.Name), err)
		}
	}
	if pos != len(buf) {
		return nil, newError(fmt.Sprintf("unpack %s", s.Name),
			fmt.Errorf("%d trailing bytes after decoding %d of %d", len(buf)-pos, pos, len(buf)))
	}
	return &Record{Schema: s, Values: frame}, nil
}

// Pack re-encodes a Record into its original byte form. Pack(Unpack(s, b))
// must equal b for any schema-valid b.
func Pack(r *Record) ([]byte, error) {
	var buf []byte
	frame := make([]Value, 0, len(r.Values))
	for i, f := range r.Schema.Fields {
		if i >= len(r.Values) {
			return nil, newError(fmt.Sprintf("pack %s.%s", r.Schema.Name, f.Name), fmt.Errorf("missing value"))
		}
		enc, err := encodeOp(f.Type, r.Values[i], &frame)
		if err != nil {
			return nil, newError(fmt.Sprintf("pack %s.%s", r.Schema.Name, f.Name), err)
		}
		buf = append(buf, enc...)
	}
	return buf, nil
}

func take(buf []byte, pos *int, n int) ([]byte, error) {
	if *pos+n > len(buf) {
		return nil, fmt.Errorf("need %d bytes at offset %d, only %d available", n, *pos, len(buf)-*pos)
	}
	out := buf[*pos : *pos+n]
	*pos += n
	return out, nil
}

func decodeOp(op Op, buf []byte, pos *int, frame *[]Value) (Value, error) {
	switch op.Kind {
	case KindU8:
		b, err := take(buf, pos, 1)
		if err != nil {
			return nil, err
		}
		v := Value(b[0])
		*frame = append(*frame, v)
		return v, nil
	case KindI8:
		b, err := take(buf, pos, 1)
		if err != nil {
			return nil, err
		}
		v := Value(int8(b[0]))
		*frame = append(*frame, v)
		return v, nil
	case KindU16:
		b, err := take(buf, pos, 2)
		if err != nil {
			return nil, err
		}
		v := Value(binary.LittleEndian.Uint16(b))
		*frame = append(*frame, v)
		return v, nil
	case KindI16:
		b, err := take(buf, pos, 2)
		if err != nil {
			return nil, err
		}
		v := Value(int16(binary.LittleEndian.Uint16(b)))
		*frame = append(*frame, v)
		return v, nil
	case KindU32:
		b, err := take(buf, pos, 4)
		if err != nil {
			return nil, err
		}
		v := Value(binary.LittleEndian.Uint32(b))
		*frame = append(*frame, v)
		return v, nil
	case KindI32:
		b, err := take(buf, pos, 4)
		if err != nil {
			return nil, err
		}
		v := Value(int32(binary.LittleEndian.Uint32(b)))
		*frame = append(*frame, v)
		return v, nil
	case KindF32:
		b, err := take(buf, pos, 4)
		if err != nil {
			return nil, err
		}
		v := Value(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		*frame = append(*frame, v)
		return v, nil
	case KindF64:
		b, err := take(buf, pos, 8)
		if err != nil {
			return nil, err
		}
		v := Value(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		*frame = append(*frame, v)
		return v, nil
	case KindBool:
		b, err := take(buf, pos, 1)
		if err != nil {
			return nil, err
		}
		v := Value(b[0] != 0)
		*frame = append(*frame, v)
		return v, nil
	case KindFixedString:
		b, err := take(buf, pos, op.N)
		if err != nil {
			return nil, err
		}
		v := Value(trimNUL(b))
		*frame = append(*frame, v)
		return v, nil
	case KindCString:
		start := *pos
		for *pos < len(buf) && buf[*pos] != 0 {
			*pos++
		}
		if *pos >= len(buf) {
			return nil, fmt.Errorf("unterminated null-delimited string starting at offset %d", start)
		}
		s := string(buf[start:*pos])
		*pos++ // consume the NUL
		v := Value(s)
		*frame = append(*frame, v)
		return v, nil
	case KindVarString:
		n, err := refLength(*frame, op.Ref)
		if err != nil {
			return nil, err
		}
		b, err := take(buf, pos, n)
		if err != nil {
			return nil, err
		}
		// Raw length-referenced payload: unlike "n", never
		// NUL-delimited, so embedded zero bytes survive the round trip.
		out := make([]byte, len(b))
		copy(out, b)
		v := Value(out)
		*frame = append(*frame, v)
		return v, nil
	case KindRemainder:
		b := buf[*pos:]
		*pos = len(buf)
		out := make([]byte, len(b))
		copy(out, b)
		v := Value(out)
		*frame = append(*frame, v)
		return v, nil
	case KindNested:
		sub := make([]Value, 0, len(op.Sub))
		for _, s := range op.Sub {
			if _, err := decodeOp(s, buf, pos, &sub); err != nil {
				return nil, err
			}
		}
		v := Value(sub)
		*frame = append(*frame, v)
		return v, nil
	case KindArray:
		elems := make([]Value, 0, op.N)
		for i := 0; i < op.N; i++ {
			if _, err := decodeOp(*op.Elem, buf, pos, &elems); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		v := Value(elems)
		*frame = append(*frame, v)
		return v, nil
	case KindGreedy:
		var elems []Value
		for *pos < len(buf) {
			if _, err := decodeOp(*op.Elem, buf, pos, &elems); err != nil {
				return nil, fmt.Errorf("greedy element %d: %w", len(elems), err)
			}
		}
		v := Value(elems)
		*frame = append(*frame, v)
		return v, nil
	default:
		return nil, fmt.Errorf("unhandled opcode kind %v", op.Kind)
	}
}

// refLength resolves a "/Ns" field's length against an already-decoded
// sibling value at index ref in the current frame.
func refLength(frame []Value, ref int) (int, error) {
	if ref < 0 || ref >= len(frame) {
		return 0, fmt.Errorf("variable-length reference /%ds out of range (only %d prior fields)", ref, len(frame))
	}
	switch n := frame[ref].(type) {
	case uint8:
		return int(n), nil
	case int8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case int16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case int32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("variable-length reference /%ds points at a non-integer field (%T)", ref, n)
	}
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func encodeOp(op Op, v Value, frame *[]Value) ([]byte, error) {
	switch op.Kind {
	case KindU8:
		n, err := asUint(v, 8)
		if err != nil {
			return nil, err
		}
		*frame = append(*frame, v)
		return []byte{byte(n)}, nil
	case KindI8:
		n, ok := v.(int8)
		if !ok {
			return nil, fmt.Errorf("expected int8, got %T", v)
		}
		*frame = append(*frame, v)
		return []byte{byte(n)}, nil
	case KindU16:
		n, err := asUint(v, 16)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(n))
		*frame = append(*frame, v)
		return b, nil
	case KindI16:
		n, ok := v.(int16)
		if !ok {
			return nil, fmt.Errorf("expected int16, got %T", v)
		}
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(n))
		*frame = append(*frame, v)
		return b, nil
	case KindU32:
		n, err := asUint(v, 32)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(n))
		*frame = append(*frame, v)
		return b, nil
	case KindI32:
		n, ok := v.(int32)
		if !ok {
			return nil, fmt.Errorf("expected int32, got %T", v)
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(n))
		*frame = append(*frame, v)
		return b, nil
	case KindF32:
		n, ok := v.(float32)
		if !ok {
			return nil, fmt.Errorf("expected float32, got %T", v)
		}
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(n))
		*frame = append(*frame, v)
		return b, nil
	case KindF64:
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("expected float64, got %T", v)
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(n))
		*frame = append(*frame, v)
		return b, nil
	case KindBool:
		n, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		*frame = append(*frame, v)
		if n {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindFixedString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		if len(s) > op.N {
			return nil, fmt.Errorf("string %q exceeds fixed width %d", s, op.N)
		}
		b := make([]byte, op.N)
		copy(b, s)
		*frame = append(*frame, v)
		return b, nil
	case KindCString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		*frame = append(*frame, v)
		return append([]byte(s), 0), nil
	case KindVarString:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte, got %T", v)
		}
		n, err := refLength(*frame, op.Ref)
		if err != nil {
			return nil, err
		}
		if len(b) != n {
			return nil, fmt.Errorf("variable-length payload of %d bytes does not match referenced length %d", len(b), n)
		}
		*frame = append(*frame, v)
		return append([]byte(nil), b...), nil
	case KindRemainder:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte, got %T", v)
		}
		*frame = append(*frame, v)
		return append([]byte(nil), b...), nil
	case KindNested:
		sub, ok := v.([]Value)
		if !ok {
			return nil, fmt.Errorf("expected []Value for nested composite, got %T", v)
		}
		if len(sub) != len(op.Sub) {
			return nil, fmt.Errorf("nested composite expects %d fields, got %d", len(op.Sub), len(sub))
		}
		var out []byte
		subFrame := make([]Value, 0, len(op.Sub))
		for i, s := range op.Sub {
			enc, err := encodeOp(s, sub[i], &subFrame)
			if err != nil {
				return nil, fmt.Errorf("nested field %d: %w", i, err)
			}
			out = append(out, enc...)
		}
		*frame = append(*frame, v)
		return out, nil
	case KindArray:
		elems, ok := v.([]Value)
		if !ok {
			return nil, fmt.Errorf("expected []Value for array, got %T", v)
		}
		if len(elems) != op.N {
			return nil, fmt.Errorf("array expects %d elements, got %d", op.N, len(elems))
		}
		var out []byte
		elemFrame := make([]Value, 0, op.N)
		for i, e := range elems {
			enc, err := encodeOp(*op.Elem, e, &elemFrame)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, enc...)
		}
		*frame = append(*frame, v)
		return out, nil
	case KindGreedy:
		elems, ok := v.([]Value)
		if !ok {
			return nil, fmt.Errorf("expected []Value for greedy repetition, got %T", v)
		}
		var out []byte
		elemFrame := make([]Value, 0, len(elems))
		for i, e := range elems {
			enc, err := encodeOp(*op.Elem, e, &elemFrame)
			if err != nil {
				return nil, fmt.Errorf("greedy element %d: %w", i, err)
			}
			out = append(out, enc...)
		}
		*frame = append(*frame, v)
		return out, nil
	default:
		return nil, fmt.Errorf("unhandled opcode kind %v", op.Kind)
	}
}

// asUint accepts any of the unsigned decode result types so pack() callers
// can hand back exactly what unpack() gave them without widening by hand.
func asUint(v Value, bits int) (uint64, error) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("expected an unsigned %d-bit integer, got %T", bits, v)
	}
}
