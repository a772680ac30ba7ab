// Package dynval defines the closed dynamic value model the data-access
// layer binds to and reads from the store.
//
// A Value is one of {Null, Bool, Int, Float, Text, Binary}. The set is
// deliberately independent of any wire library's dynamic type: requests are
// translated into Values at the transport boundary and back out again, so
// the core's contract does not change with the wire format.
package dynval

import (
	"encoding/base64"
	"fmt"
)

// Kind identifies which member of the closed value set a Value holds.
type Kind int

const (
	// KindNull is the null value.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is a 64-bit signed integer.
	KindInt
	// KindFloat is a 64-bit float.
	KindFloat
	// KindText is a text string.
	KindText
	// KindBinary is a byte sequence. Binary has no wire literal; it is
	// produced only by the read path and travels as base64 text.
	KindBinary
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an immutable member of the closed dynamic value set.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	raw  []byte
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns a 64-bit signed integer value.
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float returns a 64-bit float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Binary returns a binary value. The byte slice is not copied; callers
// must not mutate it afterwards.
func Binary(b []byte) Value {
	return Value{kind: KindBinary, raw: b}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload. Valid only for KindBool.
func (v Value) AsBool() bool {
	return v.b
}

// AsInt returns the integer payload. Valid only for KindInt.
func (v Value) AsInt() int64 {
	return v.i
}

// AsFloat returns the float payload. Valid only for KindFloat.
func (v Value) AsFloat() float64 {
	return v.f
}

// AsText returns the text payload. Valid only for KindText.
func (v Value) AsText() string {
	return v.s
}

// AsBytes returns the binary payload. Valid only for KindBinary.
func (v Value) AsBytes() []byte {
	return v.raw
}

// Native returns the value as a driver-bindable native Go value:
// nil, bool, int64, float64, string, or []byte.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBinary:
		return v.raw
	default:
		return nil
	}
}

// String returns a diagnostic representation. Binary payloads are shown
// as base64 rather than raw bytes.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return fmt.Sprintf("%q", v.s)
	case KindBinary:
		return "b64:" + base64.StdEncoding.EncodeToString(v.raw)
	default:
		return "invalid"
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindBinary:
		if len(v.raw) != len(o.raw) {
			return false
		}
		for i := range v.raw {
			if v.raw[i] != o.raw[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
