package store

import (
	"github.com/toolwire/sqlbridge/core/dynval"
	"github.com/toolwire/sqlbridge/core/errors"
)

// bindArgs converts the ordered bind values of a statement into native
// driver arguments. The write-side mapping is fixed: Null binds NULL,
// Bool binds a boolean, Int a 64-bit integer, Float a 64-bit float, Text
// text, Binary a byte slice.
func bindArgs(vals []dynval.Value) ([]any, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		switch v.Kind() {
		case dynval.KindNull, dynval.KindBool, dynval.KindInt,
			dynval.KindFloat, dynval.KindText, dynval.KindBinary:
			args[i] = v.Native()
		default:
			return nil, errors.NewBind(i, "unsupported value kind "+v.Kind().String())
		}
	}
	return args, nil
}

// decoder attempts one typed read of a scanned column value.
type decoder func(any) (dynval.Value, bool)

// readProbes is the fixed probe order for non-null columns: integer,
// float, text, binary. The first decoder that accepts the native value
// wins.
var readProbes = []decoder{probeInt, probeFloat, probeText, probeBinary}

// MarshalColumn converts one scanned column of unknown native type into a
// dynamic value. Nullability is checked before any typed read. A native
// type that matches none of the probes resolves to Null so the operation
// as a whole still succeeds with partial fidelity for that cell.
func MarshalColumn(native any) dynval.Value {
	if native == nil {
		return dynval.Null()
	}
	for _, probe := range readProbes {
		if v, ok := probe(native); ok {
			return v
		}
	}
	return dynval.Null()
}

func probeInt(native any) (dynval.Value, bool) {
	switch n := native.(type) {
	case int64:
		return dynval.Int(n), true
	case int:
		return dynval.Int(int64(n)), true
	case bool:
		// SQLite stores booleans as integers; some drivers hand them
		// back pre-converted.
		if n {
			return dynval.Int(1), true
		}
		return dynval.Int(0), true
	}
	return dynval.Null(), false
}

func probeFloat(native any) (dynval.Value, bool) {
	if f, ok := native.(float64); ok {
		return dynval.Float(f), true
	}
	return dynval.Null(), false
}

func probeText(native any) (dynval.Value, bool) {
	if s, ok := native.(string); ok {
		return dynval.Text(s), true
	}
	return dynval.Null(), false
}

func probeBinary(native any) (dynval.Value, bool) {
	if b, ok := native.([]byte); ok {
		// Copy out of the driver's scan buffer; it is reused between rows.
		out := make([]byte, len(b))
		copy(out, b)
		return dynval.Binary(out), true
	}
	return dynval.Null(), false
}
