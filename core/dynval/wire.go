package dynval

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"

	"github.com/toolwire/sqlbridge/core/errors"
)

// Decode converts one wire (JSON) value into a Value.
//
// Numbers decode to Int when they fit a signed 64-bit integer. An unsigned
// value beyond that range clamps to math.MaxInt64 rather than failing; this
// is a documented lossy policy. Everything else numeric decodes to Float.
// Arrays and objects have no member in the closed set, so they are
// serialized to their compact canonical text and carried as Text.
func Decode(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Null(), errors.NewParse("JSON", "empty value")
	}

	switch trimmed[0] {
	case 'n':
		if string(trimmed) != "null" {
			return Null(), errors.NewParse("JSON", "malformed literal "+string(trimmed))
		}
		return Null(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return Null(), errors.NewParse("JSON", err.Error())
		}
		return Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Null(), errors.NewParse("JSON", err.Error())
		}
		return Text(s), nil
	case '[', '{':
		// Store structured data as text.
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return Null(), errors.NewParse("JSON", err.Error())
		}
		return Text(buf.String()), nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return Null(), errors.NewParse("JSON", err.Error())
		}
		return decodeNumber(n), nil
	}
}

// decodeNumber applies the fixed numeric mapping: signed 64-bit first,
// then the unsigned-overflow clamp, then float. A number that parses as
// none of the three maps to Null.
func decodeNumber(n json.Number) Value {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Int(math.MaxInt64)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return Null()
}

// DecodeList converts a wire JSON array into a Value slice, preserving
// element order. A null or absent array decodes to nil.
func DecodeList(raw json.RawMessage) ([]Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, errors.NewParse("JSON", err.Error())
	}

	out := make([]Value, 0, len(elems))
	for _, e := range elems {
		v, err := Decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Field is one entry of an ordered column-to-value mapping.
type Field struct {
	Name  string
	Value Value
}

// DecodeFields converts a wire JSON object into an ordered list of fields.
// Go maps do not preserve key order, so the object is walked with a token
// decoder; the caller's column order is a correctness input for statement
// building and must survive decoding. A duplicated key keeps its first
// position and its last value, the way ordinary JSON object decoding
// resolves duplicates.
func DecodeFields(raw json.RawMessage) ([]Field, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.NewParse("JSON", err.Error())
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.NewParse("JSON", "expected object")
	}

	var fields []Field
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.NewParse("JSON", err.Error())
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.NewParse("JSON", "expected object key")
		}

		var rawVal json.RawMessage
		if err := dec.Decode(&rawVal); err != nil {
			return nil, errors.NewParse("JSON", err.Error())
		}
		val, err := Decode(rawVal)
		if err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			fields[i].Value = val
			continue
		}
		index[key] = len(fields)
		fields = append(fields, Field{Name: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.NewParse("JSON", err.Error())
	}
	return fields, nil
}

// MarshalJSON encodes the value in its wire representation. Binary has no
// wire literal of its own and is re-encoded as base64 text.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindText:
		return json.Marshal(v.s)
	case KindBinary:
		return json.Marshal(base64.StdEncoding.EncodeToString(v.raw))
	default:
		return []byte("null"), nil
	}
}
