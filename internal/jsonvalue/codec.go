package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/buger/jsonparser"
)

// ErrUnsupportedNumber is returned when encoding NaN or an infinity.
var ErrUnsupportedNumber = errors.New("unsupported number")

// ErrInvalidJSON is returned by Parse for malformed input.
var ErrInvalidJSON = errors.New("invalid json")

// MarshalJSON encodes v as compact JSON, preserving object field order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v to w. A non-empty indent produces pretty output.
func Encode(w io.Writer, v Value, indent string) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", indent); err != nil {
			return err
		}
		data = pretty.Bytes()
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return fmt.Errorf("%w: %v", ErrUnsupportedNumber, v.n)
		}
		buf.WriteString(formatNumber(v.n))
	case KindString:
		encodeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		i := 0
		for pair := v.obj.fields.Oldest(); pair != nil; pair = pair.Next() {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeString(buf, pair.Key)
			buf.WriteByte(':')
			if err := pair.Value.encode(buf); err != nil {
				return fmt.Errorf("field %q: %w", pair.Key, err)
			}
			i++
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown kind %s", v.kind)
	}
	return nil
}

// formatNumber prints integral values without exponent, matching what
// encoding/json produces for float64.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	abs := math.Abs(n)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(n, 'e', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// encodeString writes s as a JSON string without HTML escaping, so HDL
// operators such as "<=" stay readable.
func encodeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// Parse decodes a JSON document into a Value, keeping object field order.
// Input must be strict RFC 8259 JSON: trailing commas are rejected. Strings
// holding a lone UTF-16 surrogate escape are rejected as well.
func Parse(data []byte) (Value, error) {
	if !json.Valid(data) {
		return Null(), fmt.Errorf("%w: malformed document", ErrInvalidJSON)
	}
	raw, typ, end, err := jsonparser.Get(data)
	if err != nil {
		return Null(), fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if rest := bytes.TrimSpace(data[end:]); len(rest) > 0 {
		return Null(), fmt.Errorf("%w: trailing data at offset %d", ErrInvalidJSON, end)
	}
	return decode(raw, typ)
}

func decode(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return Null(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Null(), fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return Bool(b), nil
	case jsonparser.Number:
		n, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return Null(), fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return Number(n), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Null(), fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return String(s), nil
	case jsonparser.Array:
		items := []Value{}
		var itemErr error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			item, err := decode(value, dataType)
			if err != nil {
				itemErr = err
				return
			}
			items = append(items, item)
		})
		if itemErr != nil {
			return Null(), itemErr
		}
		if err != nil {
			return Null(), fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return Value{kind: KindArray, arr: items}, nil
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
			field, err := decode(value, dataType)
			if err != nil {
				return err
			}
			obj.Set(string(key), field)
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrInvalidJSON) {
				return Null(), err
			}
			return Null(), fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		return Null(), fmt.Errorf("%w: unexpected token %q", ErrInvalidJSON, raw)
	}
}
