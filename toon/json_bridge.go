package toon

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between JSON and document values. The reader walks the token
// stream instead of unmarshaling into map[string]any, so object key
// order survives the trip. Numbers keep their int/float distinction via
// UseNumber.

// FromJSON parses JSON bytes into a document value.
func FromJSON(data []byte) (*Value, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	type jframe struct {
		val     *Value
		key     string
		haveKey bool
	}
	var stack []*jframe
	var root *Value

	place := func(v *Value) error {
		if len(stack) == 0 {
			if root != nil {
				return fmt.Errorf("toon: multiple top-level JSON values")
			}
			root = v
			return nil
		}
		top := stack[len(stack)-1]
		if top.val.kind == KindObject {
			top.val.Set(top.key, v)
			top.haveKey = false
		} else {
			top.val.Append(v)
		}
		return nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("toon: JSON parse error: %w", err)
		}

		switch t := tok.(type) {
		case gojson.Delim:
			switch t {
			case '{', '[':
				var c *Value
				if t == '{' {
					c = Object()
				} else {
					c = Array()
				}
				if err := place(c); err != nil {
					return nil, err
				}
				stack = append(stack, &jframe{val: c})
			case '}', ']':
				stack = stack[:len(stack)-1]
			}

		case string:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.val.kind == KindObject && !top.haveKey {
					top.key = t
					top.haveKey = true
					continue
				}
			}
			if err := place(Str(t)); err != nil {
				return nil, err
			}

		case bool:
			if err := place(Bool(t)); err != nil {
				return nil, err
			}

		case gojson.Number:
			if err := place(fromNumberString(string(t))); err != nil {
				return nil, err
			}

		case nil:
			if err := place(Null()); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("toon: unexpected JSON token %T", tok)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("toon: empty JSON input")
	}
	return root, nil
}

// ToJSON renders a document value as compact JSON, object fields in
// insertion order. NaN and infinities, which JSON cannot carry, become
// null the way Normalize maps them.
func ToJSON(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if v == nil {
		buf.WriteString("null")
		return buf.Bytes(), nil
	}
	if v.kind != KindObject && v.kind != KindArray {
		if err := writeJSONScalar(&buf, v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	type wframe struct {
		v   *Value
		idx int
	}
	stack := []*wframe{{v: v}}
	writeOpen(&buf, v)

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		var n int
		if f.v.kind == KindObject {
			n = len(f.v.fields)
		} else {
			n = len(f.v.elems)
		}
		if f.idx >= n {
			writeClose(&buf, f.v)
			stack = stack[:len(stack)-1]
			continue
		}
		if f.idx > 0 {
			buf.WriteByte(',')
		}

		var child *Value
		if f.v.kind == KindObject {
			fld := f.v.fields[f.idx]
			if err := writeJSONString(&buf, fld.Key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			child = fld.Value
		} else {
			child = f.v.elems[f.idx]
		}
		f.idx++

		switch {
		case child == nil:
			buf.WriteString("null")
		case child.kind == KindObject || child.kind == KindArray:
			writeOpen(&buf, child)
			stack = append(stack, &wframe{v: child})
		default:
			if err := writeJSONScalar(&buf, child); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

func writeOpen(buf *bytes.Buffer, v *Value) {
	if v.kind == KindObject {
		buf.WriteByte('{')
	} else {
		buf.WriteByte('[')
	}
}

func writeClose(buf *bytes.Buffer, v *Value) {
	if v.kind == KindObject {
		buf.WriteByte('}')
	} else {
		buf.WriteByte(']')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := gojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("toon: JSON string encode: %w", err)
	}
	buf.Write(b)
	return nil
}

func writeJSONScalar(buf *bytes.Buffer, v *Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolVal))
	case KindNumber:
		if v.numInt {
			buf.WriteString(strconv.FormatInt(v.intVal, 10))
			return nil
		}
		f := v.floatVal
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case KindString:
		return writeJSONString(buf, v.strVal)
	default:
		buf.WriteString("null")
	}
	return nil
}
