package toon

import "fmt"

// Kind represents TOON value types.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// ArrayKind classifies how an array is represented on the wire.
type ArrayKind uint8

const (
	// ArrayPrimitive holds only scalar elements and encodes inline.
	ArrayPrimitive ArrayKind = iota
	// ArrayTabular holds uniform scalar-valued objects and encodes as
	// a header row plus delimiter-separated data rows.
	ArrayTabular
	// ArrayList is every other array and encodes with dash-marked entries.
	ArrayList
)

// String returns the array kind name.
func (k ArrayKind) String() string {
	switch k {
	case ArrayPrimitive:
		return "primitive"
	case ArrayTabular:
		return "tabular"
	case ArrayList:
		return "list"
	default:
		return "unknown"
	}
}

// Value represents a TOON value. The model is a closed sum:
// null, bool, number, string, object, array.
type Value struct {
	kind Kind

	// Scalar payloads (one valid based on kind)
	boolVal  bool
	floatVal float64
	intVal   int64
	numInt   bool // number carries an integer payload
	strVal   string

	// Container payloads
	fields []Field  // object: insertion-ordered, unique keys
	elems  []*Value // array

	// Cached array classification
	arrKind      ArrayKind
	arrKindKnown bool
}

// Field is a key/value pair in an object. Field order is significant:
// it controls emitted line order and tabular column order.
type Field struct {
	Key   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates a number value with an integer payload.
func Int(v int64) *Value {
	return &Value{kind: KindNumber, intVal: v, numInt: true}
}

// Float creates a number value with a float payload.
func Float(v float64) *Value {
	return &Value{kind: KindNumber, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Object creates an object value from fields.
func Object(fields ...Field) *Value {
	return &Value{kind: KindObject, fields: fields}
}

// Array creates an array value.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, elems: elems}
}

// F creates a Field for use in Object construction.
func F(key string, value *Value) Field {
	return Field{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind. A nil value reads as null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// IsScalar reports whether this is a null, bool, number, or string.
func (v *Value) IsScalar() bool {
	return v == nil || v.kind <= KindString
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("toon: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("toon: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the number payload as int64. It fails for float payloads.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("toon: nil value")
	}
	if v.kind != KindNumber || !v.numInt {
		return 0, fmt.Errorf("toon: expected integer number, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsFloat returns the number payload as float64, widening integers.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("toon: nil value")
	}
	if v.kind != KindNumber {
		return 0, fmt.Errorf("toon: expected number, got %s", v.kind)
	}
	if v.numInt {
		return float64(v.intVal), nil
	}
	return v.floatVal, nil
}

// AsStr returns the string payload.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("toon: nil value")
	}
	if v.kind != KindString {
		return "", fmt.Errorf("toon: expected string, got %s", v.kind)
	}
	return v.strVal, nil
}

// Fields returns the object fields.
func (v *Value) Fields() ([]Field, error) {
	if v == nil {
		return nil, fmt.Errorf("toon: nil value")
	}
	if v.kind != KindObject {
		return nil, fmt.Errorf("toon: expected object, got %s", v.kind)
	}
	return v.fields, nil
}

// Elems returns the array elements.
func (v *Value) Elems() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("toon: nil value")
	}
	if v.kind != KindArray {
		return nil, fmt.Errorf("toon: expected array, got %s", v.kind)
	}
	return v.elems, nil
}

// ArrayKind returns the array's classification. The classification is
// computed once and cached; mutation through Append invalidates it.
func (v *Value) ArrayKind() (ArrayKind, error) {
	if v == nil || v.kind != KindArray {
		return ArrayList, fmt.Errorf("toon: not an array")
	}
	if !v.arrKindKnown {
		v.arrKind = classifyArray(v.elems)
		v.arrKindKnown = true
	}
	return v.arrKind, nil
}

// Len returns the length of an object or array, 0 otherwise.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindObject:
		return len(v.fields)
	case KindArray:
		return len(v.elems)
	default:
		return 0
	}
}

// Get returns the value of the named object field, nil if absent.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// ============================================================
// Mutators
// ============================================================

// Set sets an object field. A later duplicate key overwrites the earlier
// one in place, preserving its original position.
func (v *Value) Set(key string, val *Value) {
	if v == nil || v.kind != KindObject {
		panic("toon: cannot set field on non-object")
	}
	for i := range v.fields {
		if v.fields[i].Key == key {
			v.fields[i].Value = val
			return
		}
	}
	v.fields = append(v.fields, Field{Key: key, Value: val})
}

// Append adds an element to an array.
func (v *Value) Append(val *Value) {
	if v == nil || v.kind != KindArray {
		panic("toon: cannot append to non-array")
	}
	v.elems = append(v.elems, val)
	v.arrKindKnown = false
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep equality of two values. Integer and float payloads
// compare as distinct numbers (1 != 1.0) so round-trips stay exact.
func (v *Value) Equal(o *Value) bool {
	type pair struct{ a, b *Value }
	stack := []pair{{v, o}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		a, b := p.a, p.b
		if a.IsNull() || b.IsNull() {
			if a.IsNull() != b.IsNull() {
				return false
			}
			continue
		}
		if a.kind != b.kind {
			return false
		}

		switch a.kind {
		case KindBool:
			if a.boolVal != b.boolVal {
				return false
			}
		case KindNumber:
			if a.numInt != b.numInt {
				return false
			}
			if a.numInt {
				if a.intVal != b.intVal {
					return false
				}
			} else if a.floatVal != b.floatVal {
				return false
			}
		case KindString:
			if a.strVal != b.strVal {
				return false
			}
		case KindObject:
			if len(a.fields) != len(b.fields) {
				return false
			}
			for i := range a.fields {
				if a.fields[i].Key != b.fields[i].Key {
					return false
				}
				stack = append(stack, pair{a.fields[i].Value, b.fields[i].Value})
			}
		case KindArray:
			if len(a.elems) != len(b.elems) {
				return false
			}
			for i := range a.elems {
				stack = append(stack, pair{a.elems[i], b.elems[i]})
			}
		}
	}
	return true
}
