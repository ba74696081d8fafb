package toon

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
)

// ============================================================
// Normalization
// ============================================================

// Normalize returns a copy of v with non-encodable numbers replaced:
// NaN and ±Inf become null, negative zero becomes 0. Containers are
// rebuilt, scalars are copied. Normalize is idempotent.
func Normalize(v *Value) *Value {
	if v == nil {
		return Null()
	}
	if v.kind != KindObject && v.kind != KindArray {
		return normScalar(v)
	}

	type frame struct {
		src *Value
		dst *Value
		idx int
	}
	root := emptyLike(v)
	stack := []frame{{src: v, dst: root}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		var child *Value
		var key string
		if f.src.kind == KindObject {
			if f.idx >= len(f.src.fields) {
				stack = stack[:len(stack)-1]
				continue
			}
			key = f.src.fields[f.idx].Key
			child = f.src.fields[f.idx].Value
		} else {
			if f.idx >= len(f.src.elems) {
				stack = stack[:len(stack)-1]
				continue
			}
			child = f.src.elems[f.idx]
		}
		f.idx++

		var out *Value
		switch {
		case child == nil:
			out = Null()
		case child.kind == KindObject || child.kind == KindArray:
			out = emptyLike(child)
			stack = append(stack, frame{src: child, dst: out})
			f = &stack[len(stack)-2] // re-point after append
		default:
			out = normScalar(child)
		}

		// Source objects already have unique keys, so append directly
		// instead of paying Set's duplicate scan.
		if f.src.kind == KindObject {
			f.dst.fields = append(f.dst.fields, Field{Key: key, Value: out})
		} else {
			f.dst.elems = append(f.dst.elems, out)
		}
	}
	return root
}

func emptyLike(v *Value) *Value {
	if v.kind == KindObject {
		o := Object()
		o.fields = make([]Field, 0, len(v.fields))
		return o
	}
	a := Array()
	a.elems = make([]*Value, 0, len(v.elems))
	return a
}

func normScalar(v *Value) *Value {
	switch v.kind {
	case KindNull:
		return Null()
	case KindBool:
		return Bool(v.boolVal)
	case KindString:
		return Str(v.strVal)
	case KindNumber:
		if v.numInt {
			return Int(v.intVal)
		}
		f := v.floatVal
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Null()
		}
		if f == 0 && math.Signbit(f) {
			return Int(0)
		}
		return Float(f)
	default:
		return Null()
	}
}

// ============================================================
// Go Value Conversion
// ============================================================

// FromGo converts an arbitrary Go value into a document value.
//
// Scalars map directly; time.Time becomes an RFC 3339 string; big and
// json.Number values become numbers; NaN, ±Inf and negative zero are
// normalized the same way Normalize does. map[K]struct{} with a scalar
// comparable key type becomes a sorted array. Ordinary maps are sorted
// by key for deterministic output. Func and chan values become null.
func FromGo(v any) (*Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Str(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return fromFloat(float64(x)), nil
	case float64:
		return fromFloat(x), nil
	case time.Time:
		return Str(x.UTC().Format(time.RFC3339Nano)), nil
	case gojson.Number:
		return fromNumberString(string(x)), nil
	case *big.Int:
		if x == nil {
			return Null(), nil
		}
		if x.IsInt64() {
			return Int(x.Int64()), nil
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return fromFloat(f), nil
	case *big.Float:
		if x == nil {
			return Null(), nil
		}
		f, _ := x.Float64()
		return fromFloat(f), nil
	case *big.Rat:
		if x == nil {
			return Null(), nil
		}
		f, _ := x.Float64()
		return fromFloat(f), nil
	case []any:
		arr := Array()
		for _, e := range x {
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			arr.Append(ev)
		}
		return arr, nil
	case map[string]any:
		obj := Object()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kv, err := FromGo(x[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, kv)
		}
		return obj, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromUint(u uint64) *Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Float(float64(u))
}

func fromFloat(f float64) *Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	if f == 0 && math.Signbit(f) {
		return Int(0)
	}
	return Float(f)
}

func fromNumberString(s string) *Value {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Str(s)
	}
	return fromFloat(f)
}

// fromReflect handles typed slices, maps, structs and pointers that the
// concrete-type switch did not cover.
func fromReflect(rv reflect.Value) (*Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromGo(rv.Elem().Interface())

	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		arr := Array()
		for i := 0; i < rv.Len(); i++ {
			ev, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			arr.Append(ev)
		}
		return arr, nil

	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		if isSetType(rv.Type()) {
			return fromSet(rv)
		}
		return fromMap(rv)

	case reflect.Struct:
		return fromStruct(rv)

	default:
		// Funcs, channels and anything else without a data shape.
		return Null(), nil
	}
}

// isSetType reports whether t is map[K]struct{}, the conventional set.
func isSetType(t reflect.Type) bool {
	return t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// fromSet converts map[K]struct{} into a sorted array of its keys. Only
// scalar comparable key types are accepted; anything richer has no
// stable text order.
func fromSet(rv reflect.Value) (*Value, error) {
	kt := rv.Type().Key()
	switch kt.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
	default:
		return nil, fmt.Errorf("toon: set key type %s is not a scalar", kt)
	}

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return lessReflectKey(keys[i], keys[j]) })

	arr := Array()
	for _, k := range keys {
		kv, err := FromGo(k.Interface())
		if err != nil {
			return nil, err
		}
		arr.Append(kv)
	}
	return arr, nil
}

func lessReflectKey(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Bool:
		return !a.Bool() && b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	default:
		return a.String() < b.String()
	}
}

// fromMap converts a typed Go map into an object, entries sorted by
// their rendered key.
func fromMap(rv reflect.Value) (*Value, error) {
	type entry struct {
		name string
		val  reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		name, err := mapKeyName(iter.Key())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: name, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	obj := Object()
	for _, e := range entries {
		v, err := FromGo(e.val.Interface())
		if err != nil {
			return nil, err
		}
		obj.Set(e.name, v)
	}
	return obj, nil
}

func mapKeyName(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	default:
		return "", fmt.Errorf("toon: map key type %s cannot become a field name", k.Type())
	}
}

// fromStruct converts exported struct fields in declaration order,
// honoring json tag names so the same types serve both codecs.
func fromStruct(rv reflect.Value) (*Value, error) {
	rt := rv.Type()
	obj := Object()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			base, _, _ := strings.Cut(tag, ",")
			if base == "-" {
				continue
			}
			if base != "" {
				name = base
			}
		}
		v, err := FromGo(rv.Field(i).Interface())
		if err != nil {
			return nil, err
		}
		obj.Set(name, v)
	}
	return obj, nil
}
