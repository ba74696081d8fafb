package toon

// classifyArray inspects array elements and picks their wire representation.
// The result is a pure function of structural shape:
//
//   - every element scalar (or the array is empty) → ArrayPrimitive
//   - every element an object, all sharing one key set, every value
//     scalar → ArrayTabular
//   - anything else → ArrayList
func classifyArray(elems []*Value) ArrayKind {
	if len(elems) == 0 {
		return ArrayPrimitive
	}

	allScalar := true
	for _, el := range elems {
		if !el.IsScalar() {
			allScalar = false
			break
		}
	}
	if allScalar {
		return ArrayPrimitive
	}

	for _, el := range elems {
		if el.Kind() != KindObject {
			return ArrayList
		}
	}

	// Column order comes from the first element; every other element must
	// carry the same key set (order-insensitive) with scalar values only.
	first := elems[0]
	keys := make(map[string]struct{}, len(first.fields))
	for _, f := range first.fields {
		keys[f.Key] = struct{}{}
	}
	if len(keys) != len(first.fields) {
		return ArrayList
	}

	for _, el := range elems {
		if len(el.fields) != len(keys) {
			return ArrayList
		}
		for _, f := range el.fields {
			if _, ok := keys[f.Key]; !ok {
				return ArrayList
			}
			if !f.Value.IsScalar() {
				return ArrayList
			}
		}
	}
	return ArrayTabular
}
