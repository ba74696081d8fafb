package toon

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeOptions configures the encoder.
type EncodeOptions struct {
	// Delimiter separates inline values and tabular cells: ',', '\t', or '|'.
	Delimiter byte

	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int

	// PreferTabular encodes uniform object arrays as tables. When false
	// they fall back to dash-marked list form.
	PreferTabular bool

	// LengthMarker prefixes array counts with '#'.
	LengthMarker bool
}

// DefaultEncodeOptions returns the standard comma/2-space configuration.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Delimiter:     ',',
		IndentWidth:   2,
		PreferTabular: true,
	}
}

// EncodeError reports input the TOON grammar cannot represent.
type EncodeError struct {
	Message string
}

func (e *EncodeError) Error() string {
	return "toon: " + e.Message
}

func encodeErrorf(format string, args ...any) *EncodeError {
	return &EncodeError{Message: fmt.Sprintf(format, args...)}
}

// Encode converts a document to TOON text. The document must be an
// object; the grammar has no top-level form for scalars or arrays.
func Encode(doc *Value, opts EncodeOptions) (string, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	switch opts.Delimiter {
	case ',', '\t', '|':
	default:
		return "", encodeErrorf("unsupported delimiter %q", opts.Delimiter)
	}
	if opts.IndentWidth <= 0 {
		opts.IndentWidth = 2
	}
	if doc == nil || doc.Kind() != KindObject {
		return "", encodeErrorf("document must be an object, got %s", doc.Kind())
	}

	e := &encoder{opts: opts}
	if err := e.run(doc); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

type encoder struct {
	sb    strings.Builder
	opts  EncodeOptions
	first bool
}

// encFrame is one level of the traversal. Nesting depth is input-
// controlled, so the walk uses an explicit frame stack instead of
// recursion.
type encFrame struct {
	fields []Field  // object frame
	elems  []*Value // list-array frame
	idx    int
	indent int
	isList bool
}

func (e *encoder) run(doc *Value) error {
	e.first = true
	stack := []*encFrame{{fields: doc.fields}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.isList {
			if f.idx >= len(f.elems) {
				stack = stack[:len(stack)-1]
				continue
			}
			el := f.elems[f.idx]
			f.idx++
			next, err := e.listElement(el, f.indent)
			if err != nil {
				return err
			}
			if next != nil {
				stack = append(stack, next)
			}
			continue
		}

		if f.idx >= len(f.fields) {
			stack = stack[:len(stack)-1]
			continue
		}
		fld := f.fields[f.idx]
		f.idx++
		next, err := e.objectField(fld, f.indent)
		if err != nil {
			return err
		}
		if next != nil {
			stack = append(stack, next)
		}
	}
	return nil
}

// objectField emits one object entry and returns a frame to push when the
// entry opens a nested block.
func (e *encoder) objectField(fld Field, indent int) (*encFrame, error) {
	key := formatString(fld.Key, e.opts.Delimiter)
	val := fld.Value

	switch val.Kind() {
	case KindObject:
		e.writeLine(indent, key+":")
		return &encFrame{fields: val.fields, indent: indent + 1}, nil

	case KindArray:
		return e.arrayValue(key, val, indent)

	default:
		e.writeLine(indent, key+": "+formatScalar(val, e.opts.Delimiter))
		return nil, nil
	}
}

// listElement emits one dash-marked element of a list array.
func (e *encoder) listElement(el *Value, indent int) (*encFrame, error) {
	switch el.Kind() {
	case KindObject:
		e.writeLine(indent, "-")
		return &encFrame{fields: el.fields, indent: indent + 1}, nil

	case KindArray:
		return e.arrayValue("-", el, indent)

	default:
		e.writeLine(indent, "- "+formatScalar(el, e.opts.Delimiter))
		return nil, nil
	}
}

// arrayValue emits an array under the given anchor, which is either a
// formatted key or the "-" list marker. Returns a frame for list bodies.
func (e *encoder) arrayValue(anchor string, arr *Value, indent int) (*encFrame, error) {
	kind, err := arr.ArrayKind()
	if err != nil {
		return nil, encodeErrorf("%v", err)
	}
	if kind == ArrayTabular && !e.opts.PreferTabular {
		kind = ArrayList
	}
	n := len(arr.elems)

	switch {
	case n == 0:
		// Empty arrays use the bare list header regardless of kind.
		e.writeLine(indent, anchor+" "+e.header(0, 0))
		return nil, nil

	case kind == ArrayPrimitive:
		cells := make([]string, n)
		for i, el := range arr.elems {
			cells[i] = formatScalar(el, e.opts.Delimiter)
		}
		// Non-comma delimiters go into the header so the decoder knows
		// how to split the inline values.
		hdrDelim := byte(0)
		if e.opts.Delimiter != ',' {
			hdrDelim = e.opts.Delimiter
		}
		e.writeLine(indent, anchor+" "+e.header(n, hdrDelim)+": "+joinCells(cells, e.opts.Delimiter))
		return nil, nil

	case kind == ArrayTabular:
		e.writeLine(indent, anchor+" "+e.header(n, e.opts.Delimiter))
		e.writeTable(arr.elems, indent+1)
		return nil, nil

	default:
		e.writeLine(indent, anchor+" "+e.header(n, 0))
		return &encFrame{elems: arr.elems, indent: indent + 1, isList: true}, nil
	}
}

// writeTable emits the column-name row and the data rows of a tabular
// array. Column order is fixed by the first element's field order; cells
// are scalars by classification, so this loop never nests.
func (e *encoder) writeTable(rows []*Value, indent int) {
	delim := e.opts.Delimiter
	cols := make([]string, len(rows[0].fields))
	names := make([]string, len(cols))
	for i, f := range rows[0].fields {
		cols[i] = f.Key
		names[i] = formatString(f.Key, delim)
	}
	e.writeLine(indent, joinCells(names, delim))

	cells := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			cells[i] = formatScalar(row.Get(col), delim)
		}
		e.writeLine(indent, joinCells(cells, delim))
	}
}

// header renders an array header: [N], [#N], [N,], [#N|], ...
func (e *encoder) header(n int, delim byte) string {
	var sb strings.Builder
	sb.WriteByte('[')
	if e.opts.LengthMarker {
		sb.WriteByte('#')
	}
	sb.WriteString(strconv.Itoa(n))
	if delim != 0 {
		sb.WriteByte(delim)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (e *encoder) writeLine(indent int, s string) {
	if !e.first {
		e.sb.WriteByte('\n')
	}
	e.first = false
	for i := 0; i < indent*e.opts.IndentWidth; i++ {
		e.sb.WriteByte(' ')
	}
	e.sb.WriteString(s)
}
