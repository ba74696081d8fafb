package toon

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeOptions configures the decoder.
type DecodeOptions struct {
	// Strict makes structural deviations (length mismatch, bad
	// indentation) fatal. Lenient mode trusts the parsed shape.
	Strict bool

	// IndentWidth is the expected number of spaces per nesting level.
	IndentWidth int
}

// DefaultDecodeOptions returns the strict 2-space configuration.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{Strict: true, IndentWidth: 2}
}

// DecodeErrorKind identifies the class of a decode failure.
type DecodeErrorKind uint8

const (
	// ErrSyntax covers malformed entries and unterminated quotes.
	ErrSyntax DecodeErrorKind = iota
	// ErrMalformedHeader means an array header matched none of the
	// three header grammars.
	ErrMalformedHeader
	// ErrLengthMismatch means a declared array length disagreed with
	// the parsed element count (strict mode only).
	ErrLengthMismatch
	// ErrIndentation means indentation was not a multiple of the
	// configured width, or contained a tab (strict mode only).
	ErrIndentation
	// ErrRowShape means a tabular row's cell count disagreed with the
	// header row.
	ErrRowShape
)

// String returns the error kind name.
func (k DecodeErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrMalformedHeader:
		return "malformed header"
	case ErrLengthMismatch:
		return "length mismatch"
	case ErrIndentation:
		return "indentation"
	case ErrRowShape:
		return "row shape"
	default:
		return "unknown"
	}
}

// DecodeError reports a decode failure with its 1-based line number and
// the offending line.
type DecodeError struct {
	Kind     DecodeErrorKind
	Line     int
	LineText string
	Message  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("toon: line %d: %s: %s", e.Line, e.Kind, e.Message)
}

// Decode parses TOON text into a value. The top level is an object; an
// empty document decodes to an empty object.
func Decode(text string, opts DecodeOptions) (*Value, error) {
	if opts.IndentWidth <= 0 {
		opts.IndentWidth = 2
	}
	d := &decoder{cur: newLineCursor(text), opts: opts}
	return d.run()
}

// ============================================================
// Line Cursor
// ============================================================

// lineCursor owns the scan position over the input lines. Handlers only
// peek and advance; there is no index arithmetic at call sites.
type lineCursor struct {
	lines []string
	pos   int
}

func newLineCursor(text string) *lineCursor {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return &lineCursor{lines: lines}
}

// peek returns the next non-blank line without consuming it. Blank lines
// are skipped permanently.
func (c *lineCursor) peek() (string, bool) {
	for c.pos < len(c.lines) {
		if strings.TrimSpace(c.lines[c.pos]) != "" {
			return c.lines[c.pos], true
		}
		c.pos++
	}
	return "", false
}

// advance consumes the current line.
func (c *lineCursor) advance() {
	if c.pos < len(c.lines) {
		c.pos++
	}
}

// lineNum returns the 1-based number of the current line.
func (c *lineCursor) lineNum() int {
	return c.pos + 1
}

// countIndent returns the indentation width in characters and whether a
// tab appears in it.
func countIndent(line string) (int, bool) {
	hasTab := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
		case '\t':
			hasTab = true
		default:
			return i, hasTab
		}
	}
	return len(line), hasTab
}

// ============================================================
// Decoder
// ============================================================

type decoder struct {
	cur  *lineCursor
	opts DecodeOptions
}

// checkIndent enforces the strict indentation rules for one line.
func (d *decoder) checkIndent(line string) error {
	if !d.opts.Strict {
		return nil
	}
	ind, hasTab := countIndent(line)
	if hasTab {
		return d.errf(ErrIndentation, line, "tab character in indentation")
	}
	if ind%d.opts.IndentWidth != 0 {
		return d.errf(ErrIndentation, line, "indent %d is not a multiple of %d", ind, d.opts.IndentWidth)
	}
	return nil
}

// decFrame is one level of open context. Entries of a frame sit at any
// indent deeper than owner; a line at or left of owner closes it.
type decFrame struct {
	container  *Value // object being filled, or list array being filled
	owner      int
	isList     bool
	declared   int // list frames: declared element count
	headerLine int
	headerText string
}

func (d *decoder) run() (*Value, error) {
	root := Object()
	stack := []*decFrame{{container: root, owner: -1}}

	for {
		raw, ok := d.cur.peek()
		if !ok {
			break
		}
		indent, _ := countIndent(raw)
		if err := d.checkIndent(raw); err != nil {
			return nil, err
		}

		// Close frames the dedent has ended.
		for len(stack) > 1 && indent <= stack[len(stack)-1].owner {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := d.closeFrame(f); err != nil {
				return nil, err
			}
		}
		top := stack[len(stack)-1]

		var next *decFrame
		var err error
		if top.isList {
			next, err = d.listItem(top, raw, indent)
		} else {
			next, err = d.objectEntry(top, raw, indent)
		}
		if err != nil {
			return nil, err
		}
		if next != nil {
			stack = append(stack, next)
		}
	}

	for len(stack) > 1 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := d.closeFrame(f); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// closeFrame runs the deferred strict checks of a finished context.
func (d *decoder) closeFrame(f *decFrame) error {
	if f.isList && d.opts.Strict && len(f.container.elems) != f.declared {
		return &DecodeError{
			Kind:     ErrLengthMismatch,
			Line:     f.headerLine,
			LineText: f.headerText,
			Message:  fmt.Sprintf("declared %d elements, found %d", f.declared, len(f.container.elems)),
		}
	}
	return nil
}

// attach binds a finished value into its parent: a keyed object field or
// an appended list element.
func attach(parent *Value, key string, keyed bool, v *Value) {
	if keyed {
		parent.Set(key, v)
	} else {
		parent.Append(v)
	}
}

// ============================================================
// Object Entries
// ============================================================

// objectEntry parses one "key: value" / "key:" / "key [header]" line into
// the open object. It returns a frame to push for nested blocks.
func (d *decoder) objectEntry(top *decFrame, raw string, indent int) (*decFrame, error) {
	s := strings.TrimSpace(raw)

	key, rest, err := d.splitKey(s, raw)
	if err != nil {
		if !d.opts.Strict {
			d.cur.advance() // lenient mode skips unparseable lines
			return nil, nil
		}
		return nil, err
	}

	if rest != "" && rest[0] == '[' {
		return d.arrayEntry(top.container, key, true, rest, raw, indent)
	}

	// Plain "key:" or "key: value".
	valuePart := strings.TrimSpace(rest[1:])
	if valuePart == "" {
		obj := Object()
		top.container.Set(key, obj)
		d.cur.advance()
		if nxt, ok := d.cur.peek(); ok {
			if ni, _ := countIndent(nxt); ni > indent {
				return &decFrame{container: obj, owner: indent}, nil
			}
		}
		return nil, nil
	}

	v, ok := parseScalar(valuePart)
	if !ok {
		return nil, d.errf(ErrSyntax, raw, "unterminated quoted string")
	}
	top.container.Set(key, v)
	d.cur.advance()
	return nil, nil
}

// splitKey separates the key token from the rest of an entry line. The
// returned rest starts with ':' or '['.
func (d *decoder) splitKey(s, raw string) (string, string, error) {
	if strings.HasPrefix(s, `"`) {
		n, ok := quotedTokenLen(s)
		if !ok {
			return "", "", d.errf(ErrSyntax, raw, "unterminated quoted key")
		}
		key, _ := unquoteString(s[:n])
		rest := strings.TrimSpace(s[n:])
		if rest == "" || (rest[0] != ':' && rest[0] != '[') {
			return "", "", d.errf(ErrSyntax, raw, "expected ':' or array header after key")
		}
		return key, rest, nil
	}

	ci := strings.IndexByte(s, ':')
	bi := strings.IndexByte(s, '[')
	switch {
	case bi >= 0 && (ci < 0 || bi < ci):
		return strings.TrimSpace(s[:bi]), s[bi:], nil
	case ci >= 0:
		return strings.TrimSpace(s[:ci]), s[ci:], nil
	default:
		return "", "", d.errf(ErrSyntax, raw, "expected ':' in entry")
	}
}

// quotedTokenLen returns the byte length of the quoted token opening s.
func quotedTokenLen(s string) (int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1, true
		}
	}
	return 0, false
}

// ============================================================
// Array Entries
// ============================================================

// arrayHeader is the parsed form of "[N]", "[#N]", "[N<delim>]", with an
// optional trailing ": inline values".
type arrayHeader struct {
	count    int
	delim    byte
	hasColon bool
	inline   string
}

func parseArrayHeader(rest string) (arrayHeader, bool) {
	var h arrayHeader
	rb := strings.IndexByte(rest, ']')
	if rb < 0 {
		return h, false
	}
	inside := rest[1:rb]
	inside = strings.TrimPrefix(inside, "#")
	if len(inside) == 0 {
		return h, false
	}
	if c := inside[len(inside)-1]; c == ',' || c == '\t' || c == '|' {
		h.delim = c
		inside = inside[:len(inside)-1]
	}
	n, err := strconv.Atoi(inside)
	if err != nil || n < 0 {
		return h, false
	}
	h.count = n

	tail := strings.TrimSpace(rest[rb+1:])
	if tail == "" {
		return h, true
	}
	if tail[0] != ':' {
		return h, false
	}
	h.hasColon = true
	h.inline = strings.TrimSpace(tail[1:])
	return h, true
}

// arrayEntry dispatches an array header found after a key or a list
// dash. The three grammars: "[N]:" inline primitive, "[N<delim>]"
// tabular block, "[N]" list block.
func (d *decoder) arrayEntry(parent *Value, key string, keyed bool, rest, raw string, indent int) (*decFrame, error) {
	h, ok := parseArrayHeader(rest)
	if !ok {
		return nil, d.errf(ErrMalformedHeader, raw, "array header %q matches no header grammar", strings.TrimSpace(rest))
	}

	switch {
	case h.hasColon:
		arr, err := d.inlineArray(h, raw)
		if err != nil {
			return nil, err
		}
		attach(parent, key, keyed, arr)
		d.cur.advance()
		return nil, nil

	case h.delim != 0:
		arr, err := d.tabularArray(h, raw, indent)
		if err != nil {
			return nil, err
		}
		attach(parent, key, keyed, arr)
		return nil, nil

	default:
		arr := Array()
		attach(parent, key, keyed, arr)
		f := &decFrame{
			container:  arr,
			owner:      indent,
			isList:     true,
			declared:   h.count,
			headerLine: d.cur.lineNum(),
			headerText: raw,
		}
		d.cur.advance()
		return f, nil
	}
}

// inlineArray parses the value list of a "[N]: v1, v2" primitive header.
// The split delimiter comes from the header when present, comma otherwise.
func (d *decoder) inlineArray(h arrayHeader, raw string) (*Value, error) {
	delim := h.delim
	if delim == 0 {
		delim = ','
	}

	arr := Array()
	if h.inline != "" {
		cells, ok := splitCells(h.inline, delim)
		if !ok {
			return nil, d.errf(ErrSyntax, raw, "unterminated quoted string in inline array")
		}
		for _, cell := range cells {
			v, ok := parseScalar(cell)
			if !ok {
				return nil, d.errf(ErrSyntax, raw, "unterminated quoted string in inline array")
			}
			arr.Append(v)
		}
	}

	if d.opts.Strict && len(arr.elems) != h.count {
		return nil, d.errf(ErrLengthMismatch, raw, "declared %d elements, found %d", h.count, len(arr.elems))
	}
	return arr, nil
}

// tabularArray consumes the column-name row and the data rows following
// a "[N<delim>]" header. Rows hold scalars only, so this is a bounded
// loop, not a nested context.
func (d *decoder) tabularArray(h arrayHeader, raw string, indent int) (*Value, error) {
	headerLine := d.cur.lineNum()
	d.cur.advance()

	arr := Array()
	colLine, ok := d.cur.peek()
	if !ok || indentOf(colLine) <= indent {
		// No column row. Fine for a declared-empty table.
		if d.opts.Strict && h.count != 0 {
			return nil, &DecodeError{Kind: ErrLengthMismatch, Line: headerLine, LineText: raw,
				Message: fmt.Sprintf("declared %d rows, found 0", h.count)}
		}
		return arr, nil
	}

	if err := d.checkIndent(colLine); err != nil {
		return nil, err
	}
	cols, ok := splitCells(strings.TrimSpace(colLine), h.delim)
	if !ok {
		return nil, d.errf(ErrSyntax, colLine, "unterminated quoted string in column row")
	}
	for i, c := range cols {
		if strings.HasPrefix(c, `"`) {
			if unq, ok := unquoteString(c); ok {
				cols[i] = unq
			}
		}
	}
	d.cur.advance()

	for {
		rowLine, ok := d.cur.peek()
		if !ok || indentOf(rowLine) <= indent {
			break
		}
		if err := d.checkIndent(rowLine); err != nil {
			return nil, err
		}
		cells, ok := splitCells(strings.TrimSpace(rowLine), h.delim)
		if !ok {
			return nil, d.errf(ErrSyntax, rowLine, "unterminated quoted string in table row")
		}
		if len(cells) != len(cols) {
			return nil, d.errf(ErrRowShape, rowLine, "row has %d cells, header has %d columns", len(cells), len(cols))
		}
		row := Object()
		for i, cell := range cells {
			v, ok := parseScalar(cell)
			if !ok {
				return nil, d.errf(ErrSyntax, rowLine, "unterminated quoted string in table row")
			}
			row.Set(cols[i], v)
		}
		arr.Append(row)
		d.cur.advance()
	}

	if d.opts.Strict && len(arr.elems) != h.count {
		return nil, &DecodeError{Kind: ErrLengthMismatch, Line: headerLine, LineText: raw,
			Message: fmt.Sprintf("declared %d rows, found %d", h.count, len(arr.elems))}
	}
	return arr, nil
}

func indentOf(line string) int {
	n, _ := countIndent(line)
	return n
}

// ============================================================
// List Items
// ============================================================

// listItem parses one dash-marked element of an open list array. The
// element is an inline scalar, an object block, a nested array, or (for
// hand-written input) an object whose first field shares the dash line.
func (d *decoder) listItem(top *decFrame, raw string, indent int) (*decFrame, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "-") {
		if !d.opts.Strict {
			d.cur.advance()
			return nil, nil
		}
		return nil, d.errf(ErrSyntax, raw, "expected '-' list item")
	}
	rest := strings.TrimSpace(s[1:])

	switch {
	case rest == "":
		obj := Object()
		top.container.Append(obj)
		d.cur.advance()
		return &decFrame{container: obj, owner: indent}, nil

	case rest[0] == '[':
		return d.arrayEntry(top.container, "", false, rest, raw, indent)

	case rest[0] == '"':
		v, ok := parseScalar(rest)
		if !ok {
			return nil, d.errf(ErrSyntax, raw, "unterminated quoted string")
		}
		top.container.Append(v)
		d.cur.advance()
		return nil, nil

	default:
		if ci := strings.IndexByte(rest, ':'); ci >= 0 {
			if bi := strings.IndexByte(rest, '['); bi >= 0 && bi < ci {
				if !d.opts.Strict {
					d.cur.advance()
					return nil, nil
				}
				return nil, d.errf(ErrSyntax, raw, "array header after a dash needs its own block")
			}
			// First field inline on the dash line.
			key := strings.TrimSpace(rest[:ci])
			val := strings.TrimSpace(rest[ci+1:])
			v, ok := parseScalar(val)
			if !ok {
				return nil, d.errf(ErrSyntax, raw, "unterminated quoted string")
			}
			obj := Object(F(key, v))
			top.container.Append(obj)
			d.cur.advance()
			return &decFrame{container: obj, owner: indent}, nil
		}
		v, _ := parseScalar(rest)
		top.container.Append(v)
		d.cur.advance()
		return nil, nil
	}
}

// errf builds a DecodeError at the cursor's current line.
func (d *decoder) errf(kind DecodeErrorKind, lineText, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:     kind,
		Line:     d.cur.lineNum(),
		LineText: lineText,
		Message:  fmt.Sprintf(format, args...),
	}
}
