package toon

import (
	"fmt"
	"strings"
)

// ============================================================
// Validation
// ============================================================

// ValidationLevel selects how the validator grades structural
// deviations. Strict grades them as the strict decoder would fail;
// lenient downgrades recoverable ones to warnings.
type ValidationLevel uint8

const (
	LevelStrict ValidationLevel = iota
	LevelLenient
)

// Severity of a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one validator finding.
type Diagnostic struct {
	Line     int    // 1-based
	Severity Severity
	Code     string // machine-readable, e.g. "length_mismatch"
	Message  string
	Context  string // the offending line
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s [%s]: %s", d.Line, d.Severity, d.Code, d.Message)
}

// ValidationResult contains all findings of one pass. Unlike Decode the
// validator never aborts; it reports everything it can see.
type ValidationResult struct {
	Valid    bool
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// ValidateOptions configures a validation pass.
type ValidateOptions struct {
	Level       ValidationLevel
	IndentWidth int
}

// Validate checks TOON text without building a document.
func Validate(text string, level ValidationLevel) ValidationResult {
	return ValidateWithOptions(text, ValidateOptions{Level: level, IndentWidth: 2})
}

// ValidateWithOptions is Validate with a configurable indent width.
func ValidateWithOptions(text string, opts ValidateOptions) ValidationResult {
	if opts.IndentWidth <= 0 {
		opts.IndentWidth = 2
	}
	v := &validator{cur: newLineCursor(text), opts: opts}
	v.run()
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	cur      *lineCursor
	opts     ValidateOptions
	errors   []Diagnostic
	warnings []Diagnostic
}

type valFrame struct {
	owner      int
	isList     bool
	declared   int
	count      int
	headerLine int
	headerText string
}

func (v *validator) add(sev Severity, code string, line int, ctx, format string, args ...any) {
	d := Diagnostic{
		Line:     line,
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Context:  ctx,
	}
	if sev == SeverityError {
		v.errors = append(v.errors, d)
	} else {
		v.warnings = append(v.warnings, d)
	}
}

// graded returns the severity for findings the strict decoder rejects
// but the lenient one tolerates.
func (v *validator) graded() Severity {
	if v.opts.Level == LevelStrict {
		return SeverityError
	}
	return SeverityWarning
}

func (v *validator) run() {
	stack := []*valFrame{{owner: -1}}

	for {
		raw, ok := v.cur.peek()
		if !ok {
			break
		}
		line := v.cur.lineNum()
		indent, hasTab := countIndent(raw)
		if hasTab {
			v.add(v.graded(), "indent_tab", line, raw, "tab character in indentation")
		} else if indent%v.opts.IndentWidth != 0 {
			v.add(v.graded(), "indent_width", line, raw,
				"indent %d is not a multiple of %d", indent, v.opts.IndentWidth)
		}

		for len(stack) > 1 && indent <= stack[len(stack)-1].owner {
			v.closeFrame(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]

		var next *valFrame
		if top.isList {
			next = v.listItem(top, raw, indent)
		} else {
			next = v.objectEntry(raw, indent)
		}
		if next != nil {
			stack = append(stack, next)
		}
	}

	for len(stack) > 1 {
		v.closeFrame(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
}

func (v *validator) closeFrame(f *valFrame) {
	if f.isList && f.count != f.declared {
		v.add(SeverityError, "length_mismatch", f.headerLine, f.headerText,
			"declared %d elements, found %d", f.declared, f.count)
	}
}

func (v *validator) objectEntry(raw string, indent int) *valFrame {
	line := v.cur.lineNum()
	s := strings.TrimSpace(raw)

	_, rest, ok := v.splitKey(s, raw, line)
	if !ok {
		v.cur.advance()
		return nil
	}

	if rest[0] == '[' {
		return v.arrayEntry(rest, raw, indent, line)
	}

	valuePart := strings.TrimSpace(rest[1:])
	v.cur.advance()
	if valuePart != "" {
		v.checkScalar(valuePart, ',', line, raw)
	}
	return nil
}

func (v *validator) splitKey(s, raw string, line int) (string, string, bool) {
	if strings.HasPrefix(s, `"`) {
		n, ok := quotedTokenLen(s)
		if !ok {
			v.add(SeverityError, "syntax", line, raw, "unterminated quoted key")
			return "", "", false
		}
		rest := strings.TrimSpace(s[n:])
		if rest == "" || (rest[0] != ':' && rest[0] != '[') {
			v.add(SeverityError, "syntax", line, raw, "expected ':' or array header after key")
			return "", "", false
		}
		return s[:n], rest, true
	}
	ci := strings.IndexByte(s, ':')
	bi := strings.IndexByte(s, '[')
	switch {
	case bi >= 0 && (ci < 0 || bi < ci):
		return strings.TrimSpace(s[:bi]), s[bi:], true
	case ci >= 0:
		return strings.TrimSpace(s[:ci]), s[ci:], true
	default:
		v.add(SeverityError, "syntax", line, raw, "expected ':' in entry")
		return "", "", false
	}
}

func (v *validator) arrayEntry(rest, raw string, indent, line int) *valFrame {
	h, ok := parseArrayHeader(rest)
	if !ok {
		v.add(SeverityError, "bad_array_header", line, raw,
			"array header %q matches no header grammar", strings.TrimSpace(rest))
		v.cur.advance()
		return nil
	}

	switch {
	case h.hasColon:
		v.inlineArray(h, raw, line)
		v.cur.advance()
		return nil
	case h.delim != 0:
		v.tabularArray(h, raw, indent, line)
		return nil
	default:
		v.cur.advance()
		return &valFrame{
			owner:      indent,
			isList:     true,
			declared:   h.count,
			headerLine: line,
			headerText: raw,
		}
	}
}

func (v *validator) inlineArray(h arrayHeader, raw string, line int) {
	delim := h.delim
	if delim == 0 {
		delim = ','
	}
	n := 0
	if h.inline != "" {
		cells, ok := splitCells(h.inline, delim)
		if !ok {
			v.add(SeverityError, "syntax", line, raw, "unterminated quoted string in inline array")
			return
		}
		n = len(cells)
		for _, cell := range cells {
			v.checkScalar(cell, delim, line, raw)
		}
	}
	if n != h.count {
		v.add(SeverityError, "length_mismatch", line, raw, "declared %d elements, found %d", h.count, n)
	}
}

func (v *validator) tabularArray(h arrayHeader, raw string, indent, line int) {
	v.cur.advance()

	colLine, ok := v.cur.peek()
	if !ok || indentOf(colLine) <= indent {
		if h.count != 0 {
			v.add(SeverityError, "length_mismatch", line, raw, "declared %d rows, found 0", h.count)
		}
		return
	}
	cols, ok := splitCells(strings.TrimSpace(colLine), h.delim)
	if !ok {
		v.add(SeverityError, "syntax", v.cur.lineNum(), colLine, "unterminated quoted string in column row")
		v.cur.advance()
		return
	}
	v.cur.advance()

	rows := 0
	for {
		rowLine, ok := v.cur.peek()
		if !ok || indentOf(rowLine) <= indent {
			break
		}
		rl := v.cur.lineNum()
		cells, ok := splitCells(strings.TrimSpace(rowLine), h.delim)
		if !ok {
			v.add(SeverityError, "syntax", rl, rowLine, "unterminated quoted string in table row")
		} else {
			if len(cells) != len(cols) {
				v.add(SeverityError, "row_shape", rl, rowLine,
					"row has %d cells, header has %d columns", len(cells), len(cols))
			}
			for _, cell := range cells {
				v.checkScalar(cell, h.delim, rl, rowLine)
			}
		}
		rows++
		v.cur.advance()
	}
	if rows != h.count {
		v.add(SeverityError, "length_mismatch", line, raw, "declared %d rows, found %d", h.count, rows)
	}
}

func (v *validator) listItem(top *valFrame, raw string, indent int) *valFrame {
	line := v.cur.lineNum()
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "-") {
		v.add(v.graded(), "syntax", line, raw, "expected '-' list item")
		v.cur.advance()
		return nil
	}
	top.count++
	rest := strings.TrimSpace(s[1:])

	switch {
	case rest == "":
		v.cur.advance()
		return &valFrame{owner: indent}

	case rest[0] == '[':
		return v.arrayEntry(rest, raw, indent, line)

	default:
		if ci := strings.IndexByte(rest, ':'); ci >= 0 && !strings.HasPrefix(rest, `"`) {
			if bi := strings.IndexByte(rest, '['); bi >= 0 && bi < ci {
				v.add(v.graded(), "syntax", line, raw, "array header after a dash needs its own block")
				v.cur.advance()
				return nil
			}
			val := strings.TrimSpace(rest[ci+1:])
			v.cur.advance()
			if val != "" {
				v.checkScalar(val, ',', line, raw)
			}
			return &valFrame{owner: indent}
		}
		v.checkScalar(rest, ',', line, raw)
		v.cur.advance()
		return nil
	}
}

// literalCases are capitalizations of the keyword literals that decode
// as strings, which is rarely what the author meant.
var literalCases = map[string]string{
	"True":  litTrue,
	"TRUE":  litTrue,
	"False": litFalse,
	"FALSE": litFalse,
	"None":  litNull,
	"Null":  litNull,
	"NULL":  litNull,
}

// checkScalar lints a single scalar token: quoting that does nothing,
// structural characters left bare, and miscapitalized literals.
func (v *validator) checkScalar(tok string, delim byte, line int, raw string) {
	if strings.HasPrefix(tok, `"`) {
		unq, ok := unquoteString(tok)
		if !ok {
			v.add(SeverityError, "syntax", line, raw, "unterminated quoted string")
			return
		}
		if !needsQuotes(unq, delim) {
			v.add(SeverityWarning, "unnecessary_quotes", line, raw, "%s does not need quotes", tok)
		}
		return
	}

	if want, ok := literalCases[tok]; ok {
		v.add(SeverityWarning, "literal_case", line, raw,
			"%q decodes as a string; write %s for the literal", tok, want)
		return
	}
	if strings.ContainsAny(tok, `:[]"`) || strings.IndexByte(tok, delim) >= 0 {
		v.add(v.graded(), "unquoted_structural", line, raw,
			"%q contains structural characters and should be quoted", tok)
	}
}
