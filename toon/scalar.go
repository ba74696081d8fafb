package toon

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Scalar Formatting
// ============================================================

// Literal spellings are case-sensitive: True, FALSE, None are plain strings.
const (
	litNull  = "null"
	litTrue  = "true"
	litFalse = "false"
)

// formatScalar returns the wire form of a scalar value. Strings are
// selectively quoted against the active delimiter. NaN and infinities
// have no wire form and fall back to null (the normalizer maps them to
// null before encoding, this covers un-normalized input).
func formatScalar(v *Value, delim byte) string {
	if v.IsNull() {
		return litNull
	}
	switch v.kind {
	case KindBool:
		if v.boolVal {
			return litTrue
		}
		return litFalse
	case KindNumber:
		if v.numInt {
			return strconv.FormatInt(v.intVal, 10)
		}
		return formatFloat(v.floatVal)
	case KindString:
		return formatString(v.strVal, delim)
	default:
		return litNull
	}
}

// formatFloat uses the shortest representation that round-trips, keeping
// a decimal point or exponent so the decoder reads it back as a float.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return litNull
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatString returns s bare when safe, quoted otherwise.
func formatString(s string, delim byte) string {
	if needsQuotes(s, delim) {
		return quoteString(s)
	}
	return s
}

// needsQuotes reports whether a string must be quoted to survive a
// round-trip. A string is quoted iff it is empty, spells a literal,
// parses fully as a number, carries leading/trailing whitespace, or
// contains a quote, a structural character, the active delimiter, or a
// control character.
func needsQuotes(s string, delim byte) bool {
	if s == "" {
		return true
	}
	switch s {
	case litNull, litTrue, litFalse:
		return true
	}
	if parsesAsNumber(s) {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ':' || c == '[' || c == ']' || c == '-' || c == '"':
			return true
		case c == delim:
			return true
		case c < 0x20:
			return true
		}
	}
	return false
}

// parsesAsNumber reports whether the decoder would read s as a number.
// The leading-character guard keeps word spellings like "NaN" and "inf"
// (which strconv accepts) out of the number space.
func parsesAsNumber(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; c != '-' && c != '+' && c != '.' && (c < '0' || c > '9') {
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// quoteString wraps s in double quotes, escaping the backslash, the
// quote, and control characters. The escape set is symmetric with
// unquoteString.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// unquoteString reverses quoteString. The input must start and end with
// an unescaped double quote with no trailing text; ok is false otherwise.
func unquoteString(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' {
		return "", false
	}
	var sb strings.Builder
	sb.Grow(len(s) - 2)
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '"' {
			// Closing quote must end the token.
			return sb.String(), i == len(s)-1
		}
		if c == '\\' {
			if i+1 >= len(s) {
				return "", false
			}
			switch e := s[i+1]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(e)
			}
			i += 2
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return "", false // unterminated
}

// ============================================================
// Scalar Parsing
// ============================================================

// parseScalar reads a scalar literal: exact null/true/false, a quoted
// string, an integer, a float, or a bare string. ok is false only for a
// malformed quoted string.
func parseScalar(s string) (*Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Str(""), true
	}

	switch s {
	case litNull:
		return Null(), true
	case litTrue:
		return Bool(true), true
	case litFalse:
		return Bool(false), true
	}

	if strings.HasPrefix(s, `"`) {
		unq, ok := unquoteString(s)
		if !ok {
			return nil, false
		}
		return Str(unq), true
	}

	if c := s[0]; c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f), true
		}
	}

	return Str(s), true
}

// ============================================================
// Delimited Cells
// ============================================================

// joinCells joins wire-formatted cells with the delimiter, padding with
// a space for readability except under the tab delimiter.
func joinCells(cells []string, delim byte) string {
	sep := string(delim) + " "
	if delim == '\t' {
		sep = "\t"
	}
	return strings.Join(cells, sep)
}

// splitCells splits a row on the delimiter, honoring quoted cells so an
// escaped delimiter inside quotes does not split. ok is false on an
// unterminated quote.
func splitCells(s string, delim byte) ([]string, bool) {
	var cells []string
	var start int
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case inQuote && c == '\\':
			i++ // skip escaped character
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == delim:
			cells = append(cells, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if inQuote {
		return nil, false
	}
	cells = append(cells, strings.TrimSpace(s[start:]))
	return cells, true
}
