package toon

import (
	"strings"
	"testing"
)

// ============================================================
// Validation Tests
// ============================================================

func hasFinding(ds []Diagnostic, code string, line int) bool {
	for _, d := range ds {
		if d.Code == code && d.Line == line {
			return true
		}
	}
	return false
}

func TestValidateCleanDocument(t *testing.T) {
	text := strings.Join([]string{
		"context:",
		"  task: classify",
		"users [2,]",
		"  id, name",
		"  1, Alice",
		"  2, Bob",
		"flags [2]: beta, verbose",
	}, "\n")

	res := Validate(text, LevelStrict)
	if !res.Valid {
		t.Errorf("expected valid, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", res.Warnings)
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	res := Validate("nums [3]: 1, 2", LevelStrict)
	if res.Valid || !hasFinding(res.Errors, "length_mismatch", 1) {
		t.Errorf("expected length_mismatch at line 1: %v", res.Errors)
	}

	// Length mismatches are structural data errors in both levels.
	res = Validate("nums [3]: 1, 2", LevelLenient)
	if res.Valid {
		t.Errorf("lenient level must still flag length mismatches as errors")
	}
}

func TestValidateListLengthMismatch(t *testing.T) {
	text := "items [3]\n  - a\n  - b"
	res := Validate(text, LevelStrict)
	if !hasFinding(res.Errors, "length_mismatch", 1) {
		t.Errorf("expected length_mismatch at the header line: %v", res.Errors)
	}
}

func TestValidateRowShape(t *testing.T) {
	text := strings.Join([]string{
		"users [1,]",
		"  id, name, role",
		"  1, Alice",
	}, "\n")
	res := Validate(text, LevelLenient)
	if !hasFinding(res.Errors, "row_shape", 3) {
		t.Errorf("expected row_shape at line 3: %v", res.Errors)
	}
}

func TestValidateBadHeader(t *testing.T) {
	for _, text := range []string{"xs [abc]: 1", "xs []: 1", "xs [2] junk"} {
		res := Validate(text, LevelLenient)
		if !hasFinding(res.Errors, "bad_array_header", 1) {
			t.Errorf("%q: expected bad_array_header: %v", text, res.Errors)
		}
	}
}

func TestValidateIndentGrading(t *testing.T) {
	text := "a:\n\tb: 1"

	res := Validate(text, LevelStrict)
	if !hasFinding(res.Errors, "indent_tab", 2) {
		t.Errorf("strict: expected indent_tab error: %v", res.Errors)
	}

	res = Validate(text, LevelLenient)
	if len(res.Errors) != 0 {
		t.Errorf("lenient: expected no errors, got: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, "indent_tab", 2) {
		t.Errorf("lenient: expected indent_tab warning: %v", res.Warnings)
	}
}

func TestValidateIndentWidth(t *testing.T) {
	res := Validate("a:\n   b: 1", LevelStrict)
	if !hasFinding(res.Errors, "indent_width", 2) {
		t.Errorf("expected indent_width at line 2: %v", res.Errors)
	}

	// A 3-space document is clean when validated at width 3.
	res = ValidateWithOptions("a:\n   b: 1", ValidateOptions{Level: LevelStrict, IndentWidth: 3})
	if !res.Valid {
		t.Errorf("expected valid at width 3: %v", res.Errors)
	}
}

func TestValidateUnnecessaryQuotes(t *testing.T) {
	res := Validate(`name: "Alice"`, LevelStrict)
	if !res.Valid {
		t.Errorf("quoting style is not an error: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, "unnecessary_quotes", 1) {
		t.Errorf("expected unnecessary_quotes warning: %v", res.Warnings)
	}

	// Quotes that carry meaning are fine.
	res = Validate(`name: "true"`, LevelStrict)
	if len(res.Warnings) != 0 {
		t.Errorf("quoted literal is necessary quoting: %v", res.Warnings)
	}
}

func TestValidateLiteralCase(t *testing.T) {
	for _, lit := range []string{"True", "FALSE", "None", "Null", "NULL"} {
		res := Validate("flag: "+lit, LevelStrict)
		if !res.Valid {
			t.Errorf("%s: literal case is a warning, not an error: %v", lit, res.Errors)
		}
		if !hasFinding(res.Warnings, "literal_case", 1) {
			t.Errorf("%s: expected literal_case warning: %v", lit, res.Warnings)
		}
	}
}

func TestValidateUnquotedStructural(t *testing.T) {
	res := Validate("note: a [1] b", LevelStrict)
	if !hasFinding(res.Errors, "unquoted_structural", 1) {
		t.Errorf("strict: expected unquoted_structural error: %v", res.Errors)
	}

	res = Validate("note: a [1] b", LevelLenient)
	if !hasFinding(res.Warnings, "unquoted_structural", 1) {
		t.Errorf("lenient: expected unquoted_structural warning: %v", res.Warnings)
	}
}

func TestValidateCollectsMultipleFindings(t *testing.T) {
	text := strings.Join([]string{
		"nums [3]: 1, 2",
		"flag: True",
		"xs [bad]: 1",
	}, "\n")

	res := Validate(text, LevelStrict)
	if !hasFinding(res.Errors, "length_mismatch", 1) {
		t.Errorf("missing length_mismatch: %v", res.Errors)
	}
	if !hasFinding(res.Errors, "bad_array_header", 3) {
		t.Errorf("missing bad_array_header: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, "literal_case", 2) {
		t.Errorf("missing literal_case: %v", res.Warnings)
	}
}

func TestValidateEncoderOutputIsClean(t *testing.T) {
	doc := Object(
		F("users", Array(
			makeUser(1, "Alice", "admin"),
			makeUser(2, "Bob", "user"),
		)),
		F("note", Str("a, b: [c]")),
		F("lit", Str("True")),
		F("items", Array(Int(1), Object(F("k", Str("v"))))),
	)
	text, err := Encode(doc, DefaultEncodeOptions())
	if err != nil {
		t.Fatal(err)
	}

	res := Validate(text, LevelStrict)
	if !res.Valid {
		t.Errorf("encoder output failed validation:\n%s\nerrors: %v", text, res.Errors)
	}
}
