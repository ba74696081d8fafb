package toon

import (
	"testing"
)

// ============================================================
// Round-Trip Tests
// ============================================================

// checkRoundTrip encodes doc, decodes the text strictly, and requires
// the result to equal the input exactly.
func checkRoundTrip(t *testing.T, doc *Value, opts EncodeOptions) {
	t.Helper()
	text, err := Encode(doc, opts)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	back, err := Decode(text, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode error: %v\ntext:\n%s", err, text)
	}
	if !back.Equal(doc) {
		t.Errorf("round trip changed the document:\ntext:\n%s", text)
	}
}

func TestRoundTripMixedDocument(t *testing.T) {
	doc := Object(
		F("context", Object(
			F("task", Str("classify")),
			F("threshold", Float(0.75)),
		)),
		F("users", Array(
			makeUser(1, "Alice", "admin"),
			makeUser(2, "Bob", "user"),
		)),
		F("flags", Array(Str("beta"), Str("verbose"))),
		F("empty", Array()),
		F("nothing", Null()),
	)
	checkRoundTrip(t, doc, DefaultEncodeOptions())
}

func TestRoundTripAdversarialStrings(t *testing.T) {
	cases := []string{
		"",
		"true",
		"false",
		"null",
		"True",
		"123",
		"-4.5",
		"1e9",
		" x ",
		"x ",
		" x",
		"a,b",
		"a:b",
		"a[0]",
		"a]b",
		"-dash",
		`a"b`,
		`back\slash`,
		"line\nbreak",
		"tab\there",
		"cr\rhere",
		"a, b: [c] - d",
		"日本語テキスト",
	}
	for _, s := range cases {
		doc := Object(
			F("v", Str(s)),
			F("arr", Array(Str(s), Str("plain"))),
			F("rows", Array(
				Object(F("k", Str(s))),
				Object(F("k", Str("other"))),
			)),
		)
		checkRoundTrip(t, doc, DefaultEncodeOptions())
	}
}

func TestRoundTripDelimiters(t *testing.T) {
	doc := Object(
		F("tags", Array(Str("a,b"), Str("c|d"), Str("e\tf"))),
		F("rows", Array(
			Object(F("x", Str("1,2")), F("y", Str("3|4"))),
			Object(F("x", Str("5")), F("y", Str("6"))),
		)),
	)
	for _, delim := range []byte{',', '|', '\t'} {
		opts := DefaultEncodeOptions()
		opts.Delimiter = delim
		checkRoundTrip(t, doc, opts)
	}
}

func TestRoundTripNumbers(t *testing.T) {
	doc := Object(
		F("zero", Int(0)),
		F("neg", Int(-9223372036854775808)),
		F("max", Int(9223372036854775807)),
		F("whole", Float(1)),
		F("tiny", Float(5e-324)),
		F("huge", Float(1.7976931348623157e308)),
		F("pi", Float(3.141592653589793)),
	)
	checkRoundTrip(t, doc, DefaultEncodeOptions())
}

func TestRoundTripKeys(t *testing.T) {
	doc := Object(
		F("", Int(1)),
		F("plain", Int(2)),
		F("with space", Int(3)),
		F("colon: inside", Int(4)),
		F("true", Int(5)),
		F("123", Int(6)),
	)
	checkRoundTrip(t, doc, DefaultEncodeOptions())
}

func TestRoundTripNestedStructures(t *testing.T) {
	doc := Object(
		F("matrix", Array(
			Array(Int(1), Int(2)),
			Array(Int(3), Int(4)),
		)),
		F("mixed", Array(
			Int(1),
			Str("two"),
			Object(F("three", Bool(true))),
			Array(Null()),
			Array(),
			Object(),
		)),
		F("deep", Object(
			F("a", Object(
				F("b", Array(Object(F("c", Array(Int(1)))))),
			)),
		)),
	)
	checkRoundTrip(t, doc, DefaultEncodeOptions())
}

func TestRoundTripListFallbackPreservesShape(t *testing.T) {
	doc := Object(F("users", Array(
		makeUser(1, "Alice", "admin"),
		makeUser(2, "Bob", "user"),
	)))

	opts := DefaultEncodeOptions()
	opts.PreferTabular = false
	checkRoundTrip(t, doc, opts)
}

func TestRoundTripLengthMarker(t *testing.T) {
	doc := Object(
		F("flags", Array(Str("a"), Str("b"))),
		F("users", Array(makeUser(1, "Alice", "admin"))),
		F("items", Array(Int(1), Object(F("k", Int(2))))),
	)

	opts := DefaultEncodeOptions()
	opts.LengthMarker = true
	checkRoundTrip(t, doc, opts)
}
