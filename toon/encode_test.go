package toon

import (
	"strings"
	"testing"
)

// ============================================================
// Encoding Tests
// ============================================================

func makeUser(id int64, name, role string) *Value {
	return Object(
		F("id", Int(id)),
		F("name", Str(name)),
		F("role", Str(role)),
	)
}

func mustEncode(t *testing.T, doc *Value, opts EncodeOptions) string {
	t.Helper()
	got, err := Encode(doc, opts)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return got
}

func TestEncodeMixedDocument(t *testing.T) {
	doc := Object(
		F("context", Object(F("task", Str("classify")))),
		F("users", Array(
			makeUser(1, "Alice", "admin"),
			makeUser(2, "Bob", "user"),
		)),
		F("flags", Array(Str("beta"), Str("verbose"))),
	)

	got := mustEncode(t, doc, DefaultEncodeOptions())
	want := strings.Join([]string{
		"context:",
		"  task: classify",
		"users [2,]",
		"  id, name, role",
		"  1, Alice, admin",
		"  2, Bob, user",
		"flags [2]: beta, verbose",
	}, "\n")
	if got != want {
		t.Errorf("Encode mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeTabularLineCount(t *testing.T) {
	// A tabular array of N elements always takes exactly 2+N lines:
	// header, column row, N data rows.
	rows := Array()
	for i := int64(0); i < 5; i++ {
		rows.Append(makeUser(i, "user", "role"))
	}
	doc := Object(F("users", rows))

	got := mustEncode(t, doc, DefaultEncodeOptions())
	lines := strings.Split(got, "\n")
	if len(lines) != 2+5 {
		t.Errorf("expected %d lines, got %d:\n%s", 2+5, len(lines), got)
	}
	if lines[0] != "users [5,]" {
		t.Errorf("bad header line: %q", lines[0])
	}
	if lines[1] != "  id, name, role" {
		t.Errorf("bad column row: %q", lines[1])
	}
}

func TestEncodeListFallback(t *testing.T) {
	// Objects with differing key sets cannot fold into a table.
	doc := Object(F("items", Array(
		Object(F("a", Int(1))),
		Object(F("b", Int(2))),
	)))

	got := mustEncode(t, doc, DefaultEncodeOptions())
	want := strings.Join([]string{
		"items [2]",
		"  -",
		"    a: 1",
		"  -",
		"    b: 2",
	}, "\n")
	if got != want {
		t.Errorf("Encode mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeNoTabular(t *testing.T) {
	doc := Object(F("users", Array(makeUser(1, "Alice", "admin"))))

	opts := DefaultEncodeOptions()
	opts.PreferTabular = false
	got := mustEncode(t, doc, opts)
	want := strings.Join([]string{
		"users [1]",
		"  -",
		"    id: 1",
		"    name: Alice",
		"    role: admin",
	}, "\n")
	if got != want {
		t.Errorf("Encode mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeDelimiters(t *testing.T) {
	doc := Object(F("tags", Array(Str("red"), Str("green"), Str("blue"))))

	tests := []struct {
		name  string
		delim byte
		want  string
	}{
		{"comma", ',', "tags [3]: red, green, blue"},
		{"pipe", '|', "tags [3|]: red| green| blue"},
		{"tab", '\t', "tags [3\t]: red\tgreen\tblue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultEncodeOptions()
			opts.Delimiter = tt.delim
			got := mustEncode(t, doc, opts)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeLengthMarker(t *testing.T) {
	doc := Object(
		F("flags", Array(Str("a"), Str("b"))),
		F("users", Array(makeUser(1, "Alice", "admin"))),
	)

	opts := DefaultEncodeOptions()
	opts.LengthMarker = true
	got := mustEncode(t, doc, opts)
	if !strings.Contains(got, "flags [#2]:") {
		t.Errorf("primitive header missing marker:\n%s", got)
	}
	if !strings.Contains(got, "users [#1,]") {
		t.Errorf("tabular header missing marker:\n%s", got)
	}
}

func TestEncodeQuoting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "v: hello world"},
		{"empty", "", `v: ""`},
		{"literal true", "true", `v: "true"`},
		{"literal null", "null", `v: "null"`},
		{"numeric", "123", `v: "123"`},
		{"float-ish", "-1.5e3", `v: "-1.5e3"`},
		{"untrimmed", " x ", `v: " x "`},
		{"colon", "a:b", `v: "a:b"`},
		{"comma", "a,b", `v: "a,b"`},
		{"bracket", "a[0]", `v: "a[0]"`},
		{"dash", "-dash", `v: "-dash"`},
		{"quote", `a"b`, `v: "a\"b"`},
		{"newline", "a\nb", `v: "a\nb"`},
		{"capitalized literal stays bare", "True", "v: True"},
		{"unicode", "日本語", "v: 日本語"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEncode(t, Object(F("v", Str(tt.in))), DefaultEncodeOptions())
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDelimiterAwareQuoting(t *testing.T) {
	// "a,b" only needs quotes when the comma is the active delimiter.
	doc := Object(F("v", Str("a,b")))

	opts := DefaultEncodeOptions()
	opts.Delimiter = '|'
	got := mustEncode(t, doc, opts)
	if got != "v: a,b" {
		t.Errorf("got %q, want bare value under pipe delimiter", got)
	}
}

func TestEncodeScalars(t *testing.T) {
	doc := Object(
		F("n", Null()),
		F("t", Bool(true)),
		F("f", Bool(false)),
		F("i", Int(-42)),
		F("fl", Float(2.5)),
		F("whole", Float(3)),
	)

	got := mustEncode(t, doc, DefaultEncodeOptions())
	want := strings.Join([]string{
		"n: null",
		"t: true",
		"f: false",
		"i: -42",
		"fl: 2.5",
		"whole: 3.0",
	}, "\n")
	if got != want {
		t.Errorf("Encode mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeEmptyContainers(t *testing.T) {
	doc := Object(
		F("arr", Array()),
		F("obj", Object()),
	)

	got := mustEncode(t, doc, DefaultEncodeOptions())
	want := "arr [0]\nobj:"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeNestedArrays(t *testing.T) {
	doc := Object(F("matrix", Array(
		Array(Int(1), Int(2)),
		Array(Int(3), Int(4)),
	)))

	got := mustEncode(t, doc, DefaultEncodeOptions())
	want := strings.Join([]string{
		"matrix [2]",
		"  - [2]: 1, 2",
		"  - [2]: 3, 4",
	}, "\n")
	if got != want {
		t.Errorf("Encode mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeDeepNesting(t *testing.T) {
	// Nesting depth is input-controlled; a deeply nested document must
	// not exhaust the goroutine stack.
	doc := Object()
	cur := doc
	for i := 0; i < 2000; i++ {
		next := Object()
		cur.Set("a", next)
		cur = next
	}
	cur.Set("leaf", Int(1))

	got := mustEncode(t, doc, DefaultEncodeOptions())
	if !strings.HasSuffix(got, "leaf: 1") {
		t.Errorf("deep document missing leaf")
	}
}

func TestEncodeRejectsNonObject(t *testing.T) {
	for _, doc := range []*Value{nil, Int(1), Array(Int(1))} {
		if _, err := Encode(doc, DefaultEncodeOptions()); err == nil {
			t.Errorf("expected error for %s document", doc.Kind())
		}
	}
}

func TestEncodeRejectsBadDelimiter(t *testing.T) {
	opts := DefaultEncodeOptions()
	opts.Delimiter = ';'
	if _, err := Encode(Object(), opts); err == nil {
		t.Error("expected error for unsupported delimiter")
	}
}

func TestEncodeQuotedKeys(t *testing.T) {
	doc := Object(F("weird key: yes", Int(1)))
	got := mustEncode(t, doc, DefaultEncodeOptions())
	if got != `"weird key: yes": 1` {
		t.Errorf("got %q", got)
	}
}

func TestEncodeIndentWidth(t *testing.T) {
	doc := Object(F("a", Object(F("b", Int(1)))))

	opts := DefaultEncodeOptions()
	opts.IndentWidth = 4
	got := mustEncode(t, doc, opts)
	if got != "a:\n    b: 1" {
		t.Errorf("got %q", got)
	}
}
