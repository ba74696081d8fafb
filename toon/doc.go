// Package toon implements TOON, a token-efficient indentation-based
// text format for handing structured data to LLMs.
//
// TOON is designed to be:
//   - Token-cheap (no braces, no per-row key repetition)
//   - Human-skimmable (indentation shows structure)
//   - Self-checking (declared array lengths, tabular row shapes)
//   - Round-trippable to JSON and YAML
//
// # Data Model
//
// Scalars: null, bool, number, string
// Containers: object (insertion-ordered fields), array
//
// # Syntax
//
// Object field:     key: value
// Nested object:    key:        (fields indented below)
// Primitive array:  tags [3]: red, green, blue
// Tabular array:    users [2,]  (column row + one row per element)
// List array:       items [2]   (one dash-marked element per line)
//
// # Example
//
//	context:
//	  task: classify
//	users [2,]
//	  id, name, role
//	  1, Alice, admin
//	  2, Bob, user
//	flags [2]: beta, verbose
//
// Arrays choose their representation automatically: all-scalar arrays
// inline as a primitive list, arrays of same-shaped flat objects fold
// into a table, and everything else falls back to dash-marked list
// form.
//
// # Decoding Modes
//
// Strict decoding rejects length mismatches and broken indentation.
// Lenient decoding trusts the parsed shape and skips what it cannot
// read. Malformed array headers and bad table rows are fatal in both
// modes.
package toon
