package store

import (
	"encoding/json"
	"testing"
)

func TestEncode(t *testing.T) {
	d := &SQLiteDialect{}
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"null", nil, "x = NULL"},
		{"true", true, "x = 1"},
		{"false", false, "x = 0"},
		{"int", 42, "x = 42"},
		{"json integer", json.Number("7"), "x = 7"},
		{"json fraction", json.Number("1.5"), "x = '1.5'"},
		{"json whole fraction", json.Number("1.0"), "x = '1'"},
		{"json exponent", json.Number("1e3"), "x = '1000'"},
		{"json negative exponent", json.Number("25e-1"), "x = '2.5'"},
		{"float", 2.25, "x = '2.25'"},
		{"sequence", []any{"a", "b"}, "x = 'a, b'"},
		{"mixed sequence", []any{"a", true, false, nil, json.Number("3")}, "x = 'a, 1, , , 3'"},
		{"sequence exponent", []any{json.Number("2E2"), json.Number("0.50")}, "x = '200, 0.5'"},
		{"ordered object", ObjectValues{"second", "first"}, "x = 'second, first'"},
		{"nested ordered object", []any{ObjectValues{"a", true}, "b"}, "x = 'a, 1, b'"},
		{"object", map[string]any{"b": "second", "a": "first"}, "x = 'first, second'"},
		{"string", "hello", "x = 'hello'"},
		{"quote", "O'Brien", "x = 'O''Brien'"},
		{"placeholder chars", "what? $1", "x = 'what? $1'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Encode("x", tc.value).SQL(d)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEncode_BooleanBeforeString(t *testing.T) {
	a := Encode("in_rss", true)
	if v, ok := a.Value.(int64); !ok || v != 1 {
		t.Fatalf("expected int64 1, got %#v", a.Value)
	}
}

func TestJoinAssignments(t *testing.T) {
	d := &PostgresDialect{}
	got := JoinAssignments(d, []Assignment{Encode("name", "about"), Encode("in_rss", false)})
	if got != "name = 'about', in_rss = 0" {
		t.Fatalf("unexpected join: %s", got)
	}
}
