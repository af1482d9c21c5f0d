package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Assignment is a single column = value pair destined for an INSERT or UPDATE.
// Value is nil, an int64 or a string once produced by Encode.
type Assignment struct {
	Column string
	Value  any
}

// ObjectValues holds the member values of a JSON object in source order.
type ObjectValues []any

// Encode coerces a decoded JSON value into an Assignment. Order matters:
// null, then booleans and integers, then sequences, then everything else as
// a string.
func Encode(field string, value any) Assignment {
	switch v := value.(type) {
	case nil:
		return Assignment{Column: field}
	case bool:
		if v {
			return Assignment{Column: field, Value: int64(1)}
		}
		return Assignment{Column: field, Value: int64(0)}
	case int:
		return Assignment{Column: field, Value: int64(v)}
	case int32:
		return Assignment{Column: field, Value: int64(v)}
	case int64:
		return Assignment{Column: field, Value: v}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return Assignment{Column: field, Value: n}
		}
		return Assignment{Column: field, Value: numberString(v)}
	case []any:
		return Assignment{Column: field, Value: joinValues(v)}
	case ObjectValues:
		return Assignment{Column: field, Value: joinValues(v)}
	case []string:
		return Assignment{Column: field, Value: strings.Join(v, ", ")}
	case map[string]any:
		return Assignment{Column: field, Value: joinValues(mapValues(v))}
	default:
		return Assignment{Column: field, Value: scalarString(v)}
	}
}

// Literal renders the assignment value as an escaped SQL literal.
func (a Assignment) Literal(d Dialect) string {
	switch v := a.Value.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return d.QuoteString(v)
	default:
		return d.QuoteString(fmt.Sprint(v))
	}
}

// SQL renders the assignment as a "column = literal" fragment.
func (a Assignment) SQL(d Dialect) string {
	return a.Column + " = " + a.Literal(d)
}

// JoinAssignments renders assignments as a comma separated SET list.
func JoinAssignments(d Dialect, as []Assignment) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = a.SQL(d)
	}
	return strings.Join(parts, ", ")
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = scalarString(v)
	}
	return strings.Join(parts, ", ")
}

// mapValues orders a plain map's values by key; decoded definitions carry
// ObjectValues instead and keep source order.
func mapValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}

// scalarString stringifies a sequence element: true is "1", false and null are empty.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "1"
		}
		return ""
	case string:
		return val
	case json.Number:
		return numberString(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		return joinValues(val)
	case ObjectValues:
		return joinValues(val)
	case map[string]any:
		return joinValues(mapValues(val))
	default:
		return fmt.Sprint(val)
	}
}

// numberString renders a JSON number by value, so "1.0" and "1e3" become
// "1" and "1000".
func numberString(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
