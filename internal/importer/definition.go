package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"flat-backend/internal/store"
)

// DefinitionExt is the suffix of definition files in an import directory.
const DefinitionExt = ".json"

var (
	ErrEmptyDefinition   = errors.New("empty definition")
	ErrInvalidDefinition = errors.New("invalid definition")
)

// Definition is one decoded definition file. Name is the file's base name
// without extension and becomes the record key for name-derived strategies.
type Definition struct {
	Name  string
	File  string
	Attrs map[string]any
}

// DecodeDefinition parses a JSON object, tolerating // and /* */ comments
// and trailing commas. Numbers are kept as json.Number so integers and
// fractions stay distinguishable, and nested objects decode to
// store.ObjectValues in source order.
func DecodeDefinition(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDefinition
	}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if tok == nil {
		return nil, ErrEmptyDefinition
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidDefinition)
	}

	attrs := make(map[string]any)
	for dec.More() {
		key, err := decodeKey(dec)
		if err != nil {
			return nil, err
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		attrs[key] = value
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidDefinition)
	}
	if len(attrs) == 0 {
		return nil, ErrEmptyDefinition
	}
	return attrs, nil
}

func decodeKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected %v", ErrInvalidDefinition, tok)
	}
	return key, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	switch tok {
	case json.Delim('{'):
		values := store.ObjectValues{}
		for dec.More() {
			if _, err := decodeKey(dec); err != nil {
				return nil, err
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, expectDelim(dec, '}')
	case json.Delim('['):
		values := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, expectDelim(dec, ']')
	}
	return tok, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if tok != want {
		return fmt.Errorf("%w: expected %v, got %v", ErrInvalidDefinition, want, tok)
	}
	return nil
}

// NameFromFile strips the directory and extension from a definition file name.
func NameFromFile(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Assignments keeps the attributes whose key matches a column
// case-insensitively and encodes them against the schema's column name.
// columns is keyed by lowercase column name. Keys are visited in sorted
// order and the first key to claim a column wins.
func Assignments(attrs map[string]any, columns map[string]string) []store.Assignment {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]bool, len(keys))
	var as []store.Assignment
	for _, key := range keys {
		col, ok := columns[strings.ToLower(key)]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		as = append(as, store.Encode(col, attrs[key]))
	}
	return as
}
