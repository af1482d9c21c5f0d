package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/expr-lang/expr"

	"flat-backend/internal/store"
)

// Preference type classifications a definition's "type" attribute may name.
var prefTypes = map[string]any{
	"PREF_CORE":   0,
	"PREF_PLUGIN": 1,
	"PREF_HIDDEN": 2,
}

// Variables upserts one preference record per definition file, keyed by
// prefix + file name and grouped under event. Prune deletes the records of
// event whose file is gone; records of other events are never touched.
type Variables struct {
	dir    string
	table  string
	event  string
	prefix string
}

func NewVariables(dir, table, event, prefix string) *Variables {
	return &Variables{dir: dir, table: table, event: event, prefix: prefix}
}

func (v *Variables) Dir() string   { return v.dir }
func (v *Variables) Table() string { return v.table }
func (v *Variables) Panel() string { return "prefs." + v.event }

// Key returns the record name for a definition file name.
func (v *Variables) Key(name string) string {
	return v.prefix + name
}

func (v *Variables) Begin(context.Context, Tables) error {
	return nil
}

// variable is the recognised attribute set of a definition, with defaults.
type variable struct {
	Value     any
	Type      any
	HTML      any
	Position  any
	IsPrivate any
}

// readVariable fills unset and null attributes with their defaults.
func readVariable(attrs map[string]any) variable {
	vr := variable{
		Value:     "",
		Type:      "PREF_PLUGIN",
		HTML:      "text_input",
		Position:  int64(0),
		IsPrivate: false,
	}
	if x, ok := attrs["value"]; ok && x != nil {
		vr.Value = x
	}
	if x, ok := attrs["type"]; ok && x != nil {
		vr.Type = x
	}
	if x, ok := attrs["html"]; ok && x != nil {
		vr.HTML = x
	}
	if x, ok := attrs["position"]; ok && x != nil {
		vr.Position = x
	}
	if x, ok := attrs["is_private"]; ok && x != nil {
		vr.IsPrivate = x
	}
	return vr
}

func (v *Variables) Import(ctx context.Context, t Tables, def *Definition, columns map[string]string) error {
	vr := readVariable(def.Attrs)

	typ, err := resolvePrefType(vr.Type)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.File, err)
	}

	keyCol, ok := columns["name"]
	if !ok {
		return fmt.Errorf("import %s: table %s has no name column", def.File, v.table)
	}

	row := map[string]any{
		"name":     v.Key(def.Name),
		"val":      vr.Value,
		"type":     typ,
		"event":    v.event,
		"html":     vr.HTML,
		"position": position(vr.Position),
		"private":  vr.IsPrivate,
	}
	as := Assignments(row, columns)

	if err := t.Upsert(ctx, v.table, keyCol, as); err != nil {
		log.Printf("ERROR: upsert %s from %s/%s: %s", v.table, v.dir, def.File, store.JoinAssignments(t.Dialect(), as))
		return fmt.Errorf("import %s: %w", def.File, err)
	}
	return nil
}

func (v *Variables) Prune(ctx context.Context, t Tables, manifest []*Definition) (int64, error) {
	names := make([]string, 0, len(manifest))
	for _, def := range manifest {
		names = append(names, v.Key(def.Name))
	}

	pred := sq.And{sq.Eq{"event": v.event}}
	if len(names) > 0 {
		pred = append(pred, sq.NotEq{"name": names})
	}

	n, err := t.DeleteWhere(ctx, v.table, pred)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", v.event, err)
	}
	return n, nil
}

var _ Strategy = (*Variables)(nil)

// resolvePrefType accepts an integer or the name of a preference type.
func resolvePrefType(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Int64()
	case int64:
		return t, nil
	case string:
		program, err := expr.Compile(strings.TrimSpace(t), expr.Env(prefTypes), expr.AsInt())
		if err != nil {
			return 0, fmt.Errorf("unknown type %q: %w", t, err)
		}
		out, err := expr.Run(program, prefTypes)
		if err != nil {
			return 0, fmt.Errorf("evaluate type %q: %w", t, err)
		}
		n, ok := out.(int)
		if !ok {
			return 0, fmt.Errorf("type %q is not an integer", t)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unsupported type value %v", v)
	}
}

// position coerces the ordering attribute to an integer, defaulting to 0.
func position(v any) int64 {
	switch p := v.(type) {
	case int64:
		return p
	case json.Number:
		if n, err := p.Int64(); err == nil {
			return n
		}
		if f, err := p.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
			return n
		}
	}
	return 0
}
