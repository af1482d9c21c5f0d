package importer

import (
	"context"
	"fmt"
	"log"

	"flat-backend/internal/store"
)

// FullReplace empties its table and inserts one row per definition file.
// Rows whose file disappeared are gone because nothing survives Begin.
type FullReplace struct {
	dir   string
	table string
}

func NewFullReplace(dir, table string) *FullReplace {
	return &FullReplace{dir: dir, table: table}
}

func (f *FullReplace) Dir() string   { return f.dir }
func (f *FullReplace) Table() string { return f.table }
func (f *FullReplace) Panel() string { return f.dir }

func (f *FullReplace) Begin(ctx context.Context, t Tables) error {
	return t.Truncate(ctx, f.table)
}

// Import inserts the definition's known columns. The file's base name fills
// the name column unless the definition sets it.
func (f *FullReplace) Import(ctx context.Context, t Tables, def *Definition, columns map[string]string) error {
	as := Assignments(def.Attrs, columns)
	if col, ok := columns["name"]; ok && !assigns(as, col) {
		as = append(as, store.Encode(col, def.Name))
	}
	if len(as) == 0 {
		log.Printf("WARN: %s/%s has no columns of %s, nothing inserted", f.dir, def.File, f.table)
		return nil
	}
	if err := t.Insert(ctx, f.table, as); err != nil {
		log.Printf("ERROR: insert %s from %s/%s: %s", f.table, f.dir, def.File, store.JoinAssignments(t.Dialect(), as))
		return fmt.Errorf("import %s: %w", def.File, err)
	}
	return nil
}

func (f *FullReplace) Prune(context.Context, Tables, []*Definition) (int64, error) {
	return 0, nil
}

func assigns(as []store.Assignment, col string) bool {
	for _, a := range as {
		if a.Column == col {
			return true
		}
	}
	return false
}

var _ Strategy = (*FullReplace)(nil)
