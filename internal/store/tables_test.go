package store

import (
	"context"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"

	"flat-backend/internal/config"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "test",
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestTables_Columns(t *testing.T) {
	s := testStore(t)
	cols, err := s.Tables().Columns(context.Background(), "sections")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	for _, want := range []string{"name", "page", "css", "title", "in_rss", "on_frontpage", "searchable"} {
		if cols[want] != want {
			t.Fatalf("expected column %s, got %v", want, cols)
		}
	}
}

func TestTables_Columns_MissingTable(t *testing.T) {
	s := testStore(t)
	_, err := s.Tables().Columns(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrNoColumns) {
		t.Fatalf("missing table must not report ErrNoColumns: %v", err)
	}
}

func TestSQLiteDialect_TableExists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for table, want := range map[string]bool{"sections": true, "prefs": true, "nope": false} {
		got, err := s.Dialect.TableExists(ctx, s.DB, table)
		if err != nil {
			t.Fatalf("table exists %s: %v", table, err)
		}
		if got != want {
			t.Fatalf("expected TableExists(%s) = %t, got %t", table, want, got)
		}
	}
}

func TestTables_InsertAndFetch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tbl := s.Tables()

	if err := tbl.Insert(ctx, "forms", []Assignment{
		Encode("name", "comments"),
		Encode("content", "<p>it's a form?</p>"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := tbl.FetchColumn(ctx, "forms", "content", "comments")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != "<p>it's a form?</p>" {
		t.Fatalf("unexpected content: %q", got)
	}

	if _, err := tbl.FetchColumn(ctx, "forms", "content", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTables_InsertDuplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tbl := s.Tables()
	row := []Assignment{Encode("name", "default")}
	if err := tbl.Insert(ctx, "pages", row); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tbl.Insert(ctx, "pages", row); !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
}

func TestTables_InsertRejectsBadColumn(t *testing.T) {
	s := testStore(t)
	err := s.Tables().Insert(context.Background(), "pages", []Assignment{Encode("name; --", "x")})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestTables_UpsertUpdatesExisting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tbl := s.Tables()

	if err := tbl.Upsert(ctx, "prefs", "name", []Assignment{Encode("name", "site"), Encode("val", "one")}); err != nil {
		t.Fatalf("upsert insert: %v", err)
	}
	if err := tbl.Upsert(ctx, "prefs", "name", []Assignment{Encode("name", "site"), Encode("val", "two")}); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	got, err := tbl.FetchColumn(ctx, "prefs", "val", "site")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != "two" {
		t.Fatalf("expected updated value, got %q", got)
	}
	n, err := tbl.Count(ctx, "prefs", nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestTables_UpsertRequiresKey(t *testing.T) {
	s := testStore(t)
	err := s.Tables().Upsert(context.Background(), "prefs", "name", []Assignment{Encode("val", "x")})
	if err == nil {
		t.Fatal("expected error when key column is missing")
	}
}

func TestTables_DeleteWhereAndTruncate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tbl := s.Tables()

	for _, name := range []string{"a", "b", "c"} {
		if err := tbl.Insert(ctx, "prefs", []Assignment{Encode("name", name), Encode("event", "flat_variables")}); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	n, err := tbl.DeleteWhere(ctx, "prefs", sq.And{
		sq.Eq{"event": "flat_variables"},
		sq.NotEq{"name": []string{"a"}},
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}

	if err := tbl.Truncate(ctx, "prefs"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	left, err := tbl.Count(ctx, "prefs", nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if left != 0 {
		t.Fatalf("expected empty table, got %d", left)
	}
}

func TestStore_WithTxRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tbl *Tables) error {
		if err := tbl.Insert(ctx, "pages", []Assignment{Encode("name", "default")}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	n, err := s.Tables().Count(ctx, "pages", nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected rollback to leave no rows, got %d", n)
	}
}
