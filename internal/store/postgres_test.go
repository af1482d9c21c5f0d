package store

import (
	"errors"
	"fmt"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError_PG_UniqueViolation(t *testing.T) {
	dialect := &PostgresDialect{}
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"sections_pkey\"",
		ConstraintName: "sections_pkey",
		Detail:         "Key (name)=(articles) already exists.",
	}
	wrapped := fmt.Errorf("exec: %w", pgErr)

	mapped := MapError(dialect, wrapped)

	if !errors.Is(mapped, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got: %v", mapped)
	}

	// Original pgconn.PgError should still be extractable
	var extracted *pgconn.PgError
	if !errors.As(mapped, &extracted) {
		t.Fatal("expected pgconn.PgError to still be extractable via errors.As")
	}
	if extracted.ConstraintName != "sections_pkey" {
		t.Fatalf("expected constraint name 'sections_pkey', got: %s", extracted.ConstraintName)
	}
}

func TestMapError_PG_OtherError(t *testing.T) {
	dialect := &PostgresDialect{}
	err := &pgconn.PgError{Code: "42P01", Message: "relation \"sections\" does not exist"}
	mapped := MapError(dialect, err)
	if mapped != error(err) {
		t.Fatalf("expected same error back, got: %v", mapped)
	}
}

func TestMapError_PG_Nil(t *testing.T) {
	dialect := &PostgresDialect{}
	mapped := MapError(dialect, nil)
	if mapped != nil {
		t.Fatalf("expected nil, got: %v", mapped)
	}
}

func TestPostgresDialect_Statements(t *testing.T) {
	d := &PostgresDialect{}
	if got := d.TruncateSQL("sections"); got != "TRUNCATE TABLE sections" {
		t.Fatalf("unexpected truncate SQL: %s", got)
	}
	if got := d.QuoteString("it's"); got != "'it''s'" {
		t.Fatalf("unexpected quoted string: %s", got)
	}
	if d.PlaceholderFormat() != sq.Dollar {
		t.Fatal("expected dollar placeholders")
	}
}
