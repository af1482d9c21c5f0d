package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }

func (d *PostgresDialect) HostTablesSQL() string {
	return pgHostTablesSQL
}

func (d *PostgresDialect) TableExists(ctx context.Context, q Querier, tableName string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = current_schema())`,
		tableName,
	).Scan(&exists)
	return exists, err
}

func (d *PostgresDialect) GetColumns(ctx context.Context, q Querier, tableName string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1 AND table_schema = current_schema()`,
		tableName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		cols[name] = dataType
	}
	return cols, rows.Err()
}

func (d *PostgresDialect) TruncateSQL(tableName string) string {
	return "TRUNCATE TABLE " + tableName
}

// QuoteString relies on standard_conforming_strings, the default since 9.1.
func (d *PostgresDialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	errStr := err.Error()
	if strings.Contains(errStr, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}

// --- PostgreSQL DDL ---

const pgHostTablesSQL = `
CREATE TABLE IF NOT EXISTS forms (
    name    TEXT PRIMARY KEY,
    type    TEXT NOT NULL DEFAULT 'misc',
    content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS pages (
    name    TEXT PRIMARY KEY,
    content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sections (
    name         TEXT PRIMARY KEY,
    page         TEXT DEFAULT 'default',
    css          TEXT DEFAULT 'default',
    title        TEXT DEFAULT '',
    description  TEXT DEFAULT '',
    in_rss       INTEGER DEFAULT 1,
    on_frontpage INTEGER DEFAULT 1,
    searchable   INTEGER DEFAULT 1
);

CREATE TABLE IF NOT EXISTS prefs (
    name     TEXT PRIMARY KEY,
    val      TEXT NOT NULL DEFAULT '',
    type     INTEGER NOT NULL DEFAULT 2,
    event    TEXT NOT NULL DEFAULT 'publish',
    html     TEXT NOT NULL DEFAULT 'text_input',
    position INTEGER NOT NULL DEFAULT 0,
    private  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_prefs_event ON prefs (event);
`

// Compile-time check
var _ Dialect = (*PostgresDialect)(nil)
