package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

// PlaceholderFormat uses plain "?"; squirrel's numbered formats are postgres-only.
func (d *SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (d *SQLiteDialect) HostTablesSQL() string {
	return sqliteHostTablesSQL
}

func (d *SQLiteDialect) TableExists(ctx context.Context, q Querier, tableName string) (bool, error) {
	var name string
	err := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?1",
		tableName,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *SQLiteDialect) GetColumns(ctx context.Context, q Querier, tableName string) (map[string]string, error) {
	if !ValidIdentifier(tableName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, tableName)
	}
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dfltValue any
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = colType
	}
	return cols, rows.Err()
}

// TruncateSQL uses DELETE; SQLite has no TRUNCATE and optimizes an unqualified DELETE.
func (d *SQLiteDialect) TruncateSQL(tableName string) string {
	return "DELETE FROM " + tableName
}

func (d *SQLiteDialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "constraint failed: UNIQUE") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}

// --- SQLite DDL ---

const sqliteHostTablesSQL = `
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
    name         TEXT PRIMARY KEY NOT NULL,
    page         TEXT DEFAULT 'default',
    css          TEXT DEFAULT 'default',
    title        TEXT DEFAULT '',
    description  TEXT DEFAULT '',
    in_rss       INTEGER DEFAULT 1,
    on_frontpage INTEGER DEFAULT 1,
    searchable   INTEGER DEFAULT 1
);

CREATE TABLE IF NOT EXISTS prefs (
    name     TEXT PRIMARY KEY NOT NULL,
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
var _ Dialect = (*SQLiteDialect)(nil)
