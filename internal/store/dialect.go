package store

import (
	"context"
	"regexp"

	sq "github.com/Masterminds/squirrel"
)

// Dialect abstracts database-specific SQL generation and behavior.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// PlaceholderFormat returns the squirrel placeholder format for the driver.
	PlaceholderFormat() sq.PlaceholderFormat

	// HostTablesSQL returns the DDL for the template and import target tables.
	HostTablesSQL() string

	// TableExists checks whether a table exists.
	TableExists(ctx context.Context, q Querier, tableName string) (bool, error)

	// GetColumns returns existing column names and types for a table.
	GetColumns(ctx context.Context, q Querier, tableName string) (map[string]string, error)

	// TruncateSQL returns the statement that empties a table.
	TruncateSQL(tableName string) string

	// QuoteString returns s as an escaped string literal.
	QuoteString(s string) string

	// MapError inspects a driver error and returns a well-known sentinel error if applicable.
	MapError(err error) error
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) Dialect {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}
	default:
		return &PostgresDialect{}
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be interpolated as a table or column name.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}
