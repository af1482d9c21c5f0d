package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Tables performs the row-level operations the resolver and importers need
// against any Querier, so the same code runs inside or outside a transaction.
type Tables struct {
	q       Querier
	dialect Dialect
	sb      sq.StatementBuilderType
}

func NewTables(q Querier, dialect Dialect) *Tables {
	return &Tables{
		q:       q,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.PlaceholderFormat()),
	}
}

func (t *Tables) Dialect() Dialect {
	return t.dialect
}

// Columns returns the table's column names keyed by their lowercase form.
// A missing table wraps ErrNotFound; a table without columns is ErrNoColumns.
func (t *Tables) Columns(ctx context.Context, table string) (map[string]string, error) {
	exists, err := t.dialect.TableExists(ctx, t.q, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	if !exists {
		return nil, fmt.Errorf("describe %s: table %w", table, ErrNotFound)
	}
	cols, err := t.dialect.GetColumns(ctx, t.q, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("describe %s: %w", table, ErrNoColumns)
	}
	byLower := make(map[string]string, len(cols))
	for name := range cols {
		byLower[strings.ToLower(name)] = name
	}
	return byLower, nil
}

// FetchColumn returns column from the row whose name matches. ErrNotFound if
// no row matches; a NULL value reads as "".
func (t *Tables) FetchColumn(ctx context.Context, table, column, name string) (string, error) {
	sqlStr, args, err := t.sb.Select(column).From(table).Where(sq.Eq{"name": name}).Limit(1).ToSql()
	if err != nil {
		return "", fmt.Errorf("build select: %w", err)
	}
	var v sql.NullString
	if err := t.q.QueryRowContext(ctx, sqlStr, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("fetch %s.%s: %w", table, column, err)
	}
	return v.String, nil
}

// Truncate removes every row from table.
func (t *Tables) Truncate(ctx context.Context, table string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("truncate: %w: %q", ErrInvalidIdentifier, table)
	}
	if _, err := t.q.ExecContext(ctx, t.dialect.TruncateSQL(table)); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}

// Insert adds one row built from the assignments.
func (t *Tables) Insert(ctx context.Context, table string, as []Assignment) error {
	sqlStr, err := t.insertSQL(table, as)
	if err != nil {
		return err
	}
	if _, err := t.q.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("insert into %s: %w", table, MapError(t.dialect, err))
	}
	return nil
}

// Upsert inserts the row or, when key conflicts, updates the other assigned columns.
func (t *Tables) Upsert(ctx context.Context, table, key string, as []Assignment) error {
	if !ValidIdentifier(key) {
		return fmt.Errorf("upsert: %w: %q", ErrInvalidIdentifier, key)
	}
	sqlStr, err := t.insertSQL(table, as)
	if err != nil {
		return err
	}

	hasKey := false
	var sets []string
	for _, a := range as {
		if a.Column == key {
			hasKey = true
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", a.Column, a.Column))
	}
	if !hasKey {
		return fmt.Errorf("upsert into %s: missing key column %s", table, key)
	}
	if len(sets) == 0 {
		sqlStr += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", key)
	} else {
		sqlStr += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
	}

	if _, err := t.q.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("upsert into %s: %w", table, MapError(t.dialect, err))
	}
	return nil
}

// DeleteWhere removes the rows matching pred and returns how many were deleted.
func (t *Tables) DeleteWhere(ctx context.Context, table string, pred sq.Sqlizer) (int64, error) {
	sqlStr, args, err := t.sb.Delete(table).Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	n, err := Exec(ctx, t.q, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return n, nil
}

// Count returns the number of rows matching pred, or all rows when pred is nil.
func (t *Tables) Count(ctx context.Context, table string, pred sq.Sqlizer) (int64, error) {
	b := t.sb.Select("COUNT(*)").From(table)
	if pred != nil {
		b = b.Where(pred)
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := t.q.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// insertSQL builds the statement with escaped literals rather than bind
// parameters so integer and text coercion is left to the column type.
func (t *Tables) insertSQL(table string, as []Assignment) (string, error) {
	if !ValidIdentifier(table) {
		return "", fmt.Errorf("insert: %w: %q", ErrInvalidIdentifier, table)
	}
	if len(as) == 0 {
		return "", fmt.Errorf("insert into %s: no columns", table)
	}
	cols := make([]string, len(as))
	vals := make([]string, len(as))
	for i, a := range as {
		if !ValidIdentifier(a.Column) {
			return "", fmt.Errorf("insert into %s: %w: %q", table, ErrInvalidIdentifier, a.Column)
		}
		cols[i] = a.Column
		vals[i] = a.Literal(t.dialect)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(vals, ", ")), nil
}
