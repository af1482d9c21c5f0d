package importer

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"flat-backend/internal/store"
)

// Tables is the database surface strategies write through. *store.Tables
// satisfies it both inside and outside a transaction.
type Tables interface {
	Dialect() store.Dialect
	Columns(ctx context.Context, table string) (map[string]string, error)
	Truncate(ctx context.Context, table string) error
	Insert(ctx context.Context, table string, as []store.Assignment) error
	Upsert(ctx context.Context, table, key string, as []store.Assignment) error
	DeleteWhere(ctx context.Context, table string, pred sq.Sqlizer) (int64, error)
}

// Strategy maps one import directory onto one table.
//
// The importer calls Begin once the directory is known to exist, Import for
// every decoded definition in file name order, and Prune once with every
// definition that Import accepted. Import may return an error wrapping
// ErrInvalidDefinition to skip the file; any other error aborts the run.
type Strategy interface {
	Dir() string
	Table() string
	Panel() string
	Begin(ctx context.Context, t Tables) error
	Import(ctx context.Context, t Tables, def *Definition, columns map[string]string) error
	Prune(ctx context.Context, t Tables, manifest []*Definition) (int64, error)
}
