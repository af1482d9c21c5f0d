// Package template resolves form and page templates, preferring files on disk
// over database rows.
package template

import (
	"context"
	"errors"
	"fmt"
	"log"

	"flat-backend/internal/store"
)

// Ext is the file extension of template override files.
const Ext = ".txp"

var ErrNotFound = errors.New("template not found")

// Kind selects which template family a name belongs to.
type Kind int

const (
	Form Kind = iota
	Page
)

func (k Kind) String() string {
	switch k {
	case Form:
		return "form"
	case Page:
		return "page"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Dir returns the subdirectory holding override files for the kind.
func (k Kind) Dir() string {
	switch k {
	case Form:
		return "forms"
	case Page:
		return "pages"
	default:
		return ""
	}
}

// Files reads override files relative to the template directory.
type Files interface {
	ReadRegular(ctx context.Context, elem ...string) ([]byte, error)
}

// Source fetches a single column of the row with the given name.
// It returns store.ErrNotFound when no row matches.
type Source interface {
	FetchColumn(ctx context.Context, table, column, name string) (string, error)
}

// Table names the database table and content column backing a kind.
type Table struct {
	Name   string
	Column string
}

// Resolver returns template content for a kind and name. A valid name with a
// readable regular file wins over the database row; the two are never merged.
type Resolver struct {
	files  Files
	source Source
	tables map[Kind]Table
}

// NewResolver creates a Resolver. A nil files disables overrides and every
// call goes straight to the database.
func NewResolver(files Files, source Source, forms, pages Table) *Resolver {
	return &Resolver{
		files:  files,
		source: source,
		tables: map[Kind]Table{Form: forms, Page: pages},
	}
}

// Resolve returns the content for name, or ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, name string) (string, error) {
	if content, ok := r.Override(ctx, kind, name); ok {
		return content, nil
	}
	return r.fetchRow(ctx, kind, name)
}

// FetchTemplate lets the resolver serve as the host's template handler.
func (r *Resolver) FetchTemplate(ctx context.Context, kind Kind, name string) (string, error) {
	return r.Resolve(ctx, kind, name)
}

// Override returns the file content for name if one applies. Invalid names
// never reach the filesystem; unreadable files count as absent.
func (r *Resolver) Override(ctx context.Context, kind Kind, name string) (string, bool) {
	if r.files == nil || kind.Dir() == "" || !ValidName(name) {
		return "", false
	}
	data, err := r.files.ReadRegular(ctx, kind.Dir(), name+Ext)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (r *Resolver) fetchRow(ctx context.Context, kind Kind, name string) (string, error) {
	tbl, ok := r.tables[kind]
	if !ok || r.source == nil {
		return "", ErrNotFound
	}
	content, err := r.source.FetchColumn(ctx, tbl.Name, tbl.Column, name)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		log.Printf("WARN: fetch %s %q: %v", kind, name, err)
		return "", fmt.Errorf("fetch %s %s: %w", kind, name, err)
	}
	return content, nil
}
