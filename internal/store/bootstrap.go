package store

import (
	"context"
	"fmt"
)

// Bootstrap creates the template and import target tables if they do not exist.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.HostTablesSQL()); err != nil {
		return fmt.Errorf("bootstrap host tables: %w", err)
	}
	return nil
}
