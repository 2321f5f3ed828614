package repository

import (
	"context"
	"embed"
	"fmt"
	"sort"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

//go:embed migrations/*.down.sql
var rollbackFS embed.FS

// Migrate applies the embedded schema migrations in order. Statements are
// idempotent, so reconciling an existing schema is safe. Must complete
// before the service accepts any request.
func (r *Repository) Migrate(ctx context.Context) error {
	names, err := sortedSQLFiles(migrationFS)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := r.execFile(ctx, migrationFS, name); err != nil {
			return err
		}
	}
	return nil
}

// Rollback drops the schema in reverse order. Intended for tests.
func (r *Repository) Rollback(ctx context.Context) error {
	names, err := sortedSQLFiles(rollbackFS)
	if err != nil {
		return err
	}

	// Reverse order - api_keys before users to honor the foreign key.
	for i := len(names) - 1; i >= 0; i-- {
		if err := r.execFile(ctx, rollbackFS, names[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) execFile(ctx context.Context, fsys embed.FS, name string) error {
	sql, err := fsys.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := r.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

func sortedSQLFiles(fsys embed.FS) ([]string, error) {
	entries, err := fsys.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
