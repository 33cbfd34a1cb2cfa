package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"cgl/pkg/logger"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrations lists the embedded schema files in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ApplySchema applies embedded schema files not yet recorded in
// schema_migrations, each in its own transaction. It returns the names
// of the files applied.
func ApplySchema(ctx context.Context, txm *TxManager) ([]string, error) {
	names, err := Migrations()
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var applied []string
	for _, name := range names {
		body, err := schemaFS.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}

		done := false
		err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
			q := txm.GetQuerier(ctx)
			// The first file creates schema_migrations itself.
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
			tag, err := q.Exec(ctx,
				"INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
			if err != nil {
				return fmt.Errorf("record %s: %w", name, err)
			}
			done = tag.RowsAffected() == 1
			return nil
		})
		if err != nil {
			return applied, err
		}
		if done {
			applied = append(applied, name)
			logger.Info(ctx, "schema applied", "migration", name)
		}
	}
	return applied, nil
}
