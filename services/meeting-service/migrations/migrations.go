package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/meetsync/libs/db"
)

//go:embed *.sql
var files embed.FS

// Names lists the embedded migration files in the order Apply runs them.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every embedded migration in one transaction. The scripts only
// create missing objects, so Apply is safe to repeat on every start.
func Apply(ctx context.Context, pool *db.Pool) error {
	names, err := Names()
	if err != nil {
		return err
	}
	return pool.InTx(ctx, func(tx pgx.Tx) error {
		for _, name := range names {
			body, err := files.ReadFile(name)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("migration %s: %w", name, err)
			}
		}
		return nil
	})
}
