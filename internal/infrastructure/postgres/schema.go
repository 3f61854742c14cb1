package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations devuelve los scripts del esquema en orden de aplicación.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, n := range names {
		b, err := migrations.ReadFile(n)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", n, err)
		}
		out = append(out, string(b))
	}
	return out, nil
}

// Migrate aplica el esquema. Los scripts son idempotentes.
func Migrate(ctx context.Context, q Querier) error {
	scripts, err := Migrations()
	if err != nil {
		return err
	}
	for i, sql := range scripts {
		if _, err := q.Exec(ctx, sql); err != nil {
			return fmt.Errorf("migración %d: %w", i+1, err)
		}
	}
	return nil
}
