// Package migrations embeds the goose SQL migrations for every supported
// dialect and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// dirs maps a goose dialect onto its migrations directory.
var dirs = map[string]string{
	"sqlite3":  "sqlite",
	"postgres": "postgres",
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies all pending migrations for dialect ("sqlite3" or "postgres").
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	dir, ok := dirs[dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, dir)
}
