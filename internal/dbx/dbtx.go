// Package dbx provides the small DB abstractions shared by repositories:
// the DBTX interface implemented by both connections and transactions, a
// connection wrapper that rebinds '?' placeholders for the active driver,
// and a helper to run functions inside a transaction.
package dbx

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is the subset of database/sql used by our repos.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps *sql.DB for a given driver. Repositories always write queries
// with '?' placeholders; DB rewrites them ($1, $2, ...) when the driver
// needs it.
type DB struct {
	*sql.DB
	Driver string
	bind   int
}

// New binds db to driverName ("sqlite", "pgx", ...).
func New(db *sql.DB, driverName string) *DB {
	return &DB{DB: db, Driver: driverName, bind: sqlx.BindType(driverName)}
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.DB.ExecContext(ctx, sqlx.Rebind(d.bind, query), args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, sqlx.Rebind(d.bind, query), args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, sqlx.Rebind(d.bind, query), args...)
}

type tx struct {
	tx   *sql.Tx
	bind int
}

func (t *tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, sqlx.Rebind(t.bind, query), args...)
}

func (t *tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, sqlx.Rebind(t.bind, query), args...)
}

func (t *tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, sqlx.Rebind(t.bind, query), args...)
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ?", id)
//	    return err
//	})
func WithTx(ctx context.Context, db *DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	t, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = t.Rollback()
			panic(p)
		}
		if err != nil {
			_ = t.Rollback()
			return
		}
		err = t.Commit()
	}()

	err = fn(ctx, &tx{tx: t, bind: db.bind})
	return err
}
