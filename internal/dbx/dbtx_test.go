package dbx

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	db, err := sql.Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT);`)
	require.NoError(t, err)
	return New(db, DriverSQLite)
}

func countRows(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES (?)`, "ok")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES (?)`, "fail")
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, countRows(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES (?)`, "panic")
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}

func TestDB_RebindsForPostgres(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := New(raw, DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE t SET v = $1 WHERE id = $2`)).
		WithArgs("x", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT v FROM t WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("x"))
	mock.ExpectCommit()

	_, err = db.ExecContext(context.Background(), `UPDATE t SET v = ? WHERE id = ?`, "x", 1)
	require.NoError(t, err)

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		var v string
		return tx.QueryRowContext(ctx, `SELECT v FROM t WHERE id = ?`, 1).Scan(&v)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_KeepsQuestionMarksForSQLite(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := New(raw, DriverSQLite)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM t WHERE id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err = db.ExecContext(context.Background(), `DELETE FROM t WHERE id = ?`, 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen(t *testing.T) {
	db, err := Open(context.Background(), "sqlite:"+t.TempDir()+"/test.db")
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, DriverSQLite, db.Driver)
	assert.Equal(t, "sqlite3", db.Dialect())

	_, err = Open(context.Background(), "mysql://u:p@localhost/db")
	assert.Error(t, err)

	_, err = Open(context.Background(), "::not a url")
	assert.Error(t, err)
}
