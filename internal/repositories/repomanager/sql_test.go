package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories_ReturnRepos(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var m RepositoryManager = NewSQLRepositoryManager()
	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Invitations(db))
	assert.NotNil(t, m.Groups(db))
	assert.NotNil(t, m.Articles(db))
	assert.NotNil(t, m.Help(db))
}

func TestRunMigrations_UsesDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := migrateUp
	t.Cleanup(func() { migrateUp = orig })

	var got []string
	migrateUp = func(ctx context.Context, db *sql.DB, dialect string) error {
		got = append(got, dialect)
		return nil
	}

	m := NewSQLRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), dbx.New(db, dbx.DriverSQLite)))
	require.NoError(t, m.RunMigrations(context.Background(), dbx.New(db, dbx.DriverPostgres)))
	assert.Equal(t, []string{"sqlite3", "postgres"}, got)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := migrateUp
	t.Cleanup(func() { migrateUp = orig })
	migrateUp = func(ctx context.Context, db *sql.DB, dialect string) error {
		return errors.New("boom")
	}

	err = NewSQLRepositoryManager().RunMigrations(context.Background(), dbx.New(db, dbx.DriverSQLite))
	assert.EqualError(t, err, "boom")
}

func TestRunMigrations_SQLite(t *testing.T) {
	db, err := dbx.Open(context.Background(), "sqlite:"+t.TempDir()+"/rm.db")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewSQLRepositoryManager().RunMigrations(context.Background(), db))

	n, err := NewSQLRepositoryManager().Users(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
