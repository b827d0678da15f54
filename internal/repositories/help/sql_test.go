package help

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/helpkeeper/internal/migrations"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db, "sqlite3"))
	return db
}

func TestAddListClear(t *testing.T) {
	r := NewSQLRepository(setupDB(t))
	ctx := context.Background()

	m := &models.HelpMessage{Message: "how do I log in?"}
	id, err := r.Add(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)

	_, err = r.Add(ctx, &models.HelpMessage{Query: "goroutines", Message: "nothing found"})
	require.NoError(t, err)
	_, err = r.Add(ctx, &models.HelpMessage{Query: "goroutines", Message: "still nothing"})
	require.NoError(t, err)
	_, err = r.Add(ctx, &models.HelpMessage{Query: "channels", Message: "?"})
	require.NoError(t, err)

	generic, err := r.ListGeneric(ctx)
	require.NoError(t, err)
	require.Len(t, generic, 1)
	assert.Equal(t, "how do I log in?", generic[0].Message)

	byQuery, err := r.ListByQuery(ctx, "goroutines")
	require.NoError(t, err)
	require.Len(t, byQuery, 2)
	assert.Equal(t, "nothing found", byQuery[0].Message)

	queries, err := r.Queries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"channels", "goroutines"}, queries)

	require.NoError(t, r.Clear(ctx))
	queries, err = r.Queries(ctx)
	require.NoError(t, err)
	assert.Empty(t, queries)
}

func TestQueries_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+DISTINCT\s+query\s+FROM\s+help_messages`).WillReturnError(errors.New("boom"))

	_, err = NewSQLRepository(db).Queries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}
