package articles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/helpkeeper/internal/common"
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

func seed(t *testing.T, r *SQLRepository, articles ...models.Article) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(articles))
	for i := range articles {
		id, err := r.Create(context.Background(), &articles[i])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestCreateGetDelete(t *testing.T) {
	r := NewSQLRepository(setupDB(t))
	ctx := context.Background()

	ids := seed(t, r,
		models.Article{Title: "Go basics", Authors: "Ann", Body: "b1"},
		models.Article{Title: "SQL", Authors: "Bob", Body: "YjI=", Encrypted: true},
	)
	require.Len(t, ids, 2)
	assert.Less(t, ids[0], ids[1])

	a, err := r.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "SQL", a.Title)
	assert.True(t, a.Encrypted)
	assert.Equal(t, "YjI=", a.Body)

	got, err := r.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	require.NoError(t, r.Delete(ctx, ids[0]))
	_, err = r.Get(ctx, ids[0])
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, ids[0]), common.ErrorNotFound)

	require.NoError(t, r.DeleteAll(ctx))
	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSearch(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db)
	ctx := context.Background()

	ids := seed(t, r,
		models.Article{Title: "Intro to Go", Authors: "Ann", Keywords: "Beginner"},
		models.Article{Title: "Go internals", Authors: "Bob", Keywords: "expert, runtime"},
		models.Article{Title: "Databases", Authors: "Go Team", Abstract: "tables", Keywords: "intermediate"},
		models.Article{Title: "Cooking", Authors: "Chef"},
	)

	res, err := r.Search(ctx, Filter{Text: "Go"})
	require.NoError(t, err)
	assert.Len(t, res, 3)

	res, err = r.Search(ctx, Filter{Text: "Go", Level: "Expert"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ids[1], res[0].ID)

	_, err = db.Exec(`INSERT INTO group_members (group_id, username, role, can_view, can_admin) VALUES ('g1', 'stu', 'Student', 1, 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO group_members (group_id, username, role, can_view, can_admin) VALUES ('g1', 'blind', 'Student', 0, 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO group_articles (group_id, article_id) VALUES ('g1', ?)`, ids[2])
	require.NoError(t, err)

	res, err = r.Search(ctx, Filter{Text: "", GroupID: "g1", Requester: "stu"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Databases", res[0].Title)

	res, err = r.Search(ctx, Filter{GroupID: "g1", Requester: "blind"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_LiteralWildcards(t *testing.T) {
	r := NewSQLRepository(setupDB(t))
	ctx := context.Background()

	ids := seed(t, r,
		models.Article{Title: "Go basics", Keywords: "beginner"},
		models.Article{Title: "100% coverage", Keywords: "c_level"},
		models.Article{Title: `C:\temp paths`},
	)

	res, err := r.Search(ctx, Filter{Text: "%"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ids[1], res[0].ID)

	res, err = r.Search(ctx, Filter{Text: "_"})
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = r.Search(ctx, Filter{Text: `\`})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ids[2], res[0].ID)

	res, err = r.Search(ctx, Filter{Level: "c_"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ids[1], res[0].ID)
}

func TestRights(t *testing.T) {
	r := NewSQLRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.GetRights(ctx, "article-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.UpsertRights(ctx, "article-1", models.Rights{CanView: true}))
	require.NoError(t, r.UpsertRights(ctx, "article-1", models.Rights{CanAdmin: true}))
	got, err := r.GetRights(ctx, "article-1")
	require.NoError(t, err)
	assert.Equal(t, models.Rights{CanView: false, CanAdmin: true}, *got)

	require.NoError(t, r.UpsertRights(ctx, "article-2", models.Rights{CanView: true}))
	require.NoError(t, r.UpsertRights(ctx, "course", models.Rights{CanView: true}))
	require.NoError(t, r.DeleteRights(ctx, "article-1"))
	require.NoError(t, r.DeleteArticleRights(ctx))

	_, err = r.GetRights(ctx, "article-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetRights(ctx, "course")
	assert.NoError(t, err)
}

func TestCreate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+articles\s+\(title,.*\)\s+VALUES\s+\(.*\)\s+RETURNING\s+id$`).
		WithArgs("T", "", "", "", "", "", false).
		WillReturnError(errors.New("disk full"))

	_, err = NewSQLRepository(db).Create(context.Background(), &models.Article{Title: "T"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_QueryShape(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)LIKE \? ESCAPE '\\' OR .* LOWER\(a\.keywords\) LIKE \? ESCAPE '\\' AND EXISTS .* ORDER BY a\.id$`).
		WithArgs("%x%", "%x%", "%x%", "%advanced%", "g1", "ann", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "authors", "abstract_text", "keywords", "body", "refs", "encrypted"}).
			AddRow(int64(4), "x", "", "", "Advanced", "", "", false))

	res, err := NewSQLRepository(db).Search(context.Background(),
		Filter{Text: "x", Level: "Advanced", GroupID: "g1", Requester: "ann"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, int64(4), res[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
