package groups

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

func TestGroupCRUD(t *testing.T) {
	r := NewSQLRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Group{ID: "g1", Name: "Security", Type: models.GroupSpecial}))
	require.NoError(t, r.Create(ctx, &models.Group{ID: "g2", Name: "Algebra", Type: models.GroupGeneral}))
	assert.Error(t, r.Create(ctx, &models.Group{ID: "g3", Name: "Algebra", Type: models.GroupGeneral}), "names are unique")

	g, err := r.GetByName(ctx, "Security")
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, models.GroupSpecial, g.Type)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Algebra", list[0].Name)

	require.NoError(t, r.Delete(ctx, "g1"))
	_, err = r.Get(ctx, "g1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "g1"), common.ErrorNotFound)
}

func TestMembers(t *testing.T) {
	r := NewSQLRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Group{ID: "g1", Name: "G", Type: models.GroupGeneral}))

	require.NoError(t, r.AddMember(ctx, &models.Membership{GroupID: "g1", Username: "ann", Role: "Instructor",
		Rights: models.Rights{CanAdmin: true}}))
	require.NoError(t, r.AddMember(ctx, &models.Membership{GroupID: "g1", Username: "bob", Role: "Viewer"}))
	assert.Error(t, r.AddMember(ctx, &models.Membership{GroupID: "g1", Username: "bob", Role: "Viewer"}))

	n, err := r.CountMembers(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	admins, err := r.CountAdmins(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	require.NoError(t, r.UpdateRights(ctx, "g1", "bob", models.Rights{CanView: true, CanAdmin: true}))
	m, err := r.GetMember(ctx, "g1", "bob")
	require.NoError(t, err)
	assert.True(t, m.CanView)
	assert.True(t, m.CanAdmin)

	members, err := r.ListMembers(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "ann", members[0].Username)

	require.NoError(t, r.Create(ctx, &models.Group{ID: "g2", Name: "H", Type: models.GroupSpecial}))
	require.NoError(t, r.AddMember(ctx, &models.Membership{GroupID: "g2", Username: "ann", Rights: models.Rights{CanAdmin: true}}))
	of, err := r.MembershipsOf(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, of, 2)
	assert.Equal(t, "g1", of[0].GroupID)
	assert.Equal(t, "g2", of[1].GroupID)
	assert.True(t, of[1].CanAdmin)

	assert.ErrorIs(t, r.UpdateRights(ctx, "g1", "zed", models.Rights{}), common.ErrorNotFound)
	require.NoError(t, r.DeleteMember(ctx, "g1", "bob"))
	assert.ErrorIs(t, r.DeleteMember(ctx, "g1", "bob"), common.ErrorNotFound)

	require.NoError(t, r.DeleteMembers(ctx, "g1"))
	n, err = r.CountMembers(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestArticleLinks(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Group{ID: "g1", Name: "G", Type: models.GroupGeneral}))

	require.NoError(t, r.LinkArticle(ctx, "g1", 7))
	require.NoError(t, r.LinkArticle(ctx, "g1", 3))
	require.NoError(t, r.LinkArticle(ctx, "g1", 3))

	ids, err := r.ArticleIDs(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, ids)

	require.NoError(t, r.UnlinkArticle(ctx, "g1", 3))
	assert.ErrorIs(t, r.UnlinkArticle(ctx, "g1", 3), common.ErrorNotFound)

	require.NoError(t, r.DeleteLinksByArticle(ctx, 7))
	ids, err = r.ArticleIDs(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, r.LinkArticle(ctx, "g1", 9))
	require.NoError(t, r.DeleteLinksByGroup(ctx, "g1"))
	ids, err = r.ArticleIDs(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCountAdmins_DBError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+group_members\s+WHERE\s+group_id\s*=\s*\?\s+AND\s+can_admin\s*=\s*\?$`).
		WithArgs("g1", true).
		WillReturnError(errors.New("boom"))

	_, err = NewSQLRepository(db).CountAdmins(context.Background(), "g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMember_NotFoundViaMock(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM group_members`).
		WithArgs("g1", "ann").
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "username", "role", "can_view", "can_admin"}))

	_, err = NewSQLRepository(db).GetMember(context.Background(), "g1", "ann")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
