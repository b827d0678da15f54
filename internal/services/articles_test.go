package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addArticles(t *testing.T, f *fixture, titles ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(titles))
	for _, title := range titles {
		id, err := f.articles.AddArticle(context.Background(), models.Article{Title: title, Authors: "A", Body: title + " body"}, false)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestArticleService_EncryptedRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.articles.AddArticle(ctx, models.Article{Title: "Secret", Body: "the plain body"}, true)
	require.NoError(t, err)

	var stored string
	require.NoError(t, f.db.QueryRow(`SELECT body FROM articles WHERE id = ?`, id).Scan(&stored))
	assert.NotEqual(t, "the plain body", stored)

	a, err := f.articles.ViewArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "the plain body", a.Body)
	assert.True(t, a.Encrypted)

	details, err := f.articles.ArticleDetails(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, details, "Body: the plain body")

	rights, err := f.articles.ScopeRights(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Rights{CanView: false, CanAdmin: true}, *rights)
}

func TestArticleService_AESGCMRoundTrip(t *testing.T) {
	db := newTestDB(t)
	tr, err := cryptox.NewTransform(cryptox.TransformAESGCM, strings.Repeat("ab", 32))
	require.NoError(t, err)
	s := NewArticleService(db, repomanager.NewSQLRepositoryManager(), tr, discardLogger())
	ctx := context.Background()

	_, err = s.AddArticle(ctx, models.Article{Title: "T", Body: "secret"}, true)
	require.NoError(t, err)
	a, err := s.ViewArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "secret", a.Body)
}

func TestArticleService_PlainDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.articles.AddArticle(ctx, models.Article{Title: "Open", Body: "b"}, false)
	require.NoError(t, err)

	rights, err := f.articles.ScopeRights(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Rights{CanView: true, CanAdmin: false}, *rights)

	_, err = f.articles.AddArticle(ctx, models.Article{Title: "  "}, false)
	assert.Equal(t, MsgTitleRequired, common.Message(err))
}

func TestArticleService_DisplayIDsShiftAfterDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := addArticles(t, f, "one", "two", "three")

	require.NoError(t, f.articles.DeleteArticle(ctx, 2))

	list, err := f.articles.ListArticles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].DisplayID)
	assert.Equal(t, ids[0], list[0].ID)
	assert.Equal(t, 2, list[1].DisplayID)
	assert.Equal(t, ids[2], list[1].ID, "internal ids are untouched")
	assert.Equal(t, "three", list[1].Title)

	_, err = f.articles.ScopeRights(ctx, ids[1])
	assert.ErrorIs(t, err, common.ErrorNotFound)

	for _, bad := range []int{0, 3, -1} {
		_, err := f.articles.ViewArticle(ctx, bad)
		assert.Equal(t, MsgInvalidID, common.Message(err))
		assert.ErrorIs(t, err, common.ErrorNotFound)
	}
	assert.Equal(t, MsgInvalidID, common.Message(f.articles.DeleteArticle(ctx, 5)))

	id, err := f.articles.ResolveDisplayID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ids[2], id)
}

func TestArticleService_DeleteRemovesGroupLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := addArticles(t, f, "one")
	g, err := f.groups.CreateGroup(ctx, "G", false)
	require.NoError(t, err)
	require.NoError(t, f.groups.AddArticleToGroup(ctx, g.ID, ids[0]))

	require.NoError(t, f.articles.DeleteArticle(ctx, 1))

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM group_articles`).Scan(&n))
	assert.Zero(t, n)
}

func TestArticleService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "stu", "ann")

	for _, a := range []models.Article{
		{Title: "Intro to Go", Authors: "Ann", Keywords: "beginner"},
		{Title: "Go concurrency", Authors: "Bob", Keywords: "Advanced, expert"},
		{Title: "SQL", Authors: "Cid", Abstract: "joins in Go", Keywords: "intermediate"},
	} {
		_, err := f.articles.AddArticle(ctx, a, false)
		require.NoError(t, err)
	}

	res, err := f.articles.SearchArticles(ctx, models.SearchQuery{Text: "Go", Level: "All", Group: "All"})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, 1, res[0].Seq)
	assert.Equal(t, 3, res[2].Seq)
	assert.Equal(t, "Seq: 1, Title: Intro to Go, Authors: Ann, Abstract: ", res[0].String())

	articles := make([]models.Article, len(res))
	for i, r := range res {
		articles[i] = r.Article
	}
	stats := models.LevelStatistics(articles)
	assert.Equal(t, models.LevelStats{Beginner: 1, Intermediate: 1, Advanced: 1, Expert: 1}, stats)

	res, err = f.articles.SearchArticles(ctx, models.SearchQuery{Text: "Go", Level: "advanced", Group: "all"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Go concurrency", res[0].Article.Title)

	g, err := f.groups.CreateGroup(ctx, "Course", false)
	require.NoError(t, err)
	_, err = f.groups.AddUserToGroup(ctx, g.ID, "ann", "Instructor")
	require.NoError(t, err)
	_, err = f.groups.AddUserToGroup(ctx, g.ID, "stu", "Student")
	require.NoError(t, err)
	require.NoError(t, f.groups.AddArticleToGroup(ctx, g.ID, 3))

	res, err = f.articles.SearchArticles(ctx, models.SearchQuery{Group: "Course", Requester: "stu"})
	require.NoError(t, err)
	assert.Empty(t, res, "no view right yet")

	require.NoError(t, f.groups.UpdateViewRights(ctx, g.ID, "stu", true))
	res, err = f.articles.SearchArticles(ctx, models.SearchQuery{Group: g.ID, Requester: "stu"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "SQL", res[0].Article.Title)

	_, err = f.articles.SearchArticles(ctx, models.SearchQuery{Group: "Unknown", Requester: "stu"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestArticleService_ArticlesInGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUsers(t, f, "ann", "stu")

	id, err := f.articles.AddArticle(ctx, models.Article{Title: "Hidden", Body: "secret"}, true)
	require.NoError(t, err)
	g, err := f.groups.CreateGroup(ctx, "G", false)
	require.NoError(t, err)
	_, err = f.groups.AddUserToGroup(ctx, g.ID, "ann", "Instructor")
	require.NoError(t, err)
	_, err = f.groups.AddUserToGroup(ctx, g.ID, "stu", "Student")
	require.NoError(t, err)
	require.NoError(t, f.groups.AddArticleToGroup(ctx, g.ID, id))
	require.NoError(t, f.groups.UpdateViewRights(ctx, g.ID, "stu", true))

	list, err := f.articles.ArticlesInGroup(ctx, g.ID, "ann")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NoPermission, list[0].Body, "admin without view right")

	list, err = f.articles.ArticlesInGroup(ctx, g.ID, "stu")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "secret", list[0].Body)
	assert.Equal(t, g.ID, list[0].GroupID)

	list, err = f.articles.ArticlesInGroup(ctx, g.ID, "outsider")
	require.NoError(t, err)
	assert.Empty(t, list, "titles stay hidden from non-members")

	_, err = f.articles.ArticlesInGroup(ctx, "nope", "ann")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
