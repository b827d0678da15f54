package cli

import (
	"context"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

func (a *App) addArticle(ctx context.Context, _ []string) error {
	var art models.Article
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Title *", &art.Title},
		{"Authors", &art.Authors},
		{"Abstract", &art.Abstract},
		{"Keywords", &art.Keywords},
	}
	for _, f := range fields {
		v, err := a.text(f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	body, err := GetMultiline(a.reader, "Body", a.out)
	if err != nil {
		return err
	}
	art.Body = body

	if art.References, err = a.text("References"); err != nil {
		return err
	}
	enc, err := a.text("Encrypt body? (y/N)")
	if err != nil {
		return err
	}

	if _, err := a.articles.AddArticle(ctx, art, yes(enc)); err != nil {
		return err
	}
	a.println("Article added.")
	return nil
}

func (a *App) listArticles(ctx context.Context, _ []string) error {
	list, err := a.articles.ListArticles(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No articles.")
		return nil
	}
	for _, s := range list {
		a.println(s.String())
	}
	return nil
}

func (a *App) levelStats(ctx context.Context, _ []string) error {
	res, err := a.articles.SearchArticles(ctx, models.SearchQuery{Level: models.FilterAll, Group: models.FilterAll})
	if err != nil {
		return err
	}
	all := make([]models.Article, len(res))
	for i, r := range res {
		all[i] = r.Article
	}
	a.println(models.LevelStatistics(all).String())
	return nil
}

func (a *App) viewArticle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("view")
	}
	n, err := displayID(args[0])
	if err != nil {
		return err
	}
	details, err := a.articles.ArticleDetails(ctx, n)
	if err != nil {
		return err
	}
	a.println(details)
	return nil
}

func (a *App) deleteArticle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delete-article")
	}
	n, err := displayID(args[0])
	if err != nil {
		return err
	}
	if err := a.articles.DeleteArticle(ctx, n); err != nil {
		return err
	}
	a.println("Article deleted.")
	return nil
}

func (a *App) search(ctx context.Context, _ []string) error {
	q := models.SearchQuery{Requester: a.flow.Username}
	var err error
	if q.Text, err = a.text("Search text"); err != nil {
		return err
	}
	if q.Level, err = a.text("Level (Beginner, Intermediate, Advanced, Expert or All)"); err != nil {
		return err
	}
	if q.Group, err = a.text("Group (name, id or All)"); err != nil {
		return err
	}

	res, err := a.articles.SearchArticles(ctx, q)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		a.println("No articles found.")
		return nil
	}
	for _, r := range res {
		a.println(r.String())
	}
	return nil
}

func (a *App) groupArticles(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("group-articles")
	}
	g, err := a.groups.ResolveGroup(ctx, args[0])
	if err != nil {
		return err
	}
	list, err := a.articles.ArticlesInGroup(ctx, g.ID, a.flow.Username)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No articles in group.")
		return nil
	}
	for _, ga := range list {
		a.println(ga.Article.Details())
		a.println()
	}
	return nil
}
