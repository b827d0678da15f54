package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/articles"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

const (
	MsgInvalidID     = "invalid id"
	MsgTitleRequired = "Title is required."
)

// ArticleService stores articles and answers the visibility queries.
// Articles are addressed by display id: the 1-based position in id order.
type ArticleService struct {
	db          *dbx.DB
	repomanager repomanager.RepositoryManager
	transform   cryptox.Transform
	log         logging.Logger
	validate    *validator.Validate
}

func NewArticleService(db *dbx.DB, m repomanager.RepositoryManager, t cryptox.Transform, log logging.Logger) *ArticleService {
	return &ArticleService{
		db:          db,
		repomanager: m,
		transform:   t,
		log:         log.With("service", "articles"),
		validate:    newValidator(),
	}
}

// AddArticle stores a and records the default access rights for its scope.
// When encrypted is set the body is stored transformed.
func (s *ArticleService) AddArticle(ctx context.Context, a models.Article, encrypted bool) (int64, error) {
	if err := s.validate.Struct(a); err != nil {
		return 0, common.Validation(MsgTitleRequired)
	}

	a.Encrypted = encrypted
	if encrypted {
		body, err := s.transform.Encode(a.Body)
		if err != nil {
			return 0, common.Persistence("Failed to encode body", err)
		}
		a.Body = body
	}

	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.insert(ctx, tx, &a, &id)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "article added", "id", id, "encrypted", encrypted)
	return id, nil
}

// insert stores an article whose body is already in stored form.
func (s *ArticleService) insert(ctx context.Context, tx dbx.DBTX, a *models.Article, id *int64) error {
	repo := s.repomanager.Articles(tx)
	newID, err := repo.Create(ctx, a)
	if err != nil {
		return common.Persistence("Failed to save article", err)
	}
	if err := repo.UpsertRights(ctx, models.ArticleScope(newID), models.DefaultRights(a.Encrypted)); err != nil {
		return common.Persistence("Failed to save article rights", err)
	}
	*id = newID
	return nil
}

func (s *ArticleService) ListArticles(ctx context.Context) ([]models.ArticleSummary, error) {
	list, err := s.repomanager.Articles(s.db).List(ctx)
	if err != nil {
		return nil, common.Persistence("Failed to list articles", err)
	}
	out := make([]models.ArticleSummary, len(list))
	for i, a := range list {
		out[i] = models.ArticleSummary{
			DisplayID: i + 1,
			ID:        a.ID,
			Title:     a.Title,
			Authors:   a.Authors,
			Abstract:  a.Abstract,
		}
	}
	return out, nil
}

func resolveDisplayID(ctx context.Context, repo articles.Repository, displayID int) (int64, error) {
	ids, err := repo.IDs(ctx)
	if err != nil {
		return 0, common.Persistence("Failed to list articles", err)
	}
	if displayID < 1 || displayID > len(ids) {
		return 0, common.NotFound(MsgInvalidID)
	}
	return ids[displayID-1], nil
}

// ResolveDisplayID maps a display id onto the stored article id.
func (s *ArticleService) ResolveDisplayID(ctx context.Context, displayID int) (int64, error) {
	return resolveDisplayID(ctx, s.repomanager.Articles(s.db), displayID)
}

func (s *ArticleService) decode(a *models.Article) error {
	if !a.Encrypted {
		return nil
	}
	body, err := s.transform.Decode(a.Body)
	if err != nil {
		return common.Persistence("Failed to decode article", err)
	}
	a.Body = body
	return nil
}

// ViewArticle returns the article with its body decoded.
func (s *ArticleService) ViewArticle(ctx context.Context, displayID int) (*models.Article, error) {
	repo := s.repomanager.Articles(s.db)
	id, err := resolveDisplayID(ctx, repo, displayID)
	if err != nil {
		return nil, err
	}
	a, err := repo.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, MsgInvalidID, "Failed to load article")
	}
	if err := s.decode(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ArticleService) ArticleDetails(ctx context.Context, displayID int) (string, error) {
	a, err := s.ViewArticle(ctx, displayID)
	if err != nil {
		return "", err
	}
	return a.Details(), nil
}

// DeleteArticle removes group links, the scope rights and the article.
// Later articles move down one display id.
func (s *ArticleService) DeleteArticle(ctx context.Context, displayID int) error {
	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Articles(tx)
		var err error
		if id, err = resolveDisplayID(ctx, repo, displayID); err != nil {
			return err
		}
		if err := s.repomanager.Groups(tx).DeleteLinksByArticle(ctx, id); err != nil {
			return common.Persistence("Failed to unlink article", err)
		}
		if err := repo.DeleteRights(ctx, models.ArticleScope(id)); err != nil {
			return common.Persistence("Failed to delete article rights", err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return notFoundOr(err, MsgInvalidID, "Failed to delete article")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "article deleted", "id", id, "display_id", displayID)
	return nil
}

// SearchArticles filters by text, level keyword and group. The group may be
// given by name or id and only articles the requester may view in it match.
func (s *ArticleService) SearchArticles(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error) {
	f := articles.Filter{Text: strings.TrimSpace(q.Text), Requester: q.Requester}
	if !models.IsAll(q.Level) {
		f.Level = strings.TrimSpace(q.Level)
	}
	if !models.IsAll(q.Group) {
		g, err := resolveGroup(ctx, s.repomanager, s.db, q.Group)
		if err != nil {
			return nil, err
		}
		f.GroupID = g.ID
	}

	found, err := s.repomanager.Articles(s.db).Search(ctx, f)
	if err != nil {
		return nil, common.Persistence("Failed to search articles", err)
	}

	out := make([]models.SearchResult, len(found))
	for i := range found {
		if err := s.decode(&found[i]); err != nil {
			return nil, err
		}
		out[i] = models.SearchResult{Seq: i + 1, Article: found[i]}
	}
	return out, nil
}

// ArticlesInGroup lists the group's articles as username sees them: the
// body reads "No Permission" unless the membership grants view. A user
// outside the group gets no articles.
func (s *ArticleService) ArticlesInGroup(ctx context.Context, groupID, username string) ([]models.GroupArticle, error) {
	groupsRepo := s.repomanager.Groups(s.db)
	if _, err := groupsRepo.Get(ctx, groupID); err != nil {
		return nil, notFoundOr(err, MsgGroupNotFound, "Failed to load group")
	}

	m, err := groupsRepo.GetMember(ctx, groupID, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return []models.GroupArticle{}, nil
		}
		return nil, common.Persistence("Failed to load membership", err)
	}
	canView := m.CanView

	ids, err := groupsRepo.ArticleIDs(ctx, groupID)
	if err != nil {
		return nil, common.Persistence("Failed to list group articles", err)
	}

	repo := s.repomanager.Articles(s.db)
	out := make([]models.GroupArticle, 0, len(ids))
	for _, id := range ids {
		a, err := repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, common.Persistence("Failed to load article", err)
		}
		if canView {
			if err := s.decode(a); err != nil {
				return nil, err
			}
		} else {
			a.Body = models.NoPermission
		}
		out = append(out, models.GroupArticle{Article: *a, GroupID: groupID})
	}
	return out, nil
}

// ScopeRights returns the access record of the article-{id} scope.
func (s *ArticleService) ScopeRights(ctx context.Context, articleID int64) (*models.Rights, error) {
	r, err := s.repomanager.Articles(s.db).GetRights(ctx, models.ArticleScope(articleID))
	if err != nil {
		return nil, notFoundOr(err, MsgArticleNotFound, "Failed to load article rights")
	}
	return r, nil
}
