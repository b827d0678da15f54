// Package articles persists articles and the access-rights records kept
// per article scope.
package articles

import (
	"context"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

// Filter narrows Search. Empty Level and GroupID disable their filters.
type Filter struct {
	Text      string
	Level     string
	GroupID   string
	Requester string
}

type Repository interface {
	Create(ctx context.Context, a *models.Article) (int64, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	List(ctx context.Context) ([]models.Article, error)
	IDs(ctx context.Context) ([]int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Search(ctx context.Context, f Filter) ([]models.Article, error)

	UpsertRights(ctx context.Context, scope string, rights models.Rights) error
	GetRights(ctx context.Context, scope string) (*models.Rights, error)
	DeleteRights(ctx context.Context, scope string) error
	DeleteArticleRights(ctx context.Context) error
}
