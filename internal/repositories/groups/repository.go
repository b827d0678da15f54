// Package groups persists access groups, their memberships with per-member
// rights, and the links between groups and articles.
package groups

import (
	"context"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

// Repository covers the three group tables. Methods addressing a single
// row return common.ErrorNotFound when it does not exist.
type Repository interface {
	Create(ctx context.Context, g *models.Group) error
	Get(ctx context.Context, id string) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Group, error)

	AddMember(ctx context.Context, m *models.Membership) error
	GetMember(ctx context.Context, groupID, username string) (*models.Membership, error)
	UpdateRights(ctx context.Context, groupID, username string, rights models.Rights) error
	DeleteMember(ctx context.Context, groupID, username string) error
	DeleteMembers(ctx context.Context, groupID string) error
	CountMembers(ctx context.Context, groupID string) (int, error)
	CountAdmins(ctx context.Context, groupID string) (int, error)
	ListMembers(ctx context.Context, groupID string) ([]models.Membership, error)
	MembershipsOf(ctx context.Context, username string) ([]models.Membership, error)

	LinkArticle(ctx context.Context, groupID string, articleID int64) error
	UnlinkArticle(ctx context.Context, groupID string, articleID int64) error
	ArticleIDs(ctx context.Context, groupID string) ([]int64, error)
	DeleteLinksByGroup(ctx context.Context, groupID string) error
	DeleteLinksByArticle(ctx context.Context, articleID int64) error
}
