// Package invitations stores one-time registration codes and the roles they grant.
package invitations

import (
	"context"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

type Repository interface {
	Create(ctx context.Context, inv *models.Invitation) error
	Get(ctx context.Context, code string) (*models.Invitation, error)
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]models.Invitation, error)
}
