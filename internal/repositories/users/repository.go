// Package users persists accounts: credentials, roles, profile and the
// password-reset state.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

// Repository stores users keyed by username. Updates of an unknown user
// return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, username string) error
	UpdateRoles(ctx context.Context, username string, roles models.RoleSet) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	SetOneTimePassword(ctx context.Context, username, code string, expiry time.Time) error
	ClearReset(ctx context.Context, username string) error
	UpdateProfile(ctx context.Context, username string, p models.Profile) error
}
