package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
)

const (
	invitationCodeLen      = 4
	invitationCodeAttempts = 10
)

// newCode is a seam for generating invitation codes.
var newCode = func() string { return common.ShortCode(invitationCodeLen) }

type InvitationService struct {
	db          *dbx.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewInvitationService(db *dbx.DB, m repomanager.RepositoryManager, log logging.Logger) *InvitationService {
	return &InvitationService{db: db, repomanager: m, log: log.With("service", "invitations")}
}

// Create stores a new code granting roles and returns it. Codes that
// collide with an existing one are regenerated.
func (s *InvitationService) Create(ctx context.Context, roles ...models.Role) (string, error) {
	set, err := models.NewRoleSet(roles...)
	if err != nil {
		return "", err
	}

	repo := s.repomanager.Invitations(s.db)
	for i := 0; i < invitationCodeAttempts; i++ {
		code := newCode()
		_, err := repo.Get(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", common.Persistence("Failed to check invitation code", err)
		}

		if err := repo.Create(ctx, &models.Invitation{Code: code, Roles: set}); err != nil {
			return "", common.Persistence("Failed to save invitation", err)
		}
		s.log.Info(ctx, "invitation created", "roles", set.String())
		return code, nil
	}
	return "", common.Persistence("Failed to generate invitation code",
		fmt.Errorf("no free code after %d attempts", invitationCodeAttempts))
}

func (s *InvitationService) Lookup(ctx context.Context, code string) (*models.Invitation, error) {
	inv, err := s.repomanager.Invitations(s.db).Get(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(MsgInvalidInvitation)
		}
		return nil, common.Persistence("Failed to load invitation", err)
	}
	return inv, nil
}

func (s *InvitationService) List(ctx context.Context) ([]models.Invitation, error) {
	list, err := s.repomanager.Invitations(s.db).List(ctx)
	if err != nil {
		return nil, common.Persistence("Failed to list invitations", err)
	}
	return list, nil
}
