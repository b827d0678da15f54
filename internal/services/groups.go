package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	MsgGroupNameEmpty   = "Group name cannot be empty."
	MsgGroupExists      = "Group already exists."
	MsgGroupNotFound    = "Group not found."
	MsgAlreadyMember    = "User is already a member of this group."
	MsgNotMember        = "User is not a member of this group."
	MsgLastAdmin        = "There must be at least one admin in the group."
	MsgArticleNotFound  = "Article not found."
	MsgArticleNotLinked = "Article is not in this group."
)

// GroupService implements the access-group model. A group that has an
// admin keeps at least one: changes that would clear the last admin are
// refused with an invariant error and leave the data unchanged.
type GroupService struct {
	db          *dbx.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewGroupService(db *dbx.DB, m repomanager.RepositoryManager, log logging.Logger) *GroupService {
	return &GroupService{db: db, repomanager: m, log: log.With("service", "groups")}
}

func notFoundOr(err error, msg, persistMsg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(msg)
	}
	return common.Persistence(persistMsg, err)
}

func (s *GroupService) CreateGroup(ctx context.Context, name string, isSpecial bool) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Validation(MsgGroupNameEmpty)
	}

	g := &models.Group{ID: uuid.NewString(), Name: name, Type: models.GroupTypeOf(isSpecial)}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		_, err := repo.GetByName(ctx, name)
		switch {
		case err == nil:
			return common.AlreadyExists(MsgGroupExists)
		case !errors.Is(err, common.ErrorNotFound):
			return common.Persistence("Failed to check group name", err)
		}
		if err := repo.Create(ctx, g); err != nil {
			return common.Persistence("Failed to create group", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "group created", "group", g.Name, "type", string(g.Type))
	return g, nil
}

// DeleteGroup removes the group with its memberships and article links.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		if _, err := repo.Get(ctx, groupID); err != nil {
			return notFoundOr(err, MsgGroupNotFound, "Failed to load group")
		}
		if err := repo.DeleteLinksByGroup(ctx, groupID); err != nil {
			return common.Persistence("Failed to delete group articles", err)
		}
		if err := repo.DeleteMembers(ctx, groupID); err != nil {
			return common.Persistence("Failed to delete group members", err)
		}
		if err := repo.Delete(ctx, groupID); err != nil {
			return common.Persistence("Failed to delete group", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "group deleted", "group_id", groupID)
	return nil
}

func (s *GroupService) GroupIDByName(ctx context.Context, name string) (string, error) {
	g, err := s.repomanager.Groups(s.db).GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", notFoundOr(err, MsgGroupNotFound, "Failed to load group")
	}
	return g.ID, nil
}

// ResolveGroup finds a group by id, then by name.
func (s *GroupService) ResolveGroup(ctx context.Context, idOrName string) (*models.Group, error) {
	return resolveGroup(ctx, s.repomanager, s.db, idOrName)
}

func resolveGroup(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, idOrName string) (*models.Group, error) {
	idOrName = strings.TrimSpace(idOrName)
	repo := m.Groups(db)
	g, err := repo.Get(ctx, idOrName)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.Persistence("Failed to load group", err)
	}
	g, err = repo.GetByName(ctx, idOrName)
	if err != nil {
		return nil, notFoundOr(err, MsgGroupNotFound, "Failed to load group")
	}
	return g, nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	list, err := s.repomanager.Groups(s.db).List(ctx)
	if err != nil {
		return nil, common.Persistence("Failed to list groups", err)
	}
	return list, nil
}

func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.Membership, error) {
	repo := s.repomanager.Groups(s.db)
	if _, err := repo.Get(ctx, groupID); err != nil {
		return nil, notFoundOr(err, MsgGroupNotFound, "Failed to load group")
	}
	list, err := repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, common.Persistence("Failed to list members", err)
	}
	return list, nil
}

// AddUserToGroup adds username with a free-text role. The first member of
// a group who joins as an instructor becomes its admin.
func (s *GroupService) AddUserToGroup(ctx context.Context, groupID, username, role string) (*models.Membership, error) {
	var m *models.Membership
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		if _, err := repo.Get(ctx, groupID); err != nil {
			return notFoundOr(err, MsgGroupNotFound, "Failed to load group")
		}
		if _, err := s.repomanager.Users(tx).GetByUsername(ctx, username); err != nil {
			return notFoundOr(err, MsgUserNotFound, "Failed to load user")
		}

		_, err := repo.GetMember(ctx, groupID, username)
		switch {
		case err == nil:
			return common.AlreadyExists(MsgAlreadyMember)
		case !errors.Is(err, common.ErrorNotFound):
			return common.Persistence("Failed to load membership", err)
		}

		n, err := repo.CountMembers(ctx, groupID)
		if err != nil {
			return common.Persistence("Failed to count members", err)
		}

		m = &models.Membership{
			GroupID:  groupID,
			Username: username,
			Role:     strings.TrimSpace(role),
			Rights:   models.InitialRights(n == 0, role),
		}
		if err := repo.AddMember(ctx, m); err != nil {
			return common.Persistence("Failed to add member", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "member added", "group_id", groupID, "username", username,
		"can_view", m.CanView, "can_admin", m.CanAdmin)
	return m, nil
}

// adminCheck selects when a rights change is tested against the
// last-admin rule.
type adminCheck int

const (
	// checkNone never refuses.
	checkNone adminCheck = iota
	// checkTarget refuses when the member loses the group's only admin flag.
	checkTarget
	// checkClearing refuses any change that clears admin while the group
	// has exactly one admin, whoever the target is.
	checkClearing
)

// change loads the membership and applies fn to its rights under check.
func (s *GroupService) change(ctx context.Context, groupID, username string, check adminCheck, fn func(models.Rights) models.Rights) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		m, err := repo.GetMember(ctx, groupID, username)
		if err != nil {
			return notFoundOr(err, MsgNotMember, "Failed to load membership")
		}

		next := fn(m.Rights)
		if check != checkNone && !next.CanAdmin && (check == checkClearing || m.CanAdmin) {
			admins, err := repo.CountAdmins(ctx, groupID)
			if err != nil {
				return common.Persistence("Failed to count admins", err)
			}
			if admins == 1 {
				return common.Invariant(MsgLastAdmin)
			}
		}

		if err := repo.UpdateRights(ctx, groupID, username, next); err != nil {
			return notFoundOr(err, MsgNotMember, "Failed to update rights")
		}
		return nil
	})
}

// UpdateViewRights sets the view flag unconditionally.
func (s *GroupService) UpdateViewRights(ctx context.Context, groupID, username string, canView bool) error {
	return s.change(ctx, groupID, username, checkNone, func(r models.Rights) models.Rights {
		r.CanView = canView
		return r
	})
}

// UpdateAdminRights sets the admin flag. Clearing it is refused while the
// group has a single admin, even when the target is not that admin.
func (s *GroupService) UpdateAdminRights(ctx context.Context, groupID, username string, canAdmin bool) error {
	return s.change(ctx, groupID, username, checkClearing, func(r models.Rights) models.Rights {
		r.CanAdmin = canAdmin
		return r
	})
}

// GrantAdminRights sets view and admin.
func (s *GroupService) GrantAdminRights(ctx context.Context, groupID, username string) error {
	return s.change(ctx, groupID, username, checkNone, func(models.Rights) models.Rights {
		return models.Rights{CanView: true, CanAdmin: true}
	})
}

// GrantViewRights sets view and clears admin.
func (s *GroupService) GrantViewRights(ctx context.Context, groupID, username string) error {
	return s.change(ctx, groupID, username, checkTarget, func(models.Rights) models.Rights {
		return models.Rights{CanView: true, CanAdmin: false}
	})
}

func (s *GroupService) CountAdmins(ctx context.Context, groupID string) (int, error) {
	n, err := s.repomanager.Groups(s.db).CountAdmins(ctx, groupID)
	if err != nil {
		return 0, common.Persistence("Failed to count admins", err)
	}
	return n, nil
}

// DeleteUserFromGroup reports whether a membership was removed. The last
// admin can only leave when nobody else is in the group.
func (s *GroupService) DeleteUserFromGroup(ctx context.Context, groupID, username string) (bool, error) {
	removed := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		m, err := repo.GetMember(ctx, groupID, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return common.Persistence("Failed to load membership", err)
		}

		if m.CanAdmin {
			admins, err := repo.CountAdmins(ctx, groupID)
			if err != nil {
				return common.Persistence("Failed to count admins", err)
			}
			members, err := repo.CountMembers(ctx, groupID)
			if err != nil {
				return common.Persistence("Failed to count members", err)
			}
			if admins <= 1 && members > 1 {
				return common.Invariant(MsgLastAdmin)
			}
		}

		if err := repo.DeleteMember(ctx, groupID, username); err != nil {
			return common.Persistence("Failed to remove member", err)
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.log.Info(ctx, "member removed", "group_id", groupID, "username", username)
	}
	return removed, nil
}

func (s *GroupService) AddArticleToGroup(ctx context.Context, groupID string, articleID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		if _, err := repo.Get(ctx, groupID); err != nil {
			return notFoundOr(err, MsgGroupNotFound, "Failed to load group")
		}
		if _, err := s.repomanager.Articles(tx).Get(ctx, articleID); err != nil {
			return notFoundOr(err, MsgArticleNotFound, "Failed to load article")
		}
		if err := repo.LinkArticle(ctx, groupID, articleID); err != nil {
			return common.Persistence("Failed to link article", err)
		}
		return nil
	})
}

func (s *GroupService) RemoveArticleFromGroup(ctx context.Context, groupID string, articleID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		if _, err := repo.Get(ctx, groupID); err != nil {
			return notFoundOr(err, MsgGroupNotFound, "Failed to load group")
		}
		if err := repo.UnlinkArticle(ctx, groupID, articleID); err != nil {
			return notFoundOr(err, MsgArticleNotLinked, "Failed to unlink article")
		}
		return nil
	})
}
