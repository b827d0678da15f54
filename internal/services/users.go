// Package services contains the business logic behind the CLI: accounts and
// invitations, access groups, articles, the help desk and backups. Services
// own transactions; repositories are obtained from a RepositoryManager for
// either the connection or the running transaction.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// Messages shown for account operations.
const (
	MsgUserNotFound      = "User not found."
	MsgUsernameTaken     = "Username already exists."
	MsgUsernameEmpty     = "Username cannot be empty."
	MsgInvalidInvitation = "Invalid invitation code."
	MsgRequiredFields    = "Please fill in all required fields."
	MsgUserLastAdmin     = "User is the last admin of a group with other members."
)

// UserService manages accounts: creation, lookup, roles, passwords, the
// one-time password reset and profile completion.
type UserService struct {
	db          *dbx.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	log         logging.Logger
	validate    *validator.Validate
	now         func() time.Time
}

func NewUserService(db *dbx.DB, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		log:         log.With("service", "users"),
		validate:    newValidator(),
		now:         time.Now,
	}
}

// SetClock replaces the time source used for reset expiry.
func (s *UserService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(MsgUserNotFound)
		}
		return nil, common.Persistence("Failed to load user", err)
	}
	return u, nil
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	n, err := s.repomanager.Users(s.db).Count(ctx)
	if err != nil {
		return 0, common.Persistence("Failed to count users", err)
	}
	return n, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, common.Persistence("Failed to list users", err)
	}
	return list, nil
}

// newUser builds a user with a hashed password and a canonical role set.
func (s *UserService) newUser(username, password string, roles []models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.Validation(MsgUsernameEmpty)
	}
	set, err := models.NewRoleSet(roles...)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.Persistence("Failed to hash password", err)
	}
	return &models.User{Username: username, PasswordHash: hash, Roles: set}, nil
}

// create inserts u unless the username is taken. It runs on tx.
func (s *UserService) create(ctx context.Context, tx dbx.DBTX, u *models.User) error {
	repo := s.repomanager.Users(tx)
	_, err := repo.GetByUsername(ctx, u.Username)
	switch {
	case err == nil:
		return common.AlreadyExists(MsgUsernameTaken)
	case !errors.Is(err, common.ErrorNotFound):
		return common.Persistence("Failed to check username", err)
	}
	if err := repo.Create(ctx, u); err != nil {
		return common.Persistence("Failed to create user", err)
	}
	return nil
}

// Add creates a user with the given roles.
func (s *UserService) Add(ctx context.Context, username, password string, roles ...models.Role) (*models.User, error) {
	u, err := s.newUser(username, password, roles)
	if err != nil {
		return nil, err
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.create(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created", "username", u.Username, "roles", u.Roles.String())
	return u, nil
}

// RegisterWithInvitation creates the user with the invitation's roles and
// consumes the code in the same transaction.
func (s *UserService) RegisterWithInvitation(ctx context.Context, code, username, password string) (*models.User, error) {
	var u *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		invRepo := s.repomanager.Invitations(tx)
		inv, err := invRepo.Get(ctx, code)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(MsgInvalidInvitation)
			}
			return common.Persistence("Failed to load invitation", err)
		}

		if u, err = s.newUser(username, password, inv.Roles); err != nil {
			return err
		}
		if err := s.create(ctx, tx, u); err != nil {
			return err
		}

		if err := invRepo.Delete(ctx, code); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(MsgInvalidInvitation)
			}
			return common.Persistence("Failed to consume invitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered with invitation", "username", u.Username, "roles", u.Roles.String())
	return u, nil
}

func (s *UserService) mapUpdateErr(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(MsgUserNotFound)
	}
	return common.Persistence(msg, err)
}

// Remove deletes the user and their group memberships in one transaction.
// It is refused while the user is the last admin of a group that has other
// members.
func (s *UserService) Remove(ctx context.Context, username string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).GetByUsername(ctx, username); err != nil {
			return s.mapUpdateErr(err, "Failed to load user")
		}

		groupsRepo := s.repomanager.Groups(tx)
		memberships, err := groupsRepo.MembershipsOf(ctx, username)
		if err != nil {
			return common.Persistence("Failed to load memberships", err)
		}
		for _, m := range memberships {
			if !m.CanAdmin {
				continue
			}
			admins, err := groupsRepo.CountAdmins(ctx, m.GroupID)
			if err != nil {
				return common.Persistence("Failed to count admins", err)
			}
			members, err := groupsRepo.CountMembers(ctx, m.GroupID)
			if err != nil {
				return common.Persistence("Failed to count members", err)
			}
			if admins <= 1 && members > 1 {
				return common.Invariant(MsgUserLastAdmin)
			}
		}

		for _, m := range memberships {
			if err := groupsRepo.DeleteMember(ctx, m.GroupID, username); err != nil {
				return common.Persistence("Failed to remove membership", err)
			}
		}
		if err := s.repomanager.Users(tx).Delete(ctx, username); err != nil {
			return s.mapUpdateErr(err, "Failed to delete user")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "username", username)
	return nil
}

// UpdateRoles replaces the role set wholesale.
func (s *UserService) UpdateRoles(ctx context.Context, username string, roles ...models.Role) error {
	set, err := models.NewRoleSet(roles...)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).UpdateRoles(ctx, username, set); err != nil {
		return s.mapUpdateErr(err, "Failed to update roles")
	}
	s.log.Info(ctx, "roles updated", "username", username, "roles", set.String())
	return nil
}

func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return common.Persistence("Failed to hash password", err)
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, username, hash); err != nil {
		return s.mapUpdateErr(err, "Failed to update password")
	}
	return nil
}

func (s *UserService) SetOneTimePassword(ctx context.Context, username, code string, expiry time.Time) error {
	if err := s.repomanager.Users(s.db).SetOneTimePassword(ctx, username, code, expiry); err != nil {
		return s.mapUpdateErr(err, "Failed to set one-time password")
	}
	return nil
}

// ResetAccount issues a one-time password valid for ttl and returns it with
// its expiry.
func (s *UserService) ResetAccount(ctx context.Context, username string, ttl time.Duration) (string, time.Time, error) {
	code := common.ShortCode(8)
	expiry := s.now().Add(ttl)
	if err := s.SetOneTimePassword(ctx, username, code, expiry); err != nil {
		return "", time.Time{}, err
	}
	s.log.Info(ctx, "account reset issued", "username", username, "expires", expiry)
	return code, expiry, nil
}

func (s *UserService) ClearReset(ctx context.Context, username string) error {
	if err := s.repomanager.Users(s.db).ClearReset(ctx, username); err != nil {
		return s.mapUpdateErr(err, "Failed to clear reset")
	}
	return nil
}

// CompletePasswordReset stores the new password and clears the reset state
// in one transaction.
func (s *UserService) CompletePasswordReset(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return common.Persistence("Failed to hash password", err)
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if err := repo.UpdatePassword(ctx, username, hash); err != nil {
			return s.mapUpdateErr(err, "Failed to update password")
		}
		if err := repo.ClearReset(ctx, username); err != nil {
			return s.mapUpdateErr(err, "Failed to clear reset")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "password reset completed", "username", username)
	return nil
}

// CompleteProfile requires email, first and last name and marks the
// account set up.
func (s *UserService) CompleteProfile(ctx context.Context, username string, p models.Profile) error {
	p = p.Trimmed()
	if err := s.validate.Struct(p); err != nil {
		return common.Validation(MsgRequiredFields)
	}
	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, username, p); err != nil {
		return s.mapUpdateErr(err, "Failed to save profile")
	}
	return nil
}

func (s *UserService) CheckPassword(u *models.User, password string) bool {
	return s.hasher.Verify(u.PasswordHash, password)
}
