package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const userColumns = `username, password, roles, email, first_name, middle_name, last_name,
	preferred_first_name, setup_complete, one_time_password, password_expiry`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u      models.User
		roles  string
		expiry sql.NullTime
	)
	err := s.Scan(&u.Username, &u.PasswordHash, &roles,
		&u.Profile.Email, &u.Profile.FirstName, &u.Profile.MiddleName, &u.Profile.LastName,
		&u.Profile.PreferredFirstName, &u.SetupComplete, &u.OneTimePassword, &expiry)
	if err != nil {
		return nil, err
	}

	u.Roles, err = models.ParseRoleSet(roles)
	if err != nil {
		return nil, fmt.Errorf("user %s has invalid roles %q: %w", u.Username, roles, err)
	}
	if expiry.Valid {
		t := expiry.Time
		u.PasswordExpiry = &t
	}
	return &u, nil
}

func (r *SQLRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var expiry any
	if u.PasswordExpiry != nil {
		expiry = u.PasswordExpiry.UTC()
	}

	_, err := r.db.ExecContext(ctx, query, u.Username, u.PasswordHash, u.Roles.String(),
		u.Profile.Email, u.Profile.FirstName, u.Profile.MiddleName, u.Profile.LastName,
		u.Profile.PreferredFirstName, u.SetupComplete, u.OneTimePassword, expiry)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// exec runs a single-user update and maps "no row touched" to ErrorNotFound.
func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, username string) error {
	return r.exec(ctx, `DELETE FROM users WHERE username = ?`, username)
}

func (r *SQLRepository) UpdateRoles(ctx context.Context, username string, roles models.RoleSet) error {
	return r.exec(ctx, `UPDATE users SET roles = ? WHERE username = ?`, roles.String(), username)
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password = ? WHERE username = ?`, passwordHash, username)
}

func (r *SQLRepository) SetOneTimePassword(ctx context.Context, username, code string, expiry time.Time) error {
	return r.exec(ctx, `UPDATE users SET one_time_password = ?, password_expiry = ? WHERE username = ?`,
		code, expiry.UTC(), username)
}

func (r *SQLRepository) ClearReset(ctx context.Context, username string) error {
	return r.exec(ctx, `UPDATE users SET one_time_password = '', password_expiry = NULL WHERE username = ?`, username)
}

func (r *SQLRepository) UpdateProfile(ctx context.Context, username string, p models.Profile) error {
	query := `UPDATE users SET email = ?, first_name = ?, middle_name = ?, last_name = ?,
		preferred_first_name = ?, setup_complete = ? WHERE username = ?`
	return r.exec(ctx, query, p.Email, p.FirstName, p.MiddleName, p.LastName, p.PreferredFirstName, true, username)
}
