package invitations

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

func (r *SQLRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	query := `INSERT INTO invitations (code, roles, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, inv.Code, inv.Roles.String(), inv.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, code string) (*models.Invitation, error) {
	var (
		inv   models.Invitation
		roles string
	)
	query := `SELECT code, roles, created_at FROM invitations WHERE code = ?`
	err := r.db.QueryRowContext(ctx, query, code).Scan(&inv.Code, &roles, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if inv.Roles, err = models.ParseRoleSet(roles); err != nil {
		return nil, fmt.Errorf("invitation %s has invalid roles %q: %w", code, roles, err)
	}
	return &inv, nil
}

// Delete removes the code. Deleting an unknown code returns common.ErrorNotFound,
// which makes a second redemption of the same code fail.
func (r *SQLRepository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE code = ?`, code)
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

func (r *SQLRepository) List(ctx context.Context) ([]models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, roles, created_at FROM invitations ORDER BY created_at, code`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Invitation
	for rows.Next() {
		var (
			inv   models.Invitation
			roles string
		)
		if err := rows.Scan(&inv.Code, &roles, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if inv.Roles, err = models.ParseRoleSet(roles); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
