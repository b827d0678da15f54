package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *SQLRepository) Create(ctx context.Context, g *models.Group) error {
	query := `INSERT INTO access_groups (id, name, group_type) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, g.ID, g.Name, string(g.Type)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) getOne(ctx context.Context, where string, arg any) (*models.Group, error) {
	var (
		g  models.Group
		gt string
	)
	query := `SELECT id, name, group_type FROM access_groups WHERE ` + where + ` = ?`
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&g.ID, &g.Name, &gt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	g.Type = models.GroupType(gt)
	return &g, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.Group, error) {
	return r.getOne(ctx, "id", id)
}

func (r *SQLRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	return r.getOne(ctx, "name", name)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM access_groups WHERE id = ?`, id)
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, group_type FROM access_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Group
	for rows.Next() {
		var (
			g  models.Group
			gt string
		)
		if err := rows.Scan(&g.ID, &g.Name, &gt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		g.Type = models.GroupType(gt)
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) AddMember(ctx context.Context, m *models.Membership) error {
	query := `INSERT INTO group_members (group_id, username, role, can_view, can_admin) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, m.GroupID, m.Username, m.Role, m.CanView, m.CanAdmin); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetMember(ctx context.Context, groupID, username string) (*models.Membership, error) {
	var m models.Membership
	query := `SELECT group_id, username, role, can_view, can_admin FROM group_members
		WHERE group_id = ? AND username = ?`
	err := r.db.QueryRowContext(ctx, query, groupID, username).
		Scan(&m.GroupID, &m.Username, &m.Role, &m.CanView, &m.CanAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &m, nil
}

func (r *SQLRepository) UpdateRights(ctx context.Context, groupID, username string, rights models.Rights) error {
	return r.exec(ctx, `UPDATE group_members SET can_view = ?, can_admin = ? WHERE group_id = ? AND username = ?`,
		rights.CanView, rights.CanAdmin, groupID, username)
}

func (r *SQLRepository) DeleteMember(ctx context.Context, groupID, username string) error {
	return r.exec(ctx, `DELETE FROM group_members WHERE group_id = ? AND username = ?`, groupID, username)
}

func (r *SQLRepository) DeleteMembers(ctx context.Context, groupID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) CountMembers(ctx context.Context, groupID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID)
}

func (r *SQLRepository) CountAdmins(ctx context.Context, groupID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM group_members WHERE group_id = ? AND can_admin = ?`, groupID, true)
}

// ListMembers returns members in the order they joined.
func (r *SQLRepository) ListMembers(ctx context.Context, groupID string) ([]models.Membership, error) {
	return r.members(ctx, `SELECT group_id, username, role, can_view, can_admin FROM group_members
		WHERE group_id = ? ORDER BY seq`, groupID)
}

// MembershipsOf returns every membership of username, oldest first.
func (r *SQLRepository) MembershipsOf(ctx context.Context, username string) ([]models.Membership, error) {
	return r.members(ctx, `SELECT group_id, username, role, can_view, can_admin FROM group_members
		WHERE username = ? ORDER BY seq`, username)
}

func (r *SQLRepository) members(ctx context.Context, query string, args ...any) ([]models.Membership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.Username, &m.Role, &m.CanView, &m.CanAdmin); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// LinkArticle is idempotent.
func (r *SQLRepository) LinkArticle(ctx context.Context, groupID string, articleID int64) error {
	query := `INSERT INTO group_articles (group_id, article_id) VALUES (?, ?)
		ON CONFLICT (group_id, article_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, groupID, articleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) UnlinkArticle(ctx context.Context, groupID string, articleID int64) error {
	return r.exec(ctx, `DELETE FROM group_articles WHERE group_id = ? AND article_id = ?`, groupID, articleID)
}

func (r *SQLRepository) ArticleIDs(ctx context.Context, groupID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT article_id FROM group_articles WHERE group_id = ? ORDER BY article_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *SQLRepository) DeleteLinksByGroup(ctx context.Context, groupID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_articles WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteLinksByArticle(ctx context.Context, articleID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_articles WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

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
