package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const articleColumns = `a.id, a.title, a.authors, a.abstract_text, a.keywords, a.body, a.refs, a.encrypted`

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (*models.Article, error) {
	var a models.Article
	if err := s.Scan(&a.ID, &a.Title, &a.Authors, &a.Abstract, &a.Keywords, &a.Body, &a.References, &a.Encrypted); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a and returns the generated id. a.ID is ignored.
func (r *SQLRepository) Create(ctx context.Context, a *models.Article) (int64, error) {
	query := `INSERT INTO articles (title, authors, abstract_text, keywords, body, refs, encrypted)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, a.Title, a.Authors, a.Abstract, a.Keywords, a.Body, a.References, a.Encrypted).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = ?`
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// List returns every article in ascending id order.
func (r *SQLRepository) List(ctx context.Context) ([]models.Article, error) {
	return r.query(ctx, `SELECT `+articleColumns+` FROM articles a ORDER BY a.id`)
}

func (r *SQLRepository) IDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM articles ORDER BY id`)
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

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
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

func (r *SQLRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches f.Text as a substring of title, authors or abstract using
// the store's LIKE collation.
func (r *SQLRepository) Search(ctx context.Context, f Filter) ([]models.Article, error) {
	var (
		b    strings.Builder
		args []any
	)
	like := "%" + likeEscaper.Replace(f.Text) + "%"

	b.WriteString(`SELECT ` + articleColumns + ` FROM articles a
		WHERE (a.title LIKE ? ESCAPE '\' OR a.authors LIKE ? ESCAPE '\' OR a.abstract_text LIKE ? ESCAPE '\')`)
	args = append(args, like, like, like)

	if f.Level != "" {
		b.WriteString(` AND LOWER(a.keywords) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(f.Level))+"%")
	}

	if f.GroupID != "" {
		b.WriteString(` AND EXISTS (
			SELECT 1 FROM group_articles ga
			JOIN group_members gm ON gm.group_id = ga.group_id
			WHERE ga.article_id = a.id AND ga.group_id = ? AND gm.username = ? AND gm.can_view = ?)`)
		args = append(args, f.GroupID, f.Requester, true)
	}

	b.WriteString(` ORDER BY a.id`)
	return r.query(ctx, b.String(), args...)
}

func (r *SQLRepository) UpsertRights(ctx context.Context, scope string, rights models.Rights) error {
	query := `INSERT INTO access_rights (scope, can_view, can_admin) VALUES (?, ?, ?)
		ON CONFLICT (scope) DO UPDATE SET can_view = excluded.can_view, can_admin = excluded.can_admin`
	if _, err := r.db.ExecContext(ctx, query, scope, rights.CanView, rights.CanAdmin); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetRights(ctx context.Context, scope string) (*models.Rights, error) {
	var rights models.Rights
	err := r.db.QueryRowContext(ctx, `SELECT can_view, can_admin FROM access_rights WHERE scope = ?`, scope).
		Scan(&rights.CanView, &rights.CanAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rights, nil
}

func (r *SQLRepository) DeleteRights(ctx context.Context, scope string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM access_rights WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteArticleRights drops every "article-*" scope record.
func (r *SQLRepository) DeleteArticleRights(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM access_rights WHERE scope LIKE ?`, "article-%"); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
