package help

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Add(ctx context.Context, m *models.HelpMessage) (int64, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `INSERT INTO help_messages (query, message, created_at) VALUES (?, ?, ?) RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, m.Query, m.Message, m.CreatedAt.UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	m.ID = id
	return id, nil
}

func (r *SQLRepository) list(ctx context.Context, query string) ([]models.HelpMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, query, message, created_at FROM help_messages WHERE query = ? ORDER BY id`, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.HelpMessage
	for rows.Next() {
		var m models.HelpMessage
		if err := rows.Scan(&m.ID, &m.Query, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// ListGeneric returns the messages not tied to a search query.
func (r *SQLRepository) ListGeneric(ctx context.Context) ([]models.HelpMessage, error) {
	return r.list(ctx, "")
}

func (r *SQLRepository) ListByQuery(ctx context.Context, query string) ([]models.HelpMessage, error) {
	return r.list(ctx, query)
}

// Queries lists the distinct non-empty queries that have messages.
func (r *SQLRepository) Queries(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT query FROM help_messages WHERE query <> '' ORDER BY query`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM help_messages`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
