// Package help stores messages sent to the help desk.
package help

import (
	"context"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

type Repository interface {
	Add(ctx context.Context, m *models.HelpMessage) (int64, error)
	ListGeneric(ctx context.Context) ([]models.HelpMessage, error)
	ListByQuery(ctx context.Context, query string) ([]models.HelpMessage, error)
	Queries(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}
