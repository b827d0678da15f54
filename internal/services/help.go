package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
)

const MsgEmptyHelpMessage = "Message cannot be empty."

// HelpService collects messages sent to the help desk, either generic or
// tied to the search query the sender could not answer.
type HelpService struct {
	db          *dbx.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewHelpService(db *dbx.DB, m repomanager.RepositoryManager, log logging.Logger) *HelpService {
	return &HelpService{db: db, repomanager: m, log: log.With("service", "help")}
}

func (s *HelpService) send(ctx context.Context, query, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return common.Validation(MsgEmptyHelpMessage)
	}
	m := &models.HelpMessage{Query: strings.TrimSpace(query), Message: message}
	if _, err := s.repomanager.Help(s.db).Add(ctx, m); err != nil {
		return common.Persistence("Failed to send message", err)
	}
	s.log.Info(ctx, "help message received", "query", m.Query)
	return nil
}

func (s *HelpService) SendGeneric(ctx context.Context, message string) error {
	return s.send(ctx, "", message)
}

// SendSpecific files message under query. An empty query makes it generic.
func (s *HelpService) SendSpecific(ctx context.Context, query, message string) error {
	return s.send(ctx, query, message)
}

func (s *HelpService) GenericMessages(ctx context.Context) ([]models.HelpMessage, error) {
	list, err := s.repomanager.Help(s.db).ListGeneric(ctx)
	if err != nil {
		return nil, common.Persistence("Failed to list messages", err)
	}
	return list, nil
}

func (s *HelpService) SpecificMessages(ctx context.Context, query string) ([]models.HelpMessage, error) {
	list, err := s.repomanager.Help(s.db).ListByQuery(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, common.Persistence("Failed to list messages", err)
	}
	return list, nil
}

func (s *HelpService) Queries(ctx context.Context) ([]string, error) {
	list, err := s.repomanager.Help(s.db).Queries(ctx)
	if err != nil {
		return nil, common.Persistence("Failed to list queries", err)
	}
	return list, nil
}

func (s *HelpService) Clear(ctx context.Context) error {
	if err := s.repomanager.Help(s.db).Clear(ctx); err != nil {
		return common.Persistence("Failed to clear messages", err)
	}
	return nil
}
