package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/helpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestDB(t *testing.T) *dbx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repomanager.NewSQLRepositoryManager().RunMigrations(ctx, db))
	return db
}

type fixture struct {
	db       *dbx.DB
	users    *UserService
	invites  *InvitationService
	groups   *GroupService
	articles *ArticleService
	help     *HelpService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	rm := repomanager.NewSQLRepositoryManager()
	log := discardLogger()
	return &fixture{
		db:       db,
		users:    NewUserService(db, rm, cryptox.Argon2Hasher{}, log),
		invites:  NewInvitationService(db, rm, log),
		groups:   NewGroupService(db, rm, log),
		articles: NewArticleService(db, rm, cryptox.Base64Transform{}, log),
		help:     NewHelpService(db, rm, log),
	}
}
