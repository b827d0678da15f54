package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/migrations"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/articles"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/groups"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/help"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/invitations"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/users"
)

// SQLRepositoryManager vends the SQL repositories. The same implementations
// serve SQLite and PostgreSQL because dbx rebinds placeholders.
type SQLRepositoryManager struct{}

func NewSQLRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{}
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Invitations(db dbx.DBTX) invitations.Repository {
	return invitations.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Groups(db dbx.DBTX) groups.Repository {
	return groups.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Articles(db dbx.DBTX) articles.Repository {
	return articles.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Help(db dbx.DBTX) help.Repository {
	return help.NewSQLRepository(db)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = func(ctx context.Context, db *sql.DB, dialect string) error {
	return migrations.Up(ctx, db, dialect)
}

// RunMigrations applies the embedded migrations for db's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *dbx.DB) error {
	return migrateUp(ctx, db.DB, db.Dialect())
}
