// Package repomanager vends repositories bound to a connection or a
// transaction and applies the schema migrations for the active dialect.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/articles"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/groups"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/help"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/invitations"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *dbx.DB) error
	Users(db dbx.DBTX) users.Repository
	Invitations(db dbx.DBTX) invitations.Repository
	Groups(db dbx.DBTX) groups.Repository
	Articles(db dbx.DBTX) articles.Repository
	Help(db dbx.DBTX) help.Repository
}
