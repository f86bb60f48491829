package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/fieldwork"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/requests"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either a *sql.DB or a
// transaction, so services can compose several of them under dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Requests(db dbx.DBTX) requests.Repository
	Fieldwork(db dbx.DBTX) fieldwork.Repository
}
