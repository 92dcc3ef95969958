// Package repomanager vends the Postgres repositories, bound either to the
// pool or to a transaction, and runs the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/actiontokens"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/profiles"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/refreshtokens"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/users"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ActionTokens(db dbx.DBTX) actiontokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
