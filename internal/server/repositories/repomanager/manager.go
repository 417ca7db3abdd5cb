package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rentable/internal/dbx"
	"github.com/dmitrijs2005/rentable/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/rentable/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/rentable/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so services can compose them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
