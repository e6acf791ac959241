package repomanager

import (
	"context"
	"database/sql"

	"github.com/dpavlenko/newsboard/internal/dbx"
	"github.com/dpavlenko/newsboard/internal/server/admin"
	"github.com/dpavlenko/newsboard/internal/server/repositories/news"
	"github.com/dpavlenko/newsboard/internal/server/repositories/sessions"
	"github.com/dpavlenko/newsboard/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	News(db dbx.DBTX) news.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Admin(db dbx.DBTX) admin.Repository
}
