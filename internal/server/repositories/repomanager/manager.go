package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/categories"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/plants"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/systems"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Plants(db dbx.DBTX) plants.Repository
	Systems(db dbx.DBTX) systems.Repository
}
