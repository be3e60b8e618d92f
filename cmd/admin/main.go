package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/herbalgarden/internal/admincli"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/auth"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/repomanager"
)

func main() {

	ctx := context.Background()

	// Only environment and .env are consulted; positional args belong to
	// the command.
	cfg, err := config.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := dbx.OpenPostgres(ctx, cfg.DatabaseDSN, dbx.PoolOptions{MaxConns: 1, SSLCAFile: cfg.DatabaseSSLCA})
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	app := admincli.NewApp(db, rm, auth.NewPasswordHasher(cfg.BcryptCost), os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
