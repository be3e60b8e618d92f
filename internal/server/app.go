// Package server wires configuration, storage, notification and the HTTP API
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/logging"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
	"github.com/dmitrijs2005/herbalgarden/internal/server/notify"
	"github.com/dmitrijs2005/herbalgarden/internal/server/otp"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/herbalgarden/internal/server/rest"
	"github.com/dmitrijs2005/herbalgarden/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	notifier notify.Notifier
	http     *rest.HTTPServer
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	db, err := dbx.OpenPostgres(ctx, cfg.DatabaseDSN, dbx.PoolOptions{
		MaxConns:  cfg.DatabaseMaxConns,
		SSLCAFile: cfg.DatabaseSSLCA,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	notifier, err := notify.New(cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}
	if cfg.Notifier == config.NotifierLog {
		logger.Warn(ctx, "log notifier selected: one-time codes are written to the log, not delivered")
	}

	authSvc := services.NewAuthService(db, rm, otp.NewService(cfg.OTPValidityDuration), notifier, cfg, logger)
	catalogSvc := services.NewCatalogService(db, rm, cfg)

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		notifier: notifier,
		http:     rest.NewHTTPServer(cfg, logger, authSvc, catalogSvc),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or the server fails, then
// releases the database pool and the notifier.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if c, ok := app.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error(ctx, "notifier close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
