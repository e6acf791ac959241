// Package server initializes and runs the main application. It opens the
// database, applies migrations, wires the services together and keeps a
// maintenance sweep for expired sessions running until shutdown. The
// presentation layer (routing, templates) is an external collaborator that
// embeds the services exposed here.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/config"
	"github.com/dpavlenko/newsboard/internal/server/repositories/repomanager"
	"github.com/dpavlenko/newsboard/internal/server/services"
)

const sessionPurgeInterval = time.Hour

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Users    *services.UserService
	Sessions *services.SessionService
	News     *services.NewsService
	Admin    *services.AdminService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		Users:    services.NewUserService(db, rm, logger),
		Sessions: services.NewSessionService(db, rm, cfg, logger),
		News:     services.NewNewsService(db, rm, logger),
		Admin:    services.NewAdminService(db, rm, logger),
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

// purgeExpiredSessions sweeps out expired session rows until ctx is done.
func (app *App) purgeExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.Sessions.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "session purge failed", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired sessions", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeExpiredSessions(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err.Error())
	}
}
