// Package server initializes and runs the Filehaven backend: database,
// migrations, services, and the public HTTP API, with graceful shutdown.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/captcha"
	"github.com/filehaven/filehaven/internal/server/config"
	"github.com/filehaven/filehaven/internal/server/httpapi"
	"github.com/filehaven/filehaven/internal/server/mailer"
	"github.com/filehaven/filehaven/internal/server/repositories/repomanager"
	"github.com/filehaven/filehaven/internal/server/services"
)

// sessionCleanupInterval is how often expired sessions are swept.
const sessionCleanupInterval = time.Hour

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	httpapi  *httpapi.Server
	sessions *services.SessionService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	verifier := captcha.NewHTTPVerifier(cfg.CaptchaVerifyURL, cfg.CaptchaSecret)

	userService := services.NewUserService(db, rm, cfg, logger)
	sessionService := services.NewSessionService(db, rm, cfg, logger)
	verificationService := services.NewEmailVerificationService(db, rm, mail, verifier, cfg, logger)
	resetService := services.NewPasswordResetService(db, rm, mail, verifier, cfg, logger)
	fileService := services.NewFileService(db, rm, cfg, logger)

	api := httpapi.NewServer(cfg, logger,
		userService, sessionService, verificationService, resetService, fileService)

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		httpapi:  api,
		sessions: sessionService,
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
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.httpapi.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)
	if err := app.httpapi.Run(); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startSessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.sessions.CleanupExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "session cleanup error", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSessionCleanup(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
