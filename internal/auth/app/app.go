package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/pqauth/internal/auth/http"
	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	signer *jwtx.MLDSASigner

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	sessionService      *service.SessionService
	bootstrapService    *service.BootstrapService
	authorizeService    *service.AuthorizeService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "pqauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := InitSigningKey(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer = signer

	app.initServices()

	if err := app.bootstrapIfEmpty(context.Background()); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"issuer", app.cfg.Issuer,
		"version", BuildVersion,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		IDTokenTTL: app.cfg.IDTokenTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.sessionService = &service.SessionService{
		Store: app.db,
		TTL:   app.cfg.SessionTTL,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}
	app.authorizeService = &service.AuthorizeService{
		Store:   app.db,
		CodeTTL: app.cfg.CodeTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// bootstrapIfEmpty seeds the first user and client when the store holds
// neither. Generated credentials appear once in the log and nowhere
// else; the store keeps only hashes.
func (app *Application) bootstrapIfEmpty(ctx context.Context) error {
	bootstrapped, err := app.bootstrapService.IsBootstrapped(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap check failed: %w", err)
	}
	if bootstrapped {
		return nil
	}

	redirectURIs := app.cfg.BootstrapRedirectURIs
	if len(redirectURIs) == 0 {
		redirectURIs = []string{"http://localhost:3000/callback"}
	}

	result, err := app.bootstrapService.Bootstrap(ctx, domain.BootstrapData{
		Username:     app.cfg.BootstrapUsername,
		Password:     app.cfg.BootstrapPassword,
		Email:        app.cfg.BootstrapEmail,
		Name:         app.cfg.BootstrapName,
		ClientName:   app.cfg.BootstrapClientName,
		RedirectURIs: redirectURIs,
	})
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	log := app.logger.With("user_id", result.UserID, "client_id", result.ClientID)
	if app.cfg.BootstrapPassword == "" {
		log = log.With("password", result.Password)
	}
	log.Info("store was empty, bootstrapped initial user and client",
		"username", app.cfg.BootstrapUsername,
		"client_secret", result.ClientSecret,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.BootstrapService = app.bootstrapService
	router.AuthorizeService = app.authorizeService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
