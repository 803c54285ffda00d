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

	httpapi "github.com/meridianapps/meridian/internal/auth/http"
	"github.com/meridianapps/meridian/internal/auth/service"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/internal/auth/store/drivers/sqlite"
	"github.com/meridianapps/meridian/pkg/cryptox"
	"github.com/meridianapps/meridian/pkg/jwtx"
	"github.com/meridianapps/meridian/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.Signer
	verifier *jwtx.Verifier

	tokenService        *service.TokenService
	loginService        *service.LoginService
	mfaService          *service.MFAService
	signupService       *service.SignupService
	resetService        *service.PasswordResetService
	verificationService *service.VerificationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "meridian-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

// initSigner sets up the Ed25519 token signer. With no key file configured
// the key is ephemeral: a restart only forces clients through a refresh.
func (app *Application) initSigner() error {
	kid := fmt.Sprintf("meridian-%d", time.Now().Unix())

	if app.cfg.SigningKey != "" {
		pemKey, err := os.ReadFile(app.cfg.SigningKey)
		if err != nil {
			return fmt.Errorf("failed to read signing key: %w", err)
		}
		signer, err := jwtx.NewSignerFromPEM(kid, pemKey)
		if err != nil {
			return fmt.Errorf("failed to load signing key: %w", err)
		}
		app.signer = signer
		app.logger.Info("token signer loaded from file", "kid", kid)
	} else {
		signer, err := jwtx.NewEphemeralSigner(kid)
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.signer = signer
		app.logger.Info("ephemeral token signer generated", "kid", kid)
	}

	app.verifier = jwtx.NewVerifier(app.signer.PublicKey(), app.cfg.Issuer)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	mailer := service.LogMailer{}

	app.loginService = &service.LoginService{
		Store:  app.db,
		Tokens: app.tokenService,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Tokens: app.tokenService,
		Issuer: "Meridian",
	}
	app.verificationService = &service.VerificationService{
		Store:  app.db,
		Mailer: mailer,
	}
	app.signupService = &service.SignupService{
		Store:        app.db,
		Verification: app.verificationService,
	}
	app.resetService = &service.PasswordResetService{
		Store:  app.db,
		Tokens: app.tokenService,
		Mailer: mailer,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.LoginService = app.loginService
	router.MFAService = app.mfaService
	router.SignupService = app.signupService
	router.ResetService = app.resetService
	router.VerificationService = app.verificationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
