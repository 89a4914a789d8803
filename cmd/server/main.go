package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/replyhub/identity-api/internal/audit"
	"github.com/replyhub/identity-api/internal/authz"
	"github.com/replyhub/identity-api/internal/config"
	"github.com/replyhub/identity-api/internal/credential"
	"github.com/replyhub/identity-api/internal/handlers"
	"github.com/replyhub/identity-api/internal/middleware"
	"github.com/replyhub/identity-api/internal/migration"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/replyhub/identity-api/internal/routes"
	"github.com/replyhub/identity-api/internal/service"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config *config.Config
	db     *sql.DB
	logger zerolog.Logger
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	app := &application{
		config: cfg,
		db:     db,
		logger: logger,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	workspaceRepo := repository.NewWorkspaceRepository(app.db)
	identityRepo := repository.NewIdentityRepository(app.db)
	employeeRepo := repository.NewEmployeeRepository(app.db)
	inviteRepo := repository.NewInviteRepository(app.db)
	auditRepo := repository.NewAuditRepository(app.db)

	recorder := audit.NewRecorder(auditRepo, logger)

	// Plan catalog with configured overrides.
	plans := models.DefaultPlans()
	for name, limit := range app.config.PlanLimits {
		if plan, ok := plans[name]; ok && limit > 0 {
			plan.MaxEmployees = limit
			plans[name] = plan
		}
	}

	// External credential provider.
	var provider credential.Provider
	if app.config.Credential.Endpoint != "" {
		provider = credential.NewHTTPProvider(app.config.Credential.Endpoint, app.config.Credential.Timeout, logger)
	} else {
		logger.Warn().Msg("no credential provider endpoint configured, using in-memory provider")
		provider = credential.NewLocalProvider()
	}

	// Services
	issuer := service.NewInviteIssuer(inviteRepo, identityRepo, employeeRepo, workspaceRepo, plans, recorder, logger)
	acceptor := service.NewInviteAcceptor(inviteRepo, identityRepo, employeeRepo, provider, recorder, logger)
	resolver := service.NewRoleResolver(identityRepo, employeeRepo, workspaceRepo, plans, recorder, logger)

	// Handlers
	authenticator := authz.NewAuthenticator(app.config.JWTSecret, resolver, logger)
	inviteHandler := handlers.NewInviteHandler(issuer, acceptor, inviteRepo, logger)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceRepo, employeeRepo, recorder, plans, logger)
	identityHandler := handlers.NewIdentityHandler(identityRepo, workspaceRepo, logger)
	accessHandler := handlers.NewAccessHandler(resolver, logger)

	return routes.NewRouter(authenticator, inviteHandler, workspaceHandler, identityHandler, accessHandler)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
