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
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/config"
	"github.com/stanstork/stratum-spaces/internal/handlers"
	"github.com/stanstork/stratum-spaces/internal/middleware"
	"github.com/stanstork/stratum-spaces/internal/migration"
	"github.com/stanstork/stratum-spaces/internal/notification"
	"github.com/stanstork/stratum-spaces/internal/repository"
	"github.com/stanstork/stratum-spaces/internal/routes"
	"github.com/stanstork/stratum-spaces/internal/temporal"
	"github.com/stanstork/stratum-spaces/internal/temporal/activities"
	"github.com/stanstork/stratum-spaces/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	tc "go.temporal.io/sdk/client"
)

type application struct {
	config         *config.Config
	db             *sql.DB
	temporalClient tc.Client
	logger         zerolog.Logger
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
	if err := cfg.RequireServer(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

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
	if err := migration.RunMigrations(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Temporal client.
	temporalClient, err := tc.Dial(tc.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewLogAdapter(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to create Temporal client")
	}
	defer temporalClient.Close()

	// Create the application instance.
	app := &application{
		config:         cfg,
		db:             db,
		temporalClient: temporalClient,
		logger:         logger,
	}

	// Start the Temporal worker that delivers invite emails.
	inviteWorker := app.startTemporalWorker()

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, inviteWorker)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	// Repositories
	accountRepo := repository.NewAccountRepository(app.db)
	spaceRepo := repository.NewSpaceRepository(app.db)
	inviteRepo := repository.NewInviteRepository(app.db)
	// Saved invites are handed to Temporal for delivery.
	dispatcher := temporal.NewDispatcher(app.temporalClient, app.logger)

	// Handlers
	return routes.NewRouter(routes.Handlers{
		Health:   handlers.NewHealthHandler(app.db),
		Auth:     handlers.NewAuthHandler(accountRepo, app.config.JWTSecret, app.logger),
		Accounts: handlers.NewAccountHandler(accountRepo, app.logger),
		Spaces:   handlers.NewSpaceHandler(spaceRepo, app.logger),
		Invites:  handlers.NewInviteHandler(inviteRepo, spaceRepo, dispatcher, app.logger),
		Members:  spaceRepo,
	})
}

// startTemporalWorker registers the invite delivery workflow and starts polling its task queue.
func (app *application) startTemporalWorker() *worker.Worker {
	// Mailer for invites
	mailer, err := notification.NewSMTPInviteMailer(app.config.Email)
	if err != nil {
		app.logger.Fatal().Err(err).Msg("failed to configure invite mailer")
	}

	w := worker.New(app.temporalClient, &activities.Activities{
		Invites:           repository.NewInviteRepository(app.db),
		Spaces:            repository.NewSpaceRepository(app.db),
		Mailer:            mailer,
		InviteURLTemplate: app.config.Email.InviteURLTemplate,
	}, app.logger)
	if err := w.Start(); err != nil {
		app.logger.Fatal().Err(err).Msg("Unable to start worker")
	}
	return w
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, inviteWorker *worker.Worker) {
	logger := app.logger
	server := &http.Server{
		Addr:              ":" + app.config.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
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

	// Stop the Temporal worker.
	inviteWorker.Stop()
}
