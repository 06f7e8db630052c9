package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lewismosage/acna-gateway/internal/api"
	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/database"
	"github.com/lewismosage/acna-gateway/internal/repository"
	"github.com/lewismosage/acna-gateway/internal/service"
	"github.com/lewismosage/acna-gateway/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithConfig(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("backend", cfg.Backend.BaseURL).Msg("Starting ACNA content gateway...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Import.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Backend client: the caller's token when there is one, the service
	// token for background work
	client, err := backend.New(backend.Config{
		BaseURL:     cfg.Backend.BaseURL,
		FileBaseURL: cfg.Backend.FileBaseURL,
		Timeout:     cfg.Backend.Timeout,
		UserAgent:   "acna-gateway",
	}, backend.Chain{backend.ContextToken{}, backend.StaticToken(cfg.Backend.ServiceToken)}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create backend client")
	}

	// Initialize services
	content := service.NewContentService(service.NewStores(client), cfg.Listing, cfg.Backend.TrackingTimeout, log)
	services := service.NewServices(repos, content, cfg, log)

	// Start background job processor
	go services.Job.StartProcessor(context.Background())
	log.Info().Msg("Background job processor started")

	// Initialize router
	router := api.NewRouter(services, cfg, log, map[string]api.HealthCheck{
		"database": db.HealthCheck,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job processor and let pending counter updates land
	services.Job.StopProcessor()
	services.Content.Wait()

	log.Info().Msg("Server exited gracefully")
}
