// Package main provides the entrypoint for the decent-mobility population
// run worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/batch"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/database"
	"github.com/marlinarnz/decent-mobility/internal/persona"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "decent-mobility-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting decent-mobility worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID == "" || subscription == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID and PUBSUB_SUBSCRIPTION are required")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	personaService := persona.NewService(persona.NewPostgresRepository(pool))

	catalog, err := loadCatalog()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build alternative catalog")
	}

	engine, err := choice.NewEngine(choice.DefaultConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create choice engine")
	}

	concurrency := 4
	if v := os.Getenv("RUN_CONCURRENCY"); v != "" {
		if parsed, parseErr := strconv.Atoi(v); parseErr == nil && parsed > 0 {
			concurrency = parsed
		}
	}

	driver := batch.NewDriver(batch.DriverConfig{
		Config:  batch.Config{Concurrency: concurrency},
		Engine:  engine,
		Catalog: catalog,
		Logger:  log,
	})

	handler, err := batch.NewPubSubHandler(ctx, batch.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		Driver:           driver,
		Personas:         personaService,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer handler.Close()

	// HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start processing messages
	go func() {
		if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("pubsub receive failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func loadCatalog() (*alternative.Catalog, error) {
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		specs, err := alternative.LoadSpecs(path)
		if err != nil {
			return nil, err
		}
		return alternative.NewCatalogFromSpecs(specs)
	}
	return alternative.DefaultCatalog()
}
