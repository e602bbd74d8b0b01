// Package main provides the entrypoint for the decent-mobility API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/api"
	"github.com/marlinarnz/decent-mobility/internal/api/middleware"
	"github.com/marlinarnz/decent-mobility/internal/auth"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/database"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/telemetry"
	"github.com/marlinarnz/decent-mobility/internal/trip"
	"github.com/marlinarnz/decent-mobility/internal/trip/odtable"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "decent-mobility-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting decent-mobility API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Initialize persona repository and service
	personaRepo := persona.NewPostgresRepository(pool)
	personaService := persona.NewService(personaRepo)
	log.Info().Msg("persona service initialized")

	// Build the alternative catalog: custom JSON catalog if configured,
	// builtin modes otherwise.
	catalog, err := loadCatalog()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build alternative catalog")
	}
	log.Info().
		Strs("modes", catalog.Modes()).
		Msg("alternative catalog initialized")

	// Initialize trip computation: OD-table collaborator behind a cache
	// when configured, nil otherwise (requests must carry distances inline).
	var tripComputer trip.Computer
	if baseURL := os.Getenv("ODTABLE_BASE_URL"); baseURL != "" {
		tripComputer = trip.NewService(trip.ServiceConfig{
			Computer: odtable.NewClient(odtable.ClientConfig{BaseURL: baseURL}),
			Logger:   log,
		})
		log.Info().Str("base_url", baseURL).Msg("od-table trip computer initialized")
	} else {
		log.Warn().Msg("ODTABLE_BASE_URL not set - decision requests must supply trip distances inline")
	}

	// Decision weights, overridable per deployment
	choiceConfig := choice.DefaultConfig()
	if v := os.Getenv("CHOICE_COST_WEIGHT"); v != "" {
		if w, parseErr := strconv.ParseFloat(v, 64); parseErr == nil {
			choiceConfig.CostWeight = w
		}
	}
	if v := os.Getenv("CHOICE_TIME_WEIGHT"); v != "" {
		if w, parseErr := strconv.ParseFloat(v, 64); parseErr == nil {
			choiceConfig.TimeWeight = w
		}
	}
	if err := choiceConfig.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid decision weights")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		Metrics:        metrics,
		JWTService:     jwtService,
		PersonaService: personaService,
		TripComputer:   tripComputer,
		Catalog:        catalog,
		ChoiceConfig:   choiceConfig,
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
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
