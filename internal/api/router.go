// Package api provides the HTTP API for the decent-mobility service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/api/handler"
	"github.com/marlinarnz/decent-mobility/internal/api/middleware"
	"github.com/marlinarnz/decent-mobility/internal/auth"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	Metrics        *middleware.Metrics
	JWTService     *auth.JWTService
	PersonaService *persona.Service
	TripComputer   trip.Computer
	Catalog        *alternative.Catalog
	ChoiceConfig   choice.Config
	Ready          func() error
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)           // Generate/propagate request ID first
	r.Use(middleware.Tracing())           // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Ready)
	decisionHandler := handler.NewDecisionHandler(handler.DecisionHandlerConfig{
		Personas: cfg.PersonaService,
		Trips:    cfg.TripComputer,
		Catalog:  cfg.Catalog,
		Config:   cfg.ChoiceConfig,
	})
	personaHandler := handler.NewPersonaHandler(cfg.PersonaService)

	authMiddleware := middleware.Auth(cfg.JWTService)

	evaluateRateLimit := middleware.RateLimitByIP(middleware.EvaluateRateLimit)
	standardRateLimit := middleware.RateLimitBySubject(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Decision evaluation - rate limited, public
		r.With(evaluateRateLimit).Post("/decisions:evaluate", decisionHandler.EvaluateDecision)

		// Persona management (authenticated)
		r.Route("/personas", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", personaHandler.ListPersonas)
			r.Post("/", personaHandler.CreatePersona)
			r.Get("/{personaId}", personaHandler.GetPersona)
			r.Put("/{personaId}", personaHandler.UpdatePersona)
			r.Delete("/{personaId}", personaHandler.DeletePersona)
		})
	})

	return r
}
