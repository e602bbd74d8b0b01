package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/api/models"
	"github.com/marlinarnz/decent-mobility/internal/api/response"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// DecisionHandler handles decision evaluation endpoints.
type DecisionHandler struct {
	personas *persona.Service
	trips    trip.Computer
	catalog  *alternative.Catalog
	config   choice.Config
}

// DecisionHandlerConfig holds dependencies for the decision handler.
type DecisionHandlerConfig struct {
	Personas *persona.Service
	Trips    trip.Computer
	Catalog  *alternative.Catalog
	Config   choice.Config
}

// NewDecisionHandler creates a new DecisionHandler.
func NewDecisionHandler(cfg DecisionHandlerConfig) *DecisionHandler {
	return &DecisionHandler{
		personas: cfg.Personas,
		trips:    cfg.Trips,
		catalog:  cfg.Catalog,
		config:   cfg.Config,
	}
}

// EvaluateDecision handles POST /v1/decisions:evaluate - evaluate one
// (persona, trip) pair against the catalog.
func (h *DecisionHandler) EvaluateDecision(w http.ResponseWriter, r *http.Request) {
	var input models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if (input.PersonaID == nil) == (input.Persona == nil) {
		response.BadRequest(w, r, "exactly one of personaId and persona is required", []models.FieldError{
			{Field: "personaId", Message: "required if persona not provided"},
			{Field: "persona", Message: "required if personaId not provided"},
		})
		return
	}

	profile, ok := h.resolvePersona(w, r, input)
	if !ok {
		return
	}

	tripCtx, ok := h.resolveTrip(w, r, input.Trip)
	if !ok {
		return
	}

	config := h.config
	if input.Weights != nil {
		config = choice.Config{CostWeight: input.Weights.Cost, TimeWeight: input.Weights.Time}
	}

	engine, err := choice.NewEngine(config)
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "weights", Message: "must be >= 0 and not both zero"},
		})
		return
	}

	var opts []choice.Option
	if len(input.ModesUnavailable) > 0 {
		opts = append(opts, choice.WithModesUnavailable(input.ModesUnavailable...))
	}

	decision, err := engine.Choose(profile, tripCtx, h.catalog, opts...)
	if err != nil {
		var compErr *choice.ComputationError
		if errors.As(err, &compErr) {
			response.ComputationError(w, r, compErr.Error())
			return
		}
		response.Internal(w, r, "decision evaluation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIDecision(decision))
}

// resolvePersona loads the stored profile or validates the inline one.
func (h *DecisionHandler) resolvePersona(w http.ResponseWriter, r *http.Request, input models.DecisionRequest) (*persona.Profile, bool) {
	if input.PersonaID != nil {
		profile, err := h.personas.Get(r.Context(), *input.PersonaID)
		if err != nil {
			if errors.Is(err, persona.ErrProfileNotFound) {
				response.NotFound(w, r, "persona not found: "+*input.PersonaID)
			} else {
				response.Internal(w, r, "failed to load persona")
			}
			return nil, false
		}
		return profile, true
	}

	in := input.Persona
	id := "inline"
	if in.Name != "" {
		id = "inline:" + in.Name
	}

	profile, err := persona.NewProfile(persona.Profile{
		ID:            id,
		Name:          in.Name,
		Budget:        in.Budget,
		MaxTravelTime: time.Duration(in.MaxTravelTimeMinutes * float64(time.Minute)),
		Abilities:     in.Abilities,
		Capabilities:  in.Capabilities,
		Preferences:   in.Preferences,
		Attributes:    in.Attributes,
		TripNeeds:     in.TripNeeds,
	})
	if err != nil {
		var valErr *persona.ValidationError
		if errors.As(err, &valErr) {
			fieldErrors := make([]models.FieldError, 0, len(valErr.Errors))
			for _, fe := range valErr.Errors {
				fieldErrors = append(fieldErrors, models.FieldError{
					Field:   "persona." + fe.Field,
					Message: fe.Message,
				})
			}
			response.BadRequest(w, r, "invalid persona", fieldErrors)
		} else {
			response.Internal(w, r, "failed to build persona")
		}
		return nil, false
	}

	return profile, true
}

// resolveTrip builds the trip context from the request, consulting the
// trip collaborator when no distance is supplied inline.
func (h *DecisionHandler) resolveTrip(w http.ResponseWriter, r *http.Request, in models.TripInput) (*trip.Context, bool) {
	if in.Origin == "" || in.Destination == "" {
		response.BadRequest(w, r, "trip origin and destination are required", []models.FieldError{
			{Field: "trip.origin", Message: "is required"},
			{Field: "trip.destination", Message: "is required"},
		})
		return nil, false
	}

	if in.DistanceKm == nil && h.trips != nil {
		computed, err := h.trips.ComputeTrip(r.Context(), in.Origin, in.Destination)
		if err != nil {
			if errors.Is(err, trip.ErrPairUnknown) {
				response.NotFound(w, r, "no trip data for the given origin-destination pair")
			} else {
				response.Internal(w, r, "trip computation failed")
			}
			return nil, false
		}
		// Annotate a copy: the computer may hand out a shared context.
		tripCtx := *computed
		tripCtx.Purpose = in.Purpose
		tripCtx.TimeOfDay = in.TimeOfDay
		return &tripCtx, true
	}

	var distance float64
	if in.DistanceKm != nil {
		distance = *in.DistanceKm
	}

	tripCtx, err := trip.New(trip.Context{
		Origin:        in.Origin,
		Destination:   in.Destination,
		DistanceKm:    distance,
		ReferenceTime: time.Duration(in.RefTimeMinutes * float64(time.Minute)),
		Purpose:       in.Purpose,
		TimeOfDay:     in.TimeOfDay,
	})
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return nil, false
	}
	return tripCtx, true
}

// toAPIDecision converts a domain Decision to its API representation.
func toAPIDecision(d *choice.Decision) models.DecisionResponse {
	evals := make([]models.Evaluation, 0, len(d.Evaluations))
	for _, ev := range d.Evaluations {
		reasons := make([]string, 0, len(ev.Reasons))
		for _, reason := range ev.Reasons {
			reasons = append(reasons, string(reason))
		}
		evals = append(evals, models.Evaluation{
			Mode:              ev.Mode,
			Cost:              ev.Cost,
			TravelTimeMinutes: ev.TravelTime.Minutes(),
			EnergyKJ:          ev.EnergyKJ,
			Accessible:        ev.Accessible,
			Affordable:        ev.Affordable,
			Timely:            ev.Timely,
			Decent:            ev.Decent,
			Score:             ev.Score,
			Reasons:           reasons,
		})
	}

	resp := models.DecisionResponse{
		PersonaID:        d.PersonaID,
		Origin:           d.Origin,
		Destination:      d.Destination,
		MobilityDeprived: d.MobilityDeprived,
		Evaluations:      evals,
	}
	if d.Chosen != "" {
		chosen := d.Chosen
		resp.Chosen = &chosen
	}
	return resp
}
