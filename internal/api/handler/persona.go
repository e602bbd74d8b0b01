package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marlinarnz/decent-mobility/internal/api/models"
	"github.com/marlinarnz/decent-mobility/internal/api/response"
	"github.com/marlinarnz/decent-mobility/internal/persona"
)

// PersonaHandler handles persona profile endpoints.
type PersonaHandler struct {
	personas *persona.Service
}

// NewPersonaHandler creates a new PersonaHandler.
func NewPersonaHandler(personas *persona.Service) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

// ListPersonas handles GET /v1/personas.
func (h *PersonaHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 200 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	result, err := h.personas.List(r.Context(), persona.ListOptions{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		response.Internal(w, r, "failed to list personas")
		return
	}

	items := make([]models.Persona, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toAPIPersona(p))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	response.JSON(w, r, http.StatusOK, models.PagedPersonas{
		Items: items,
		Meta: models.PagedMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	})
}

// GetPersona handles GET /v1/personas/{personaId}.
func (h *PersonaHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personaId")

	p, err := h.personas.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, persona.ErrProfileNotFound) {
			response.NotFound(w, r, "persona not found: "+id)
		} else {
			response.Internal(w, r, "failed to load persona")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIPersona(p))
}

// CreatePersona handles POST /v1/personas.
func (h *PersonaHandler) CreatePersona(w http.ResponseWriter, r *http.Request) {
	input, ok := decodePersonaInput(w, r)
	if !ok {
		return
	}

	p, err := h.personas.Create(r.Context(), input)
	if err != nil {
		writePersonaError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusCreated, toAPIPersona(p))
}

// UpdatePersona handles PUT /v1/personas/{personaId}.
func (h *PersonaHandler) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personaId")

	input, ok := decodePersonaInput(w, r)
	if !ok {
		return
	}

	p, err := h.personas.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, persona.ErrProfileNotFound) {
			response.NotFound(w, r, "persona not found: "+id)
			return
		}
		writePersonaError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIPersona(p))
}

// DeletePersona handles DELETE /v1/personas/{personaId}.
func (h *PersonaHandler) DeletePersona(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personaId")

	if err := h.personas.Delete(r.Context(), id); err != nil {
		if errors.Is(err, persona.ErrProfileNotFound) {
			response.NotFound(w, r, "persona not found: "+id)
		} else {
			response.Internal(w, r, "failed to delete persona")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodePersonaInput(w http.ResponseWriter, r *http.Request) (persona.Input, bool) {
	var in models.PersonaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return persona.Input{}, false
	}

	return persona.Input{
		Name:          in.Name,
		Budget:        in.Budget,
		MaxTravelTime: time.Duration(in.MaxTravelTimeMinutes * float64(time.Minute)),
		Abilities:     in.Abilities,
		Capabilities:  in.Capabilities,
		Preferences:   in.Preferences,
		Attributes:    in.Attributes,
		TripNeeds:     in.TripNeeds,
	}, true
}

func writePersonaError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *persona.ValidationError
	if errors.As(err, &valErr) {
		fieldErrors := make([]models.FieldError, 0, len(valErr.Errors))
		for _, fe := range valErr.Errors {
			fieldErrors = append(fieldErrors, models.FieldError{Field: fe.Field, Message: fe.Message})
		}
		response.BadRequest(w, r, "invalid persona", fieldErrors)
		return
	}
	response.Internal(w, r, "persona operation failed")
}

func toAPIPersona(p *persona.Profile) models.Persona {
	return models.Persona{
		ID:                   p.ID,
		Name:                 p.Name,
		Budget:               p.Budget,
		MaxTravelTimeMinutes: p.MaxTravelTime.Minutes(),
		Abilities:            p.Abilities,
		Capabilities:         p.Capabilities,
		Preferences:          p.Preferences,
		Attributes:           p.Attributes,
		TripNeeds:            p.TripNeeds,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
