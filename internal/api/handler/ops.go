// Package handler provides HTTP handlers for the decent-mobility API.
package handler

import (
	"net/http"
	"time"

	"github.com/marlinarnz/decent-mobility/internal/api/models"
	"github.com/marlinarnz/decent-mobility/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	ready     func() error
}

// NewOpsHandler creates a new OpsHandler. The ready function reports
// readiness of downstream dependencies (database); nil means always ready.
func NewOpsHandler(version, buildTime string, ready func() error) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		ready:     ready,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: "ok",
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			response.JSON(w, r, http.StatusServiceUnavailable, models.Health{
				Status: "unavailable",
				Time:   time.Now(),
				Details: map[string]interface{}{
					"error": err.Error(),
				},
			})
			return
		}
	}

	response.JSON(w, r, http.StatusOK, models.Health{
		Status: "ok",
		Time:   time.Now(),
	})
}
