package handler

import (
	"net/http"
	"time"

	"skillbridge-api/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	ctx := r.Context()

	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	status := "healthy"
	code := http.StatusOK

	if err := h.container.GetDatabase().Health(ctx); err != nil {
		logger.WithError(err).Error("Database health check failed")
		checks["database"] = "unavailable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := h.container.GetRedis().Health(ctx); err != nil {
		logger.WithError(err).Error("Redis health check failed")
		checks["redis"] = "unavailable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   "skillbridge-api",
		Checks:    checks,
	}
	writeJSON(w, code, response, logger)
}
