package handler

import (
	"net/http"

	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/logger"
)

// StatsHandler serves the public landing-page counters
type StatsHandler struct {
	stats  *service.StatsService
	logger *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService, logger *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

// Platform handles GET /api/stats/platform
func (h *StatsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.PlatformStats(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, stats, h.logger)
}
