package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"skillbridge-api/internal/middleware"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/logger"
)

// OccupationHandler handles occupation search, detail and matching
type OccupationHandler struct {
	matching *service.MatchingService
	logger   *logger.Logger
}

// NewOccupationHandler creates a new occupation handler
func NewOccupationHandler(matching *service.MatchingService, logger *logger.Logger) *OccupationHandler {
	return &OccupationHandler{
		matching: matching,
		logger:   logger,
	}
}

// Search handles GET /api/occupations/search?q=term. Works anonymously;
// match scores appear only for authenticated callers.
func (h *OccupationHandler) Search(w http.ResponseWriter, r *http.Request) {
	var userID string
	if user := middleware.UserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	hits, err := h.matching.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, hits, h.logger)
}

// Detail handles GET /api/occupations/{id}
func (h *OccupationHandler) Detail(w http.ResponseWriter, r *http.Request) {
	var userID string
	if user := middleware.UserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	detail, match, err := h.matching.Detail(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"occupation": detail,
		"match":      match,
	}, h.logger)
}

// Recommendations handles GET /api/occupations/recommendations
func (h *OccupationHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	matches, err := h.matching.Recommendations(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, matches, h.logger)
}

// Trending handles GET /api/occupations/trending?limit=n
func (h *OccupationHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	trending, err := h.matching.Trending(r.Context(), limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, trending, h.logger)
}

// SetCurrent handles PUT /api/occupations/current
func (h *OccupationHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		OccupationID string `json:"occupation_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.matching.SetCurrentOccupation(r.Context(), user.ID, req.OccupationID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Current occupation updated"}, h.logger)
}
