package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/logger"
)

// AdminHandler handles the admin dashboard endpoints. The routes it sits
// behind are guarded; by the time a request arrives here the session is
// known to be an admin.
type AdminHandler struct {
	admin  *service.AdminService
	logger *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, stats, h.logger)
}

// Users handles GET /api/admin/users?q=search
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Users(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, users, h.logger)
}

// UserDetail handles GET /api/admin/users/{id}
func (h *AdminHandler) UserDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.admin.UserDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, detail, h.logger)
}

// SetRole handles PUT /api/admin/users/{id}/role
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.admin.SetRole(r.Context(), actor.ID, chi.URLParam(r, "id"), req.Role); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Role updated"}, h.logger)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.admin.DeleteUser(r.Context(), actor.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "User deleted"}, h.logger)
}

// Occupations handles GET /api/admin/occupations?page=n
func (h *AdminHandler) Occupations(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := h.admin.Occupations(r.Context(), page)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, result, h.logger)
}
