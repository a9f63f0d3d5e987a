package handler

import (
	"net/http"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	reconciler  *service.ReconcilerService
	profileRepo repository.ProfileRepository
	logger      *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(reconciler *service.ReconcilerService, profileRepo repository.ProfileRepository, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		reconciler:  reconciler,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// ensureRequest optionally carries profile fields captured in the same
// request, merged at lowest priority after staged data
type ensureRequest struct {
	FullName    string `json:"full_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// Ensure handles POST /api/profile/ensure. Safe to call repeatedly; once
// the row holds every known value the call performs no writes.
func (h *ProfileHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var partial *domain.PendingProfile
	if r.ContentLength > 0 {
		var req ensureRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err, h.logger)
			return
		}
		partial = &domain.PendingProfile{
			FullName:    req.FullName,
			Gender:      req.Gender,
			DateOfBirth: req.DateOfBirth,
		}
	}

	result, err := h.reconciler.EnsureProfile(r.Context(), user, partial)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Outcome == domain.ReconcileCreated {
		status = http.StatusCreated
	}
	writeData(w, status, result, h.logger)
}

// Me handles GET /api/profile/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.profileRepo.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if profile == nil {
		writeError(w, errors.NewNotFoundError("profile not found"), h.logger)
		return
	}

	writeData(w, http.StatusOK, profile, h.logger)
}

// Update handles PATCH /api/profile/me. Unlike reconciliation this is an
// explicit edit, so provided fields overwrite existing values.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var patch domain.ProfilePatch
	if err := decodeBodyPatch(r, &patch); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if patch.IsEmpty() {
		writeError(w, errors.NewValidationError("no fields to update", nil), h.logger)
		return
	}

	if err := h.profileRepo.UpdateCore(r.Context(), user.ID, patch); err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.profileRepo.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, profile, h.logger)
}

func decodeBodyPatch(r *http.Request, patch *domain.ProfilePatch) error {
	var req struct {
		FullName    *string `json:"full_name"`
		Gender      *string `json:"gender"`
		DateOfBirth *string `json:"date_of_birth"`
	}
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	patch.FullName = req.FullName
	patch.Gender = req.Gender
	patch.DateOfBirth = req.DateOfBirth
	return nil
}
