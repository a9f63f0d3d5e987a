package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/logger"
)

// AssessmentHandler handles the skill assessment wizard and career goals
type AssessmentHandler struct {
	assessments *service.AssessmentService
	logger      *logger.Logger
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessments *service.AssessmentService, logger *logger.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		logger:      logger,
	}
}

// WizardGroups handles GET /api/assessment/occupations/{id}/groups
func (h *AssessmentHandler) WizardGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.assessments.WizardGroups(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, groups, h.logger)
}

// Submit handles POST /api/assessment/submit
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var submission domain.AssessmentSubmission
	if err := decodeBody(r, &submission); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.assessments.Submit(r.Context(), user.ID, submission); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Assessment recorded"}, h.logger)
}

// MySkills handles GET /api/assessment/skills
func (h *AssessmentHandler) MySkills(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	skills, err := h.assessments.UserSkills(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, skills, h.logger)
}

// SetGoal handles POST /api/goals
func (h *AssessmentHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
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

	goal, err := h.assessments.SetGoal(r.Context(), user.ID, req.OccupationID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, goal, h.logger)
}

// GoalProgress handles GET /api/goals/progress
func (h *AssessmentHandler) GoalProgress(w http.ResponseWriter, r *http.Request) {
	user, err := requireUser(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	progress, err := h.assessments.GoalProgress(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, progress, h.logger)
}
