package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// APIResponse is the common success envelope
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}, logger *logger.Logger) {
	writeJSON(w, status, APIResponse{Success: true, Data: data}, logger)
}

// writeError maps an error to the structured error body. Unknown errors
// are reported as internal without leaking their text.
func writeError(w http.ResponseWriter, err error, logger *logger.Logger) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		logger.WithError(err).Error("Unhandled error")
		appErr = errors.NewInternalError("An unexpected error occurred", err)
	} else if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithError(appErr).Error("Request failed")
	} else {
		logger.WithError(appErr).Warn("Request rejected")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	writeJSON(w, appErr.StatusCode, response, logger)
}

func decodeBody(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.NewValidationError("invalid request body", nil)
	}
	return nil
}
