package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/service"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for the session user in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// UserFromContext returns the authenticated session user, nil when the
// request carried no valid token
func UserFromContext(ctx context.Context) *domain.SessionUser {
	user, _ := ctx.Value(UserContextKey).(*domain.SessionUser)
	return user
}

// Auth creates an authentication middleware that requires a valid token
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, appErr := authenticate(r, authService, logger)
			if appErr != nil {
				writeErrorResponse(w, appErr, logger)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			logger.WithField("user_id", user.ID).Debug("User authenticated successfully")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth validates a token when one is present and continues
// anonymously otherwise. Public endpoints that personalize their output
// use this.
func OptionalAuth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, appErr := authenticate(r, authService, logger)
			if appErr != nil {
				writeErrorResponse(w, appErr, logger)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, authService service.AuthService, logger *logger.Logger) (*domain.SessionUser, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.NewAuthenticationError("Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.NewAuthenticationError("Invalid authorization header format")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, errors.NewAuthenticationError("Token is required")
	}

	user, err := authService.ValidateToken(r.Context(), token)
	if err != nil {
		logger.WithError(err).Warn("Token validation failed")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}
	return user, nil
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Warn("Request rejected")

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(response)
}
