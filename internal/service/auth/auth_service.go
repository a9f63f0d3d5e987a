package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// Service validates Supabase-issued JWTs with HMAC signature verification
type Service struct {
	jwtSecret string
	logger    *logger.Logger
}

// NewService creates a new auth service
func NewService(jwtSecret string, logger *logger.Logger) *Service {
	return &Service{
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// ValidateToken validates a Supabase JWT and returns the session user
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.SessionUser, error) {
	if s.jwtSecret == "" {
		s.logger.Error("SUPABASE_JWT_SECRET not configured")
		return nil, errors.NewAuthenticationError("JWT validation not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		s.logger.WithError(err).Debug("Failed to parse/validate JWT token")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	if !token.Valid {
		return nil, errors.NewAuthenticationError("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.NewAuthenticationError("Invalid token claims")
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return nil, errors.NewAuthenticationError("Token has expired")
		}
	}

	user := &domain.SessionUser{
		ID:    stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
	}

	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		user.Metadata = meta
	}

	if user.ID == "" {
		return nil, errors.NewAuthenticationError("Invalid token: no user identifier")
	}

	s.logger.WithField("user_id", user.ID).Debug("Session token validated")
	return user, nil
}

func stringClaim(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
