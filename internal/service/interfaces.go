package service

import (
	"context"

	"skillbridge-api/internal/domain"
)

// AuthService validates backend-issued session tokens
type AuthService interface {
	// ValidateToken validates a Supabase JWT and returns the session user
	ValidateToken(ctx context.Context, token string) (*domain.SessionUser, error)
}

// SessionResolverFunc fetches the current ambient session from the auth
// backend, nil when signed out. The session store calls it exactly once at
// startup.
type SessionResolverFunc func(ctx context.Context) (*domain.SessionUser, error)

// RoleResolver derives admin status for a session user
type RoleResolver interface {
	Resolve(ctx context.Context, user *domain.SessionUser) (*domain.RoleResolution, error)
}

// PendingProfileStore is the durable staging area for profile fields
// captured at sign-up, before the server-side row exists. Keys are
// lowercase email addresses.
type PendingProfileStore interface {
	StageProfile(ctx context.Context, email string, pending *domain.PendingProfile) error
	// GetProfile returns nil when nothing is staged
	GetProfile(ctx context.Context, email string) (*domain.PendingProfile, error)
	DeleteProfile(ctx context.Context, email string) error

	StageEmail(ctx context.Context, userID, email string) error
	Email(ctx context.Context, userID string) (string, error)
}
