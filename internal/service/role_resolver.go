package service

import (
	"context"
	"encoding/json"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
	"skillbridge-api/pkg/redis"
)

// roleResolver derives admin status from the profile row, with a metadata
// fallback for sessions whose row is unreadable under row-level security.
// Resolution failures never block sign-in: an unreadable role degrades to
// non-admin.
type roleResolver struct {
	profileRepo repository.ProfileRepository
	redis       *redis.Client
	keyBuilder  *redis.KeyBuilder
	logger      *logger.Logger
}

// NewRoleResolver creates a profile-backed role resolver. The Redis client
// is optional; when present resolutions are cached briefly.
func NewRoleResolver(profileRepo repository.ProfileRepository, redisClient *redis.Client, keyBuilder *redis.KeyBuilder, logger *logger.Logger) RoleResolver {
	return &roleResolver{
		profileRepo: profileRepo,
		redis:       redisClient,
		keyBuilder:  keyBuilder,
		logger:      logger,
	}
}

func (r *roleResolver) Resolve(ctx context.Context, user *domain.SessionUser) (*domain.RoleResolution, error) {
	if user == nil {
		return &domain.RoleResolution{IsAdmin: false, Source: "none"}, nil
	}

	if cached := r.fromCache(ctx, user.ID); cached != nil {
		return cached, nil
	}

	profile, err := r.profileRepo.GetByID(ctx, user.ID)
	if err != nil {
		if errors.IsPermission(err) {
			// Row-level security hid the row from us. The signed
			// token metadata still carries the role claim set at
			// registration, so fall back to that instead of locking
			// the user out.
			resolution := &domain.RoleResolution{
				IsAdmin: user.MetaString("role") == domain.RoleAdmin,
				Source:  "metadata",
			}
			r.logger.WithField("user_id", user.ID).Warn("Profile unreadable under RLS, using metadata role")
			r.toCache(ctx, user.ID, resolution)
			return resolution, nil
		}
		r.logger.WithError(err).WithField("user_id", user.ID).Error("Role resolution failed, treating as non-admin")
		return &domain.RoleResolution{IsAdmin: false, Source: "none"}, nil
	}

	if profile == nil {
		return &domain.RoleResolution{IsAdmin: false, Source: "none"}, nil
	}

	resolution := &domain.RoleResolution{
		IsAdmin: profile.Role == domain.RoleAdmin,
		Profile: profile,
		Source:  "profile",
	}
	r.toCache(ctx, user.ID, resolution)
	return resolution, nil
}

func (r *roleResolver) fromCache(ctx context.Context, userID string) *domain.RoleResolution {
	if r.redis == nil {
		return nil
	}
	data, err := r.redis.Get(ctx, r.keyBuilder.KeyRoleResolution(userID))
	if err != nil {
		if !redis.IsNil(err) {
			r.logger.WithError(err).Debug("Role cache read failed")
		}
		return nil
	}
	var resolution domain.RoleResolution
	if err := json.Unmarshal([]byte(data), &resolution); err != nil {
		return nil
	}
	return &resolution
}

func (r *roleResolver) toCache(ctx context.Context, userID string, resolution *domain.RoleResolution) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(resolution)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, r.keyBuilder.KeyRoleResolution(userID), string(data), redis.TTLRoleResolution); err != nil {
		r.logger.WithError(err).Debug("Role cache write failed")
	}
}
