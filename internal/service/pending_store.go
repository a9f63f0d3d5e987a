package service

import (
	"context"
	"encoding/json"
	"strings"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
	"skillbridge-api/pkg/redis"
)

// pendingProfileStore keeps registration data staged between sign-up and the
// first authenticated session. Entries expire on their own; the reconciler
// deletes them explicitly once the data lands in a profile row.
type pendingProfileStore struct {
	redis      *redis.Client
	keyBuilder *redis.KeyBuilder
	logger     *logger.Logger
}

// NewPendingProfileStore creates a Redis-backed staging store
func NewPendingProfileStore(redisClient *redis.Client, keyBuilder *redis.KeyBuilder, logger *logger.Logger) PendingProfileStore {
	return &pendingProfileStore{
		redis:      redisClient,
		keyBuilder: keyBuilder,
		logger:     logger,
	}
}

func (s *pendingProfileStore) StageProfile(ctx context.Context, email string, profile *domain.PendingProfile) error {
	if strings.TrimSpace(email) == "" {
		return errors.NewValidationError("email is required to stage a profile", nil)
	}
	if profile.IsEmpty() {
		return nil
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return errors.NewInternalError("failed to marshal pending profile", err)
	}

	key := s.keyBuilder.KeyPendingProfile(email)
	if err := s.redis.Set(ctx, key, string(data), redis.TTLPendingProfile); err != nil {
		return errors.NewExternalError("failed to stage pending profile", err)
	}

	s.logger.WithField("email", strings.ToLower(email)).Debug("Pending profile staged")
	return nil
}

func (s *pendingProfileStore) GetProfile(ctx context.Context, email string) (*domain.PendingProfile, error) {
	key := s.keyBuilder.KeyPendingProfile(email)
	data, err := s.redis.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, errors.NewExternalError("failed to read pending profile", err)
	}

	var profile domain.PendingProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		// A corrupt entry is unrecoverable; drop it so the reconciler
		// falls through to the other sources instead of failing forever.
		s.logger.WithField("email", strings.ToLower(email)).Warn("Dropping unparseable pending profile")
		_ = s.redis.Delete(ctx, key)
		return nil, nil
	}

	return &profile, nil
}

func (s *pendingProfileStore) DeleteProfile(ctx context.Context, email string) error {
	key := s.keyBuilder.KeyPendingProfile(email)
	if err := s.redis.Delete(ctx, key); err != nil {
		return errors.NewExternalError("failed to delete pending profile", err)
	}
	return nil
}

func (s *pendingProfileStore) StageEmail(ctx context.Context, userID, email string) error {
	key := s.keyBuilder.KeyPendingEmail(userID)
	if err := s.redis.Set(ctx, key, strings.ToLower(email), redis.TTLPendingEmail); err != nil {
		return errors.NewExternalError("failed to stage pending email", err)
	}
	return nil
}

func (s *pendingProfileStore) Email(ctx context.Context, userID string) (string, error) {
	key := s.keyBuilder.KeyPendingEmail(userID)
	value, err := s.redis.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return "", nil
		}
		return "", errors.NewExternalError("failed to read pending email", err)
	}
	return value, nil
}
