package service

import (
	"context"
	"encoding/json"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/logger"
	"skillbridge-api/pkg/redis"
)

// StatsService serves the public landing-page counters. The numbers only
// drift slowly, so they are cached and served stale-tolerant.
type StatsService struct {
	skillRepo      repository.SkillRepository
	occupationRepo repository.OccupationRepository
	profileRepo    repository.ProfileRepository
	redis          *redis.Client
	keyBuilder     *redis.KeyBuilder
	logger         *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	skillRepo repository.SkillRepository,
	occupationRepo repository.OccupationRepository,
	profileRepo repository.ProfileRepository,
	redisClient *redis.Client,
	keyBuilder *redis.KeyBuilder,
	logger *logger.Logger,
) *StatsService {
	return &StatsService{
		skillRepo:      skillRepo,
		occupationRepo: occupationRepo,
		profileRepo:    profileRepo,
		redis:          redisClient,
		keyBuilder:     keyBuilder,
		logger:         logger,
	}
}

// PlatformStats returns the landing-page counters
func (s *StatsService) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	cacheKey := s.keyBuilder.KeyPlatformStats()
	if data, err := s.redis.Get(ctx, cacheKey); err == nil {
		var cached domain.PlatformStats
		if json.Unmarshal([]byte(data), &cached) == nil {
			return &cached, nil
		}
	} else if !redis.IsNil(err) {
		s.logger.WithError(err).Debug("Platform stats cache read failed")
	}

	stats := &domain.PlatformStats{}
	var err error
	if stats.Skills, err = s.skillRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Occupations, err = s.occupationRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Users, err = s.profileRepo.Count(ctx); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := s.redis.Set(ctx, cacheKey, string(data), redis.TTLPlatformStats); err != nil {
			s.logger.WithError(err).Debug("Platform stats cache write failed")
		}
	}

	return stats, nil
}
