package service

import (
	"context"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
	"skillbridge-api/pkg/redis"
)

const adminOccupationPageSize = 25

// OccupationPage is one page of the admin occupation browser
type OccupationPage struct {
	Occupations []domain.Occupation `json:"occupations"`
	Total       int                 `json:"total"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
}

// AdminService backs the admin dashboard: aggregate stats, user management
// and the occupation browser
type AdminService struct {
	adminRepo      repository.AdminRepository
	profileRepo    repository.ProfileRepository
	skillRepo      repository.SkillRepository
	goalRepo       repository.GoalRepository
	occupationRepo repository.OccupationRepository
	redis          *redis.Client
	keyBuilder     *redis.KeyBuilder
	logger         *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	adminRepo repository.AdminRepository,
	profileRepo repository.ProfileRepository,
	skillRepo repository.SkillRepository,
	goalRepo repository.GoalRepository,
	occupationRepo repository.OccupationRepository,
	redisClient *redis.Client,
	keyBuilder *redis.KeyBuilder,
	logger *logger.Logger,
) *AdminService {
	return &AdminService{
		adminRepo:      adminRepo,
		profileRepo:    profileRepo,
		skillRepo:      skillRepo,
		goalRepo:       goalRepo,
		occupationRepo: occupationRepo,
		redis:          redisClient,
		keyBuilder:     keyBuilder,
		logger:         logger,
	}
}

// Stats returns the dashboard overview numbers
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	return s.adminRepo.Stats(ctx)
}

// Users lists profiles for the user management table, optionally filtered
// by a name or email search
func (s *AdminService) Users(ctx context.Context, search string) ([]domain.UserSummary, error) {
	return s.profileRepo.List(ctx, search)
}

// UserDetail assembles the drill-down view of a single user
func (s *AdminService) UserDetail(ctx context.Context, userID string) (*domain.UserDetail, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	detail := &domain.UserDetail{Profile: profile}

	skillIDs, err := s.skillRepo.UserSkillIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if detail.Skills, err = s.skillRepo.GetByIDs(ctx, skillIDs); err != nil {
		return nil, err
	}

	if detail.Goals, err = s.goalRepo.ListByUser(ctx, userID); err != nil {
		return nil, err
	}

	if profile.CurrentOccupationID != nil {
		if detail.Occupation, err = s.occupationRepo.GetByID(ctx, *profile.CurrentOccupationID); err != nil {
			s.logger.WithError(err).Debug("Occupation lookup failed for user detail")
		}
	}

	return detail, nil
}

// SetRole changes a user's role. Admins cannot demote themselves; losing
// the last admin mid-session would lock the dashboard.
func (s *AdminService) SetRole(ctx context.Context, actorID, userID, role string) error {
	if role != domain.RoleAdmin && role != "user" {
		return errors.NewValidationError("role must be admin or user", nil)
	}
	if actorID == userID && role != domain.RoleAdmin {
		return errors.NewValidationError("cannot remove your own admin role", nil)
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return errors.NewNotFoundError("user not found")
	}

	if err := s.profileRepo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	// Drop the cached resolution so the change bites on the user's next
	// request instead of after the cache TTL.
	if s.redis != nil {
		if err := s.redis.Delete(ctx, s.keyBuilder.KeyRoleResolution(userID)); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate cached role resolution")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"actor_id": actorID,
		"user_id":  userID,
		"role":     role,
	}).Info("User role changed")
	return nil
}

// DeleteUser removes a user's profile and everything hanging off it
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return errors.NewValidationError("cannot delete your own account from the admin panel", nil)
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return errors.NewNotFoundError("user not found")
	}

	if err := s.profileRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"actor_id": actorID,
		"user_id":  userID,
	}).Info("User deleted")
	return nil
}

// Occupations pages through the taxonomy for the admin browser
func (s *AdminService) Occupations(ctx context.Context, page int) (*OccupationPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.occupationRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * adminOccupationPageSize
	occupations, err := s.occupationRepo.ListPaged(ctx, offset, adminOccupationPageSize)
	if err != nil {
		return nil, err
	}

	return &OccupationPage{
		Occupations: occupations,
		Total:       total,
		Page:        page,
		PageSize:    adminOccupationPageSize,
	}, nil
}
