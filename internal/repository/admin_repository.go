package repository

import (
	"context"
	"fmt"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/database"
	"skillbridge-api/pkg/logger"
)

type adminRepository struct {
	db  *database.PostgresDB
	log *logger.Logger
}

// NewAdminRepository creates the aggregate-stats repository
func NewAdminRepository(db *database.PostgresDB, log *logger.Logger) AdminRepository {
	return &adminRepository{db: db, log: log}
}

// Stats prefers the get_admin_stats procedure and falls back to direct
// aggregation when the procedure is missing or fails.
func (r *adminRepository) Stats(ctx context.Context) (*domain.AdminStats, error) {
	stats, err := r.statsFromProcedure(ctx)
	if err == nil {
		return stats, nil
	}

	r.log.WithError(err).Warn("get_admin_stats unavailable, aggregating directly")
	return r.statsFromAggregation(ctx)
}

func (r *adminRepository) statsFromProcedure(ctx context.Context) (*domain.AdminStats, error) {
	var s domain.AdminStats
	query := `
		SELECT total_users, completed_assessments, completed_onboarding, today_users, admin_users
		FROM get_admin_stats()
	`

	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&s.TotalUsers,
		&s.CompletedAssessments,
		&s.CompletedOnboarding,
		&s.TodayUsers,
		&s.AdminUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("admin stats procedure failed: %w", err)
	}

	s.AssessmentRate = rate(s.CompletedAssessments, s.TotalUsers)
	s.OnboardingRate = rate(s.CompletedOnboarding, s.TotalUsers)
	return &s, nil
}

func (r *adminRepository) statsFromAggregation(ctx context.Context) (*domain.AdminStats, error) {
	var s domain.AdminStats
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE skill_assessment_completed),
		       COUNT(*) FILTER (WHERE onboarding_completed),
		       COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
		       COUNT(*) FILTER (WHERE role = 'admin')
		FROM user_profiles
	`

	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&s.TotalUsers,
		&s.CompletedAssessments,
		&s.CompletedOnboarding,
		&s.TodayUsers,
		&s.AdminUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate admin stats: %w", err)
	}

	s.AssessmentRate = rate(s.CompletedAssessments, s.TotalUsers)
	s.OnboardingRate = rate(s.CompletedOnboarding, s.TotalUsers)
	return &s, nil
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
