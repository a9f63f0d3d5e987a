package repository

import (
	"context"

	"skillbridge-api/internal/domain"
)

// ProfileRepository handles user_profiles rows
type ProfileRepository interface {
	// GetCore fetches the minimal reconciliation projection. Absence is
	// not an error: the row may simply not exist yet.
	GetCore(ctx context.Context, id string) (*domain.ProfileCore, error)

	// GetByID fetches the full profile row, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Profile, error)

	// Insert creates the minimal fallback row when the sign-up trigger
	// did not run
	Insert(ctx context.Context, seed *domain.ProfileSeed) error

	// UpdateCore patches only the fields the patch carries
	UpdateCore(ctx context.Context, id string, patch domain.ProfilePatch) error

	SetCurrentOccupation(ctx context.Context, id, occupationID string) error
	CompleteAssessment(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string) error

	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, search string) ([]domain.UserSummary, error)
	Count(ctx context.Context) (int, error)
}

// OccupationRepository handles the occupations taxonomy and the matching
// procedures delegated to the database
type OccupationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Occupation, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Occupation, error)
	ListPaged(ctx context.Context, offset, limit int) ([]domain.Occupation, error)
	Count(ctx context.Context) (int, error)

	GroupLabel(ctx context.Context, groupCode string) (string, error)
	SkillRelations(ctx context.Context, occupationID string) (essentials, optionals []string, err error)
	HierarchyChildren(ctx context.Context, parentID string) ([]string, error)

	// MatchForUser invokes match_occupations_for_user(p_user, p_min_pct, p_limit)
	MatchForUser(ctx context.Context, userID string, minPct, limit int) ([]domain.OccupationMatch, error)
	// MatchForOccupation invokes the single-occupation variant
	MatchForOccupation(ctx context.Context, userID, occupationID string) (*domain.OccupationMatch, error)
	// Trending invokes get_trending_occupations(limit_rows)
	Trending(ctx context.Context, limit int) ([]domain.TrendingOccupation, error)
}

// SkillRepository handles the skills taxonomy and user skill selections
type SkillRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Skill, error)
	GroupsForSkills(ctx context.Context, skillIDs []string) (map[string][]string, error)
	UserSkillIDs(ctx context.Context, userID string) ([]string, error)
	ReplaceUserSkills(ctx context.Context, userID string, skillIDs []string) error
	Count(ctx context.Context) (int, error)
}

// GoalRepository handles user_career_goals rows
type GoalRepository interface {
	GetActive(ctx context.Context, userID string) (*domain.CareerGoal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CareerGoal, error)
	ArchiveActive(ctx context.Context, userID string) error
	Insert(ctx context.Context, goal *domain.CareerGoal) error
	CountJobPostings(ctx context.Context, occupationID string) (int, error)
}

// MessageRepository handles community channels and messages
type MessageRepository interface {
	EnsureChannel(ctx context.Context, name string) (*domain.Channel, error)
	ListByChannel(ctx context.Context, channelID string) ([]domain.Message, error)
	Insert(ctx context.Context, msg *domain.Message) error
}

// AdminRepository owns the aggregate admin queries
type AdminRepository interface {
	// Stats calls the get_admin_stats procedure, falling back to direct
	// aggregation when the procedure is unavailable
	Stats(ctx context.Context) (*domain.AdminStats, error)
}
