package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/database"
)

type goalRepository struct {
	db *database.PostgresDB
}

// NewGoalRepository creates a career-goal repository backed by Postgres
func NewGoalRepository(db *database.PostgresDB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) GetActive(ctx context.Context, userID string) (*domain.CareerGoal, error) {
	var g domain.CareerGoal
	query := `
		SELECT id, user_id, target_occupation_id, is_primary_goal, target_timeline, status, created_at
		FROM user_career_goals
		WHERE user_id = $1 AND status = $2
	`

	err := r.db.Pool.QueryRow(ctx, query, userID, domain.GoalStatusActive).Scan(
		&g.ID,
		&g.UserID,
		&g.TargetOccupationID,
		&g.IsPrimaryGoal,
		&g.TargetTimeline,
		&g.Status,
		&g.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active goal: %w", err)
	}

	return &g, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]domain.CareerGoal, error) {
	query := `
		SELECT id, user_id, target_occupation_id, is_primary_goal, target_timeline, status, created_at
		FROM user_career_goals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []domain.CareerGoal
	for rows.Next() {
		var g domain.CareerGoal
		err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.TargetOccupationID,
			&g.IsPrimaryGoal,
			&g.TargetTimeline,
			&g.Status,
			&g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}

	return goals, nil
}

func (r *goalRepository) ArchiveActive(ctx context.Context, userID string) error {
	query := `UPDATE user_career_goals SET status = $1 WHERE user_id = $2 AND status = $3`

	_, err := r.db.Pool.Exec(ctx, query, domain.GoalStatusArchived, userID, domain.GoalStatusActive)
	if err != nil {
		return fmt.Errorf("failed to archive goals: %w", err)
	}

	return nil
}

func (r *goalRepository) Insert(ctx context.Context, goal *domain.CareerGoal) error {
	query := `
		INSERT INTO user_career_goals (user_id, target_occupation_id, is_primary_goal, target_timeline, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		goal.UserID,
		goal.TargetOccupationID,
		goal.IsPrimaryGoal,
		goal.TargetTimeline,
		goal.Status,
	).Scan(&goal.ID, &goal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	return nil
}

func (r *goalRepository) CountJobPostings(ctx context.Context, occupationID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM job_postings WHERE occupation_id = $1`

	if err := r.db.Pool.QueryRow(ctx, query, occupationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	return count, nil
}
