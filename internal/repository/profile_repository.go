package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/database"
)

type profileRepository struct {
	db *database.PostgresDB
}

// NewProfileRepository creates a profile repository backed by Postgres
func NewProfileRepository(db *database.PostgresDB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetCore(ctx context.Context, id string) (*domain.ProfileCore, error) {
	var core domain.ProfileCore
	query := `
		SELECT id, COALESCE(full_name, ''), gender, date_of_birth::text
		FROM user_profiles
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&core.ID,
		&core.FullName,
		&core.Gender,
		&core.DateOfBirth,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classifyReadError(err, "failed to fetch profile")
	}

	return &core, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	query := `
		SELECT id, email, COALESCE(full_name, ''), gender, date_of_birth::text,
		       avatar_url, role, current_occupation_id,
		       skill_assessment_completed, onboarding_completed,
		       created_at, updated_at, last_login
		FROM user_profiles
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Gender,
		&p.DateOfBirth,
		&p.AvatarURL,
		&p.Role,
		&p.CurrentOccupationID,
		&p.SkillAssessmentCompleted,
		&p.OnboardingCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.LastLogin,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classifyReadError(err, "failed to fetch profile")
	}

	return &p, nil
}

func (r *profileRepository) Insert(ctx context.Context, seed *domain.ProfileSeed) error {
	query := `
		INSERT INTO user_profiles (id, email, full_name, gender, date_of_birth)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		seed.ID,
		seed.Email,
		seed.FullName,
		seed.Gender,
		seed.DateOfBirth,
	)
	if err != nil {
		return classifyReadError(err, "failed to create profile")
	}

	return nil
}

func (r *profileRepository) UpdateCore(ctx context.Context, id string, patch domain.ProfilePatch) error {
	if patch.IsEmpty() {
		return nil
	}

	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	idx := 1

	if patch.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", idx))
		args = append(args, *patch.FullName)
		idx++
	}
	if patch.Gender != nil {
		sets = append(sets, fmt.Sprintf("gender = $%d", idx))
		args = append(args, *patch.Gender)
		idx++
	}
	if patch.DateOfBirth != nil {
		sets = append(sets, fmt.Sprintf("date_of_birth = $%d::date", idx))
		args = append(args, *patch.DateOfBirth)
		idx++
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE user_profiles SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		return classifyReadError(err, "failed to update profile")
	}

	return nil
}

func (r *profileRepository) SetCurrentOccupation(ctx context.Context, id, occupationID string) error {
	query := `UPDATE user_profiles SET current_occupation_id = $1, updated_at = now() WHERE id = $2`

	if _, err := r.db.Pool.Exec(ctx, query, occupationID, id); err != nil {
		return fmt.Errorf("failed to set current occupation: %w", err)
	}

	return nil
}

func (r *profileRepository) CompleteAssessment(ctx context.Context, id string) error {
	query := `
		UPDATE user_profiles
		SET skill_assessment_completed = true, onboarding_completed = true, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to complete assessment: %w", err)
	}

	return nil
}

func (r *profileRepository) TouchLastLogin(ctx context.Context, id string) error {
	query := `UPDATE user_profiles SET last_login = now() WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to record last login: %w", err)
	}

	return nil
}

func (r *profileRepository) UpdateRole(ctx context.Context, id, role string) error {
	query := `UPDATE user_profiles SET role = $1, updated_at = now() WHERE id = $2`

	if _, err := r.db.Pool.Exec(ctx, query, role, id); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM user_profiles WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	return nil
}

func (r *profileRepository) List(ctx context.Context, search string) ([]domain.UserSummary, error) {
	query := `
		SELECT id, email, COALESCE(full_name, ''), role,
		       skill_assessment_completed, onboarding_completed, created_at
		FROM user_profiles
	`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE full_name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserSummary
	for rows.Next() {
		var u domain.UserSummary
		err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.FullName,
			&u.Role,
			&u.SkillAssessmentCompleted,
			&u.OnboardingCompleted,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, nil
}

func (r *profileRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_profiles`

	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}
