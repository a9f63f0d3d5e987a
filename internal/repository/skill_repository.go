package repository

import (
	"context"
	"fmt"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/database"
)

type skillRepository struct {
	db *database.PostgresDB
}

// NewSkillRepository creates a skill repository backed by Postgres
func NewSkillRepository(db *database.PostgresDB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Skill, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT csv_id, preferred_label, description
		FROM skills
		WHERE csv_id = ANY($1)
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get skills: %w", err)
	}
	defer rows.Close()

	var skills []domain.Skill
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.PreferredLabel, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}

	return skills, nil
}

// GroupsForSkills resolves the skillgroup -> skill edges of the hierarchy
// for the given skills, returning group label keyed skill id lists.
func (r *skillRepository) GroupsForSkills(ctx context.Context, skillIDs []string) (map[string][]string, error) {
	if len(skillIDs) == 0 {
		return map[string][]string{}, nil
	}

	query := `
		SELECT h.child_id, COALESCE(g.preferred_label, '')
		FROM skill_hierarchy h
		LEFT JOIN skill_groups g ON g.csv_id = h.parent_id
		WHERE h.child_id = ANY($1)
		  AND h.parent_object_type = 'skillgroup'
		  AND h.child_object_type = 'skill'
	`

	rows, err := r.db.Pool.Query(ctx, query, skillIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[string][]string)
	for rows.Next() {
		var skillID, groupLabel string
		if err := rows.Scan(&skillID, &groupLabel); err != nil {
			return nil, fmt.Errorf("failed to scan skill group row: %w", err)
		}
		groups[groupLabel] = append(groups[groupLabel], skillID)
	}

	return groups, nil
}

func (r *skillRepository) UserSkillIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT skill_id FROM user_skills WHERE user_id = $1`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user skills: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user skill: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// ReplaceUserSkills swaps the user's selection in one transaction so a
// re-submitted assessment never leaves a partial set behind.
func (r *skillRepository) ReplaceUserSkills(ctx context.Context, userID string, skillIDs []string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_skills WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear user skills: %w", err)
	}

	for _, skillID := range skillIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_skills (user_id, skill_id) VALUES ($1, $2)`,
			userID, skillID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user skill: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user skills: %w", err)
	}

	return nil
}

func (r *skillRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM skills`

	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count skills: %w", err)
	}

	return count, nil
}
