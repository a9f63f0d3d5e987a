package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/database"
)

type occupationRepository struct {
	db *database.PostgresDB
}

// NewOccupationRepository creates an occupation repository backed by Postgres
func NewOccupationRepository(db *database.PostgresDB) OccupationRepository {
	return &occupationRepository{db: db}
}

func (r *occupationRepository) GetByID(ctx context.Context, id string) (*domain.Occupation, error) {
	var occ domain.Occupation
	query := `
		SELECT csv_id, preferred_label, description, occupation_group_code
		FROM occupations
		WHERE csv_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&occ.ID,
		&occ.PreferredLabel,
		&occ.Description,
		&occ.OccupationGroupCode,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get occupation: %w", err)
	}

	return &occ, nil
}

func (r *occupationRepository) Search(ctx context.Context, term string, limit int) ([]domain.Occupation, error) {
	query := `
		SELECT csv_id, preferred_label, description, occupation_group_code
		FROM occupations
		WHERE preferred_label ILIKE $1
		ORDER BY preferred_label
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search occupations: %w", err)
	}
	defer rows.Close()

	return scanOccupations(rows)
}

func (r *occupationRepository) ListPaged(ctx context.Context, offset, limit int) ([]domain.Occupation, error) {
	query := `
		SELECT csv_id, preferred_label, description, occupation_group_code
		FROM occupations
		ORDER BY preferred_label ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupations: %w", err)
	}
	defer rows.Close()

	return scanOccupations(rows)
}

func scanOccupations(rows pgx.Rows) ([]domain.Occupation, error) {
	var occs []domain.Occupation
	for rows.Next() {
		var occ domain.Occupation
		err := rows.Scan(&occ.ID, &occ.PreferredLabel, &occ.Description, &occ.OccupationGroupCode)
		if err != nil {
			return nil, fmt.Errorf("failed to scan occupation: %w", err)
		}
		occs = append(occs, occ)
	}
	return occs, nil
}

func (r *occupationRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM occupations`

	if err := r.db.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count occupations: %w", err)
	}

	return count, nil
}

func (r *occupationRepository) GroupLabel(ctx context.Context, groupCode string) (string, error) {
	var label string
	query := `SELECT preferred_label FROM occupation_groups WHERE csv_id = $1`

	err := r.db.Pool.QueryRow(ctx, query, groupCode).Scan(&label)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get occupation group: %w", err)
	}

	return label, nil
}

func (r *occupationRepository) SkillRelations(ctx context.Context, occupationID string) ([]string, []string, error) {
	query := `
		SELECT skill_id, relation_type
		FROM occupation_to_skill_relations
		WHERE occupation_id = $1
	`

	rows, err := r.db.Pool.Query(ctx, query, occupationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get skill relations: %w", err)
	}
	defer rows.Close()

	var essentials, optionals []string
	for rows.Next() {
		var skillID, relationType string
		if err := rows.Scan(&skillID, &relationType); err != nil {
			return nil, nil, fmt.Errorf("failed to scan skill relation: %w", err)
		}
		switch relationType {
		case domain.RelationEssential:
			essentials = append(essentials, skillID)
		case domain.RelationOptional:
			optionals = append(optionals, skillID)
		}
	}

	return essentials, optionals, nil
}

func (r *occupationRepository) HierarchyChildren(ctx context.Context, parentID string) ([]string, error) {
	query := `SELECT child_id FROM occupation_hierarchy WHERE parent_id = $1`

	rows, err := r.db.Pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hierarchy children: %w", err)
	}
	defer rows.Close()

	var children []string
	for rows.Next() {
		var childID string
		if err := rows.Scan(&childID); err != nil {
			return nil, fmt.Errorf("failed to scan hierarchy row: %w", err)
		}
		children = append(children, childID)
	}

	return children, nil
}

// MatchForUser delegates the matching algorithm to the database procedure;
// this service never reimplements it.
func (r *occupationRepository) MatchForUser(ctx context.Context, userID string, minPct, limit int) ([]domain.OccupationMatch, error) {
	query := `
		SELECT m.csv_id, o.preferred_label, m.match_percent, m.missing_essentials
		FROM match_occupations_for_user($1, $2, $3) AS m
		JOIN occupations o ON o.csv_id = m.csv_id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, minPct, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to match occupations: %w", err)
	}
	defer rows.Close()

	var matches []domain.OccupationMatch
	for rows.Next() {
		var m domain.OccupationMatch
		if err := rows.Scan(&m.OccupationID, &m.PreferredLabel, &m.MatchPercent, &m.MissingEssentials); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, nil
}

func (r *occupationRepository) MatchForOccupation(ctx context.Context, userID, occupationID string) (*domain.OccupationMatch, error) {
	var m domain.OccupationMatch
	query := `
		SELECT csv_id, match_percent, missing_essentials
		FROM match_occupations_for_user($1, 0, 1, $2)
	`

	err := r.db.Pool.QueryRow(ctx, query, userID, occupationID).Scan(
		&m.OccupationID,
		&m.MatchPercent,
		&m.MissingEssentials,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match occupation: %w", err)
	}

	return &m, nil
}

func (r *occupationRepository) Trending(ctx context.Context, limit int) ([]domain.TrendingOccupation, error) {
	query := `SELECT title, description, trending_score FROM get_trending_occupations($1)`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending occupations: %w", err)
	}
	defer rows.Close()

	var trending []domain.TrendingOccupation
	for rows.Next() {
		var t domain.TrendingOccupation
		if err := rows.Scan(&t.Title, &t.Description, &t.TrendingScore); err != nil {
			return nil, fmt.Errorf("failed to scan trending row: %w", err)
		}
		trending = append(trending, t)
	}

	return trending, nil
}
