package service

import (
	"context"
	"encoding/json"
	"strings"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
	"skillbridge-api/pkg/redis"
)

const (
	defaultMatchLimit    = 20
	recommendationLimit  = 5
	searchResultLimit    = 10
	defaultTrendingLimit = 6
)

// SearchHit is an occupation search result annotated with the caller's
// match score for it
type SearchHit struct {
	Occupation domain.Occupation       `json:"occupation"`
	Match      *domain.OccupationMatch `json:"match,omitempty"`
	ExactLabel bool                    `json:"exact_label"`
}

// MatchingService drives occupation search, recommendations and trending.
// The heavy scoring runs inside the database procedures; this layer filters
// and shapes their output.
type MatchingService struct {
	occupationRepo repository.OccupationRepository
	profileRepo    repository.ProfileRepository
	skillRepo      repository.SkillRepository
	redis          *redis.Client
	keyBuilder     *redis.KeyBuilder
	logger         *logger.Logger
}

// NewMatchingService creates a new matching service
func NewMatchingService(
	occupationRepo repository.OccupationRepository,
	profileRepo repository.ProfileRepository,
	skillRepo repository.SkillRepository,
	redisClient *redis.Client,
	keyBuilder *redis.KeyBuilder,
	logger *logger.Logger,
) *MatchingService {
	return &MatchingService{
		occupationRepo: occupationRepo,
		profileRepo:    profileRepo,
		skillRepo:      skillRepo,
		redis:          redisClient,
		keyBuilder:     keyBuilder,
		logger:         logger,
	}
}

// Recommendations returns the top matches for the user, preferring
// occupations in the same hierarchy branch as the user's current one and
// never recommending the current occupation itself.
func (s *MatchingService) Recommendations(ctx context.Context, userID string) ([]domain.OccupationMatch, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile not found")
	}

	matches, err := s.occupationRepo.MatchForUser(ctx, userID, 0, defaultMatchLimit)
	if err != nil {
		return nil, err
	}

	var currentID string
	if profile.CurrentOccupationID != nil {
		currentID = *profile.CurrentOccupationID
	}

	matches = excludeOccupation(matches, currentID)

	// Prefer siblings of the current occupation; when the branch is too
	// thin, pad with the best global matches instead of returning a
	// short list.
	if currentID != "" {
		siblings, err := s.occupationRepo.HierarchyChildren(ctx, currentID)
		if err != nil {
			s.logger.WithError(err).Debug("Hierarchy lookup failed, using global matches")
		} else if len(siblings) > 0 {
			preferred := filterByIDs(matches, siblings)
			if len(preferred) >= recommendationLimit {
				return preferred[:recommendationLimit], nil
			}
			matches = mergeMatches(preferred, matches)
		}
	}

	if len(matches) > recommendationLimit {
		matches = matches[:recommendationLimit]
	}
	return matches, nil
}

// Search returns occupations matching the term, each annotated with the
// caller's match score. An exact label hit is flagged so the client can
// jump straight to the detail view.
func (s *MatchingService) Search(ctx context.Context, userID, term string) ([]SearchHit, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.NewValidationError("search term is required", nil)
	}

	occupations, err := s.occupationRepo.Search(ctx, term, searchResultLimit)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(occupations))
	for _, occ := range occupations {
		hit := SearchHit{
			Occupation: occ,
			ExactLabel: strings.EqualFold(occ.PreferredLabel, term),
		}
		if userID != "" {
			match, err := s.occupationRepo.MatchForOccupation(ctx, userID, occ.ID)
			if err != nil {
				s.logger.WithError(err).WithField("csv_id", occ.ID).Debug("Per-hit match failed")
			} else {
				hit.Match = match
			}
		}
		hits = append(hits, hit)

		// An exact label match answers the question; skip scoring the
		// remaining fuzzy hits.
		if hit.ExactLabel {
			break
		}
	}

	return hits, nil
}

// Detail assembles the occupation drill-down view
func (s *MatchingService) Detail(ctx context.Context, userID, occupationID string) (*domain.OccupationDetail, *domain.OccupationMatch, error) {
	occ, err := s.occupationRepo.GetByID(ctx, occupationID)
	if err != nil {
		return nil, nil, err
	}
	if occ == nil {
		return nil, nil, errors.NewNotFoundError("occupation not found")
	}

	detail := &domain.OccupationDetail{Occupation: *occ}

	if occ.OccupationGroupCode != nil {
		label, err := s.occupationRepo.GroupLabel(ctx, *occ.OccupationGroupCode)
		if err != nil {
			s.logger.WithError(err).Debug("Group label lookup failed")
		} else {
			detail.GroupLabel = label
		}
	}

	essentialIDs, optionalIDs, err := s.occupationRepo.SkillRelations(ctx, occupationID)
	if err != nil {
		return nil, nil, err
	}
	if detail.Essentials, err = s.skillRepo.GetByIDs(ctx, essentialIDs); err != nil {
		return nil, nil, err
	}
	if detail.Optionals, err = s.skillRepo.GetByIDs(ctx, optionalIDs); err != nil {
		return nil, nil, err
	}

	var match *domain.OccupationMatch
	if userID != "" {
		if match, err = s.occupationRepo.MatchForOccupation(ctx, userID, occupationID); err != nil {
			s.logger.WithError(err).Debug("Match lookup failed for detail view")
			match = nil
		}
	}

	return detail, match, nil
}

// SetCurrentOccupation records the user's current occupation and drops any
// cached role resolution tied to the old profile shape
func (s *MatchingService) SetCurrentOccupation(ctx context.Context, userID, occupationID string) error {
	occ, err := s.occupationRepo.GetByID(ctx, occupationID)
	if err != nil {
		return err
	}
	if occ == nil {
		return errors.NewNotFoundError("occupation not found")
	}
	return s.profileRepo.SetCurrentOccupation(ctx, userID, occupationID)
}

// Trending returns the trending occupations block, cached briefly since
// the underlying procedure scans job postings
func (s *MatchingService) Trending(ctx context.Context, limit int) ([]domain.TrendingOccupation, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}

	cacheKey := s.keyBuilder.KeyTrendingOccupations(limit)
	if data, err := s.redis.Get(ctx, cacheKey); err == nil {
		var cached []domain.TrendingOccupation
		if json.Unmarshal([]byte(data), &cached) == nil {
			return cached, nil
		}
	} else if !redis.IsNil(err) {
		s.logger.WithError(err).Debug("Trending cache read failed")
	}

	trending, err := s.occupationRepo.Trending(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(trending); err == nil {
		if err := s.redis.Set(ctx, cacheKey, string(data), redis.TTLTrending); err != nil {
			s.logger.WithError(err).Debug("Trending cache write failed")
		}
	}

	return trending, nil
}

func excludeOccupation(matches []domain.OccupationMatch, occupationID string) []domain.OccupationMatch {
	if occupationID == "" {
		return matches
	}
	out := matches[:0]
	for _, m := range matches {
		if m.OccupationID != occupationID {
			out = append(out, m)
		}
	}
	return out
}

func filterByIDs(matches []domain.OccupationMatch, ids []string) []domain.OccupationMatch {
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	var out []domain.OccupationMatch
	for _, m := range matches {
		if _, ok := allowed[m.OccupationID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// mergeMatches keeps preferred first, then appends the rest without
// duplicates
func mergeMatches(preferred, rest []domain.OccupationMatch) []domain.OccupationMatch {
	seen := make(map[string]struct{}, len(preferred))
	out := make([]domain.OccupationMatch, 0, len(preferred)+len(rest))
	for _, m := range preferred {
		seen[m.OccupationID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range rest {
		if _, ok := seen[m.OccupationID]; !ok {
			out = append(out, m)
		}
	}
	return out
}
