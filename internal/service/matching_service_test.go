package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/internal/domain"
)

// fakeOccupationRepo implements repository.OccupationRepository in memory
type fakeOccupationRepo struct {
	occupations map[string]*domain.Occupation
	matches     []domain.OccupationMatch
	children    map[string][]string

	perOccupationCalls []string
}

func (f *fakeOccupationRepo) GetByID(ctx context.Context, id string) (*domain.Occupation, error) {
	return f.occupations[id], nil
}

func (f *fakeOccupationRepo) Search(ctx context.Context, term string, limit int) ([]domain.Occupation, error) {
	var out []domain.Occupation
	for _, occ := range f.occupations {
		out = append(out, *occ)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeOccupationRepo) ListPaged(ctx context.Context, offset, limit int) ([]domain.Occupation, error) {
	return nil, nil
}
func (f *fakeOccupationRepo) Count(ctx context.Context) (int, error) { return len(f.occupations), nil }
func (f *fakeOccupationRepo) GroupLabel(ctx context.Context, groupCode string) (string, error) {
	return "", nil
}
func (f *fakeOccupationRepo) SkillRelations(ctx context.Context, occupationID string) ([]string, []string, error) {
	return nil, nil, nil
}

func (f *fakeOccupationRepo) HierarchyChildren(ctx context.Context, parentID string) ([]string, error) {
	return f.children[parentID], nil
}

func (f *fakeOccupationRepo) MatchForUser(ctx context.Context, userID string, minPct, limit int) ([]domain.OccupationMatch, error) {
	return f.matches, nil
}

func (f *fakeOccupationRepo) MatchForOccupation(ctx context.Context, userID, occupationID string) (*domain.OccupationMatch, error) {
	f.perOccupationCalls = append(f.perOccupationCalls, occupationID)
	return &domain.OccupationMatch{OccupationID: occupationID, MatchPercent: 50}, nil
}

func (f *fakeOccupationRepo) Trending(ctx context.Context, limit int) ([]domain.TrendingOccupation, error) {
	return nil, nil
}

// fakeSkillRepo implements repository.SkillRepository with canned skills
type fakeSkillRepo struct{}

func (f *fakeSkillRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Skill, error) {
	var out []domain.Skill
	for _, id := range ids {
		out = append(out, domain.Skill{ID: id, PreferredLabel: id})
	}
	return out, nil
}
func (f *fakeSkillRepo) GroupsForSkills(ctx context.Context, skillIDs []string) (map[string][]string, error) {
	return map[string][]string{}, nil
}
func (f *fakeSkillRepo) UserSkillIDs(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (f *fakeSkillRepo) ReplaceUserSkills(ctx context.Context, userID string, skillIDs []string) error {
	return nil
}
func (f *fakeSkillRepo) Count(ctx context.Context) (int, error) { return 0, nil }

func match(id string, pct float64) domain.OccupationMatch {
	return domain.OccupationMatch{OccupationID: id, MatchPercent: pct}
}

func newMatchingUnderTest(t *testing.T, occRepo *fakeOccupationRepo, profile *domain.Profile) *MatchingService {
	profileRepo := &erroringProfileRepo{profile: profile}
	return NewMatchingService(occRepo, profileRepo, &fakeSkillRepo{}, nil, nil, newTestLogger(t))
}

func TestRecommendationsExcludeCurrentOccupation(t *testing.T) {
	occRepo := &fakeOccupationRepo{
		matches: []domain.OccupationMatch{
			match("occ-current", 95),
			match("occ-a", 90),
			match("occ-b", 80),
		},
	}
	current := "occ-current"
	svc := newMatchingUnderTest(t, occRepo, &domain.Profile{ID: "user-1", CurrentOccupationID: &current})

	matches, err := svc.Recommendations(context.Background(), "user-1")
	require.NoError(t, err)

	for _, m := range matches {
		assert.NotEqual(t, "occ-current", m.OccupationID, "current occupation is never recommended")
	}
	assert.Len(t, matches, 2)
}

func TestRecommendationsPreferHierarchySiblings(t *testing.T) {
	occRepo := &fakeOccupationRepo{
		matches: []domain.OccupationMatch{
			match("occ-far", 99),
			match("occ-sib-1", 80),
			match("occ-sib-2", 70),
		},
		children: map[string][]string{
			"occ-current": {"occ-sib-1", "occ-sib-2"},
		},
	}
	current := "occ-current"
	svc := newMatchingUnderTest(t, occRepo, &domain.Profile{ID: "user-1", CurrentOccupationID: &current})

	matches, err := svc.Recommendations(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, "occ-sib-1", matches[0].OccupationID, "branch siblings come first")
	assert.Equal(t, "occ-sib-2", matches[1].OccupationID)
	assert.Equal(t, "occ-far", matches[2].OccupationID, "global matches pad a thin branch")
}

func TestRecommendationsCapped(t *testing.T) {
	occRepo := &fakeOccupationRepo{
		matches: []domain.OccupationMatch{
			match("o1", 90), match("o2", 85), match("o3", 80),
			match("o4", 75), match("o5", 70), match("o6", 65),
		},
	}
	svc := newMatchingUnderTest(t, occRepo, &domain.Profile{ID: "user-1"})

	matches, err := svc.Recommendations(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, matches, recommendationLimit)
}

func TestRecommendationsMissingProfile(t *testing.T) {
	svc := newMatchingUnderTest(t, &fakeOccupationRepo{}, nil)

	_, err := svc.Recommendations(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestSearchExactLabelShortCircuits(t *testing.T) {
	occRepo := &fakeOccupationRepo{
		occupations: map[string]*domain.Occupation{
			"occ-1": {ID: "occ-1", PreferredLabel: "Software developer"},
		},
	}
	svc := newMatchingUnderTest(t, occRepo, &domain.Profile{ID: "user-1"})

	hits, err := svc.Search(context.Background(), "user-1", "software DEVELOPER")
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.True(t, hits[0].ExactLabel)
	require.NotNil(t, hits[0].Match)
}

func TestSearchAnonymousSkipsScoring(t *testing.T) {
	occRepo := &fakeOccupationRepo{
		occupations: map[string]*domain.Occupation{
			"occ-1": {ID: "occ-1", PreferredLabel: "Software developer"},
		},
	}
	svc := newMatchingUnderTest(t, occRepo, nil)

	hits, err := svc.Search(context.Background(), "", "developer")
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Nil(t, hits[0].Match)
	assert.Empty(t, occRepo.perOccupationCalls, "no match lookups without a session")
}

func TestSearchRejectsEmptyTerm(t *testing.T) {
	svc := newMatchingUnderTest(t, &fakeOccupationRepo{}, nil)

	_, err := svc.Search(context.Background(), "", "   ")
	assert.Error(t, err)
}
