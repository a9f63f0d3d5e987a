package service

import (
	"context"
	"sort"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

const defaultGoalTimeline = "1 year"

// AssessmentService drives the skill assessment wizard and career goals
type AssessmentService struct {
	skillRepo      repository.SkillRepository
	occupationRepo repository.OccupationRepository
	profileRepo    repository.ProfileRepository
	goalRepo       repository.GoalRepository
	logger         *logger.Logger
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	skillRepo repository.SkillRepository,
	occupationRepo repository.OccupationRepository,
	profileRepo repository.ProfileRepository,
	goalRepo repository.GoalRepository,
	logger *logger.Logger,
) *AssessmentService {
	return &AssessmentService{
		skillRepo:      skillRepo,
		occupationRepo: occupationRepo,
		profileRepo:    profileRepo,
		goalRepo:       goalRepo,
		logger:         logger,
	}
}

// WizardGroups builds the assessment steps for an occupation: its skill
// demands grouped by skill group, one wizard page per group. Skills whose
// group is unknown land in a synthetic "General" group at the end.
func (s *AssessmentService) WizardGroups(ctx context.Context, occupationID string) ([]domain.SkillGroup, error) {
	essentials, optionals, err := s.occupationRepo.SkillRelations(ctx, occupationID)
	if err != nil {
		return nil, err
	}

	skillIDs := append(append([]string{}, essentials...), optionals...)
	if len(skillIDs) == 0 {
		return nil, errors.NewNotFoundError("no skills recorded for occupation")
	}

	skills, err := s.skillRepo.GetByIDs(ctx, skillIDs)
	if err != nil {
		return nil, err
	}

	groupNames, err := s.skillRepo.GroupsForSkills(ctx, skillIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Skill)
	for _, skill := range skills {
		names := groupNames[skill.ID]
		if len(names) == 0 {
			names = []string{domain.GeneralSkillGroup}
		}
		for _, name := range names {
			grouped[name] = append(grouped[name], skill)
		}
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		if name != domain.GeneralSkillGroup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := grouped[domain.GeneralSkillGroup]; ok {
		names = append(names, domain.GeneralSkillGroup)
	}

	groups := make([]domain.SkillGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, domain.SkillGroup{Name: name, Skills: grouped[name]})
	}
	return groups, nil
}

// Submit records the wizard's final skill selection and marks the
// assessment complete. The selection replaces the previous one wholesale.
func (s *AssessmentService) Submit(ctx context.Context, userID string, submission domain.AssessmentSubmission) error {
	if len(submission.SkillIDs) == 0 {
		return errors.NewValidationError("at least one skill must be selected", nil)
	}

	known, err := s.skillRepo.GetByIDs(ctx, submission.SkillIDs)
	if err != nil {
		return err
	}
	if len(known) != len(dedupe(submission.SkillIDs)) {
		return errors.NewValidationError("submission contains unknown skills", nil)
	}

	if err := s.skillRepo.ReplaceUserSkills(ctx, userID, submission.SkillIDs); err != nil {
		return err
	}
	if err := s.profileRepo.CompleteAssessment(ctx, userID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":     userID,
		"skill_count": len(submission.SkillIDs),
	}).Info("Skill assessment submitted")
	return nil
}

// UserSkills returns the user's current skill selection
func (s *AssessmentService) UserSkills(ctx context.Context, userID string) ([]domain.Skill, error) {
	ids, err := s.skillRepo.UserSkillIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.skillRepo.GetByIDs(ctx, ids)
}

// SetGoal archives any active goal and records the new one as primary.
// One active goal at a time is the invariant the progress view relies on.
func (s *AssessmentService) SetGoal(ctx context.Context, userID, occupationID string) (*domain.CareerGoal, error) {
	occ, err := s.occupationRepo.GetByID(ctx, occupationID)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, errors.NewNotFoundError("occupation not found")
	}

	if err := s.goalRepo.ArchiveActive(ctx, userID); err != nil {
		return nil, err
	}

	goal := &domain.CareerGoal{
		UserID:             userID,
		TargetOccupationID: occupationID,
		IsPrimaryGoal:      true,
		TargetTimeline:     defaultGoalTimeline,
		Status:             domain.GoalStatusActive,
	}
	if err := s.goalRepo.Insert(ctx, goal); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"occupation": occupationID,
	}).Info("Career goal set")
	return goal, nil
}

// GoalProgress assembles the progress view for the active goal, nil when
// no goal is set
func (s *AssessmentService) GoalProgress(ctx context.Context, userID string) (*domain.GoalProgress, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	progress := &domain.GoalProgress{Goal: goal}

	if progress.Occupation, err = s.occupationRepo.GetByID(ctx, goal.TargetOccupationID); err != nil {
		return nil, err
	}

	match, err := s.occupationRepo.MatchForOccupation(ctx, userID, goal.TargetOccupationID)
	if err != nil {
		s.logger.WithError(err).Debug("Goal match lookup failed")
	} else if match != nil {
		progress.MatchPercent = match.MatchPercent
		if progress.MissingEssentials, err = s.skillRepo.GetByIDs(ctx, match.MissingEssentials); err != nil {
			return nil, err
		}
	}

	if progress.OpenJobPostings, err = s.goalRepo.CountJobPostings(ctx, goal.TargetOccupationID); err != nil {
		s.logger.WithError(err).Debug("Job posting count failed")
		progress.OpenJobPostings = 0
	}

	return progress, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
