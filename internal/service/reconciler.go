package service

import (
	"context"
	"strings"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/logger"
)

// ReconcilerService ensures the profile row for a session user exists and
// carries every piece of registration data we know about. Running it twice
// in a row is a no-op: once every candidate value is present the second run
// performs zero writes.
type ReconcilerService struct {
	profileRepo  repository.ProfileRepository
	pendingStore PendingProfileStore
	logger       *logger.Logger
}

// NewReconcilerService creates a new profile reconciler
func NewReconcilerService(profileRepo repository.ProfileRepository, pendingStore PendingProfileStore, logger *logger.Logger) *ReconcilerService {
	return &ReconcilerService{
		profileRepo:  profileRepo,
		pendingStore: pendingStore,
		logger:       logger,
	}
}

// EnsureProfile reconciles the profile row against every known data source.
// Partial carries fields captured in the same request (a sign-up form
// submitted moments ago); it may be nil.
func (s *ReconcilerService) EnsureProfile(ctx context.Context, user *domain.SessionUser, partial *domain.PendingProfile) (*domain.ReconcileResult, error) {
	if user == nil {
		return &domain.ReconcileResult{Outcome: domain.ReconcileNoUser}, nil
	}

	email := s.resolveEmail(ctx, user)

	pending, err := s.loadPending(ctx, email)
	if err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetCore(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return s.fallbackCreate(ctx, user, email, pending, partial)
	}

	patch := buildFillPatch(existing, pending, partial, user)
	if patch.IsEmpty() {
		// Staged data that produced no write was not consumed; it stays
		// until its TTL rather than being dropped on a read-only pass.
		return &domain.ReconcileResult{Outcome: domain.ReconcileUnchanged}, nil
	}

	if err := s.profileRepo.UpdateCore(ctx, user.ID, patch); err != nil {
		return nil, err
	}

	s.deletePendingIfConsumed(ctx, email, pending)

	result := &domain.ReconcileResult{
		Outcome:       domain.ReconcileUpdated,
		ChangedFields: patch.Fields(),
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"fields":  result.ChangedFields,
	}).Info("Profile reconciled")
	return result, nil
}

// fallbackCreate inserts the minimal row when the sign-up trigger did not
// run. Pending data wins over same-request partial data.
func (s *ReconcilerService) fallbackCreate(ctx context.Context, user *domain.SessionUser, email string, pending, partial *domain.PendingProfile) (*domain.ReconcileResult, error) {
	seed := &domain.ProfileSeed{
		ID:       user.ID,
		Email:    email,
		FullName: firstNonEmpty(pendingField(pending, "full_name"), pendingField(partial, "full_name"), user.MetaString("full_name")),
	}
	if g := firstNonEmpty(pendingField(pending, "gender"), pendingField(partial, "gender"), user.MetaString("gender")); g != "" {
		seed.Gender = &g
	}
	if d := firstNonEmpty(pendingField(pending, "date_of_birth"), pendingField(partial, "date_of_birth"), user.MetaString("date_of_birth")); d != "" {
		seed.DateOfBirth = &d
	}

	if err := s.profileRepo.Insert(ctx, seed); err != nil {
		return nil, err
	}

	s.deletePendingIfConsumed(ctx, email, pending)

	s.logger.WithField("user_id", user.ID).Warn("Profile row was missing, created fallback")
	return &domain.ReconcileResult{
		Outcome:  domain.ReconcileCreated,
		Fallback: true,
	}, nil
}

// buildFillPatch fills only fields that are currently empty, trying sources
// in priority order: staged pending data, same-request partial data, auth
// metadata. Existing values are never overwritten.
func buildFillPatch(existing *domain.ProfileCore, pending, partial *domain.PendingProfile, user *domain.SessionUser) domain.ProfilePatch {
	var patch domain.ProfilePatch

	if strings.TrimSpace(existing.FullName) == "" {
		if v := firstNonEmpty(pendingField(pending, "full_name"), pendingField(partial, "full_name"), user.MetaString("full_name")); v != "" {
			patch.FullName = &v
		}
	}
	if existing.Gender == nil || strings.TrimSpace(*existing.Gender) == "" {
		if v := firstNonEmpty(pendingField(pending, "gender"), pendingField(partial, "gender"), user.MetaString("gender")); v != "" {
			patch.Gender = &v
		}
	}
	if existing.DateOfBirth == nil || strings.TrimSpace(*existing.DateOfBirth) == "" {
		if v := firstNonEmpty(pendingField(pending, "date_of_birth"), pendingField(partial, "date_of_birth"), user.MetaString("date_of_birth")); v != "" {
			patch.DateOfBirth = &v
		}
	}

	return patch
}

// loadPending reads the staged profile; a read failure degrades to "no
// pending data" so a cache outage cannot block sign-in.
func (s *ReconcilerService) loadPending(ctx context.Context, email string) (*domain.PendingProfile, error) {
	if email == "" {
		return nil, nil
	}
	pending, err := s.pendingStore.GetProfile(ctx, email)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read pending profile, continuing without it")
		return nil, nil
	}
	return pending, nil
}

// deletePendingIfConsumed drops the staged entry only after the database
// write it fed has been confirmed. A failed delete just means the entry
// expires on its own.
func (s *ReconcilerService) deletePendingIfConsumed(ctx context.Context, email string, pending *domain.PendingProfile) {
	if pending.IsEmpty() || email == "" {
		return
	}
	if err := s.pendingStore.DeleteProfile(ctx, email); err != nil {
		s.logger.WithError(err).Warn("Failed to delete consumed pending profile")
	}
}

// resolveEmail prefers the token email and falls back to the staged
// pending_email entry for providers that omit it
func (s *ReconcilerService) resolveEmail(ctx context.Context, user *domain.SessionUser) string {
	if user.Email != "" {
		return strings.ToLower(user.Email)
	}
	staged, err := s.pendingStore.Email(ctx, user.ID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read pending email")
		return ""
	}
	return staged
}

func pendingField(p *domain.PendingProfile, field string) string {
	if p == nil {
		return ""
	}
	switch field {
	case "full_name":
		return strings.TrimSpace(p.FullName)
	case "gender":
		return strings.TrimSpace(p.Gender)
	case "date_of_birth":
		return strings.TrimSpace(p.DateOfBirth)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
