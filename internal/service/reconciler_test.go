package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error", "test")
	require.NoError(t, err)
	return log
}

// fakeProfileRepo implements repository.ProfileRepository for reconciler tests
type fakeProfileRepo struct {
	core *domain.ProfileCore

	getCoreCalls int
	inserted     *domain.ProfileSeed
	patches      []domain.ProfilePatch
}

func (f *fakeProfileRepo) GetCore(ctx context.Context, id string) (*domain.ProfileCore, error) {
	f.getCoreCalls++
	return f.core, nil
}

func (f *fakeProfileRepo) Insert(ctx context.Context, seed *domain.ProfileSeed) error {
	f.inserted = seed
	return nil
}

func (f *fakeProfileRepo) UpdateCore(ctx context.Context, id string, patch domain.ProfilePatch) error {
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return nil, nil
}
func (f *fakeProfileRepo) SetCurrentOccupation(ctx context.Context, id, occupationID string) error {
	return nil
}
func (f *fakeProfileRepo) CompleteAssessment(ctx context.Context, id string) error { return nil }
func (f *fakeProfileRepo) TouchLastLogin(ctx context.Context, id string) error     { return nil }
func (f *fakeProfileRepo) UpdateRole(ctx context.Context, id, role string) error   { return nil }
func (f *fakeProfileRepo) Delete(ctx context.Context, id string) error             { return nil }
func (f *fakeProfileRepo) List(ctx context.Context, search string) ([]domain.UserSummary, error) {
	return nil, nil
}
func (f *fakeProfileRepo) Count(ctx context.Context) (int, error) { return 0, nil }

// fakePendingStore implements PendingProfileStore in memory
type fakePendingStore struct {
	profiles map[string]*domain.PendingProfile
	emails   map[string]string

	reads   int
	deletes []string
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{
		profiles: make(map[string]*domain.PendingProfile),
		emails:   make(map[string]string),
	}
}

func (f *fakePendingStore) StageProfile(ctx context.Context, email string, pending *domain.PendingProfile) error {
	f.profiles[email] = pending
	return nil
}

func (f *fakePendingStore) GetProfile(ctx context.Context, email string) (*domain.PendingProfile, error) {
	f.reads++
	return f.profiles[email], nil
}

func (f *fakePendingStore) DeleteProfile(ctx context.Context, email string) error {
	f.deletes = append(f.deletes, email)
	delete(f.profiles, email)
	return nil
}

func (f *fakePendingStore) StageEmail(ctx context.Context, userID, email string) error {
	f.emails[userID] = email
	return nil
}

func (f *fakePendingStore) Email(ctx context.Context, userID string) (string, error) {
	return f.emails[userID], nil
}

func strPtr(s string) *string { return &s }

func TestEnsureProfileNoUser(t *testing.T) {
	repo := &fakeProfileRepo{}
	pending := newFakePendingStore()
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	result, err := reconciler.EnsureProfile(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReconcileNoUser, result.Outcome)
	assert.Zero(t, repo.getCoreCalls, "no session should mean zero reads")
	assert.Zero(t, pending.reads)
	assert.Empty(t, repo.patches)
	assert.Nil(t, repo.inserted)
}

func TestEnsureProfileFallbackCreate(t *testing.T) {
	repo := &fakeProfileRepo{core: nil}
	pending := newFakePendingStore()
	pending.profiles["new@example.com"] = &domain.PendingProfile{
		FullName: "Pending Name",
		Gender:   "female",
	}
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	user := &domain.SessionUser{
		ID:    "user-1",
		Email: "New@Example.com",
		Metadata: map[string]interface{}{
			"full_name":     "Metadata Name",
			"date_of_birth": "1990-01-01",
		},
	}

	result, err := reconciler.EnsureProfile(context.Background(), user, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReconcileCreated, result.Outcome)
	assert.True(t, result.Fallback)

	require.NotNil(t, repo.inserted)
	assert.Equal(t, "user-1", repo.inserted.ID)
	assert.Equal(t, "new@example.com", repo.inserted.Email)
	assert.Equal(t, "Pending Name", repo.inserted.FullName, "staged data outranks metadata")
	require.NotNil(t, repo.inserted.Gender)
	assert.Equal(t, "female", *repo.inserted.Gender)
	require.NotNil(t, repo.inserted.DateOfBirth)
	assert.Equal(t, "1990-01-01", *repo.inserted.DateOfBirth, "metadata fills fields staging lacks")

	assert.Equal(t, []string{"new@example.com"}, pending.deletes, "consumed staging entry is removed")
}

func TestEnsureProfileFillsOnlyEmptyFields(t *testing.T) {
	repo := &fakeProfileRepo{
		core: &domain.ProfileCore{
			ID:       "user-1",
			FullName: "Existing Name",
			Gender:   nil,
		},
	}
	pending := newFakePendingStore()
	pending.profiles["user@example.com"] = &domain.PendingProfile{
		FullName: "Pending Name",
		Gender:   "male",
	}
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	user := &domain.SessionUser{ID: "user-1", Email: "user@example.com"}

	result, err := reconciler.EnsureProfile(context.Background(), user, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReconcileUpdated, result.Outcome)
	assert.Equal(t, []string{"gender"}, result.ChangedFields)

	require.Len(t, repo.patches, 1)
	patch := repo.patches[0]
	assert.Nil(t, patch.FullName, "existing value is never overwritten")
	require.NotNil(t, patch.Gender)
	assert.Equal(t, "male", *patch.Gender)
}

func TestEnsureProfileIdempotent(t *testing.T) {
	repo := &fakeProfileRepo{
		core: &domain.ProfileCore{
			ID:          "user-1",
			FullName:    "Full Name",
			Gender:      strPtr("male"),
			DateOfBirth: strPtr("1990-01-01"),
		},
	}
	pending := newFakePendingStore()
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	user := &domain.SessionUser{
		ID:    "user-1",
		Email: "user@example.com",
		Metadata: map[string]interface{}{
			"full_name": "Different Name",
		},
	}

	for i := 0; i < 2; i++ {
		result, err := reconciler.EnsureProfile(context.Background(), user, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.ReconcileUnchanged, result.Outcome)
	}

	assert.Empty(t, repo.patches, "a complete row means zero writes")
	assert.Nil(t, repo.inserted)
}

func TestEnsureProfileKeepsUnconsumedPending(t *testing.T) {
	repo := &fakeProfileRepo{
		core: &domain.ProfileCore{
			ID:          "user-1",
			FullName:    "Already Set",
			Gender:      strPtr("female"),
			DateOfBirth: strPtr("1985-06-15"),
		},
	}
	pending := newFakePendingStore()
	pending.profiles["user@example.com"] = &domain.PendingProfile{
		FullName: "Staged Name",
	}
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	user := &domain.SessionUser{ID: "user-1", Email: "user@example.com"}

	result, err := reconciler.EnsureProfile(context.Background(), user, nil)
	require.NoError(t, err)

	// Every staged field was blocked by an existing value, so nothing was
	// merged and the staged entry must survive for a row that can still
	// absorb it.
	assert.Equal(t, domain.ReconcileUnchanged, result.Outcome)
	assert.Empty(t, pending.deletes, "unconsumed staged data must not be deleted")
	assert.Contains(t, pending.profiles, "user@example.com")
}

func TestEnsureProfilePartialLowerPriorityThanStaged(t *testing.T) {
	repo := &fakeProfileRepo{
		core: &domain.ProfileCore{ID: "user-1"},
	}
	pending := newFakePendingStore()
	pending.profiles["user@example.com"] = &domain.PendingProfile{FullName: "Staged Name"}
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	user := &domain.SessionUser{ID: "user-1", Email: "user@example.com"}
	partial := &domain.PendingProfile{FullName: "Partial Name", Gender: "female"}

	result, err := reconciler.EnsureProfile(context.Background(), user, partial)
	require.NoError(t, err)

	assert.Equal(t, domain.ReconcileUpdated, result.Outcome)
	require.Len(t, repo.patches, 1)
	patch := repo.patches[0]
	require.NotNil(t, patch.FullName)
	assert.Equal(t, "Staged Name", *patch.FullName)
	require.NotNil(t, patch.Gender)
	assert.Equal(t, "female", *patch.Gender, "partial data fills what staging lacks")
}

func TestEnsureProfilePendingEmailFallback(t *testing.T) {
	repo := &fakeProfileRepo{core: nil}
	pending := newFakePendingStore()
	pending.emails["user-1"] = "staged@example.com"
	pending.profiles["staged@example.com"] = &domain.PendingProfile{FullName: "Staged Name"}
	reconciler := NewReconcilerService(repo, pending, newTestLogger(t))

	// Token without an email claim; some providers omit it.
	user := &domain.SessionUser{ID: "user-1"}

	result, err := reconciler.EnsureProfile(context.Background(), user, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReconcileCreated, result.Outcome)
	require.NotNil(t, repo.inserted)
	assert.Equal(t, "staged@example.com", repo.inserted.Email)
	assert.Equal(t, "Staged Name", repo.inserted.FullName)
}
