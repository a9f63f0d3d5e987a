package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/errors"
)

// erroringProfileRepo returns a fixed error from GetByID
type erroringProfileRepo struct {
	fakeProfileRepo
	getByIDErr error
	profile    *domain.Profile
}

func (e *erroringProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if e.getByIDErr != nil {
		return nil, e.getByIDErr
	}
	return e.profile, nil
}

func TestRoleResolverNilUser(t *testing.T) {
	resolver := NewRoleResolver(&fakeProfileRepo{}, nil, nil, newTestLogger(t))

	resolution, err := resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, resolution.IsAdmin)
	assert.Equal(t, "none", resolution.Source)
}

func TestRoleResolverReadsProfileRole(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantAdmin bool
	}{
		{name: "admin profile", role: "admin", wantAdmin: true},
		{name: "user profile", role: "user", wantAdmin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &erroringProfileRepo{profile: &domain.Profile{ID: "user-1", Role: tt.role}}
			resolver := NewRoleResolver(repo, nil, nil, newTestLogger(t))

			resolution, err := resolver.Resolve(context.Background(), &domain.SessionUser{ID: "user-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdmin, resolution.IsAdmin)
			assert.Equal(t, "profile", resolution.Source)
			assert.NotNil(t, resolution.Profile)
		})
	}
}

func TestRoleResolverPermissionErrorFallsBackToMetadata(t *testing.T) {
	repo := &erroringProfileRepo{
		getByIDErr: errors.NewPermissionError("permission denied for table user_profiles", nil),
	}
	resolver := NewRoleResolver(repo, nil, nil, newTestLogger(t))

	user := &domain.SessionUser{
		ID:       "admin-1",
		Metadata: map[string]interface{}{"role": "admin"},
	}

	resolution, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, resolution.IsAdmin, "metadata role hint applies when the row is unreadable")
	assert.Equal(t, "metadata", resolution.Source)
	assert.Nil(t, resolution.Profile)
}

func TestRoleResolverOtherErrorsDegradeToNonAdmin(t *testing.T) {
	repo := &erroringProfileRepo{
		getByIDErr: errors.NewExternalError("connection refused", nil),
	}
	resolver := NewRoleResolver(repo, nil, nil, newTestLogger(t))

	user := &domain.SessionUser{
		ID:       "admin-1",
		Metadata: map[string]interface{}{"role": "admin"},
	}

	resolution, err := resolver.Resolve(context.Background(), user)
	require.NoError(t, err, "resolution failures never block sign-in")
	assert.False(t, resolution.IsAdmin, "metadata is trusted only on permission errors")
	assert.Equal(t, "none", resolution.Source)
}

func TestRoleResolverMissingProfileIsNonAdmin(t *testing.T) {
	repo := &erroringProfileRepo{profile: nil}
	resolver := NewRoleResolver(repo, nil, nil, newTestLogger(t))

	resolution, err := resolver.Resolve(context.Background(), &domain.SessionUser{ID: "ghost"})
	require.NoError(t, err)
	assert.False(t, resolution.IsAdmin)
	assert.Equal(t, "none", resolution.Source)
}
