package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/internal/domain"
)

func TestValidateSignUp(t *testing.T) {
	valid := SignUpRequest{
		Email:    "user@example.com",
		Password: "str0ngpassword",
		FullName: "Test User",
	}

	tests := []struct {
		name    string
		mutate  func(*SignUpRequest)
		wantErr bool
	}{
		{name: "valid request", mutate: func(r *SignUpRequest) {}},
		{name: "missing email", mutate: func(r *SignUpRequest) { r.Email = "" }, wantErr: true},
		{name: "malformed email", mutate: func(r *SignUpRequest) { r.Email = "not-an-email" }, wantErr: true},
		{name: "short password", mutate: func(r *SignUpRequest) { r.Password = "short" }, wantErr: true},
		{name: "blank full name", mutate: func(r *SignUpRequest) { r.FullName = "   " }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := validateSignUp(req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignInRedirect(t *testing.T) {
	tests := []struct {
		name       string
		resolution *domain.RoleResolution
		want       string
	}{
		{
			name:       "admin goes to dashboard",
			resolution: &domain.RoleResolution{IsAdmin: true},
			want:       "/admin/dashboard",
		},
		{
			name: "new user goes to onboarding",
			resolution: &domain.RoleResolution{
				Profile: &domain.Profile{},
			},
			want: "/onboarding",
		},
		{
			name: "onboarded user goes to assessment",
			resolution: &domain.RoleResolution{
				Profile: &domain.Profile{OnboardingCompleted: true},
			},
			want: "/assessment",
		},
		{
			name: "completed user goes home",
			resolution: &domain.RoleResolution{
				Profile: &domain.Profile{OnboardingCompleted: true, SkillAssessmentCompleted: true},
			},
			want: "/home",
		},
		{
			name:       "no profile defaults home",
			resolution: &domain.RoleResolution{Source: "metadata"},
			want:       "/home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signInRedirect(tt.resolution))
		})
	}
}

func newAccountsForEvents(t *testing.T) (*AccountService, *SessionStore) {
	roles := newGatedRoleResolver()
	store := newStoreUnderTest(t, roles, time.Second)
	require.NoError(t, store.Start(context.Background()))
	t.Cleanup(store.Stop)

	// Released up front so role lookups answer immediately.
	go func() {
		for userID := range roles.started {
			roles.release(userID, &domain.RoleResolution{Source: "profile"})
		}
	}()

	accounts := NewAccountService(nil, newFakePendingStore(), nil, roles, store, &fakeProfileRepo{}, newTestLogger(t))
	return accounts, store
}

func TestHandleAuthEventBindsCallerIdentity(t *testing.T) {
	accounts, store := newAccountsForEvents(t)

	// The body claims to be an admin; the caller's token says otherwise.
	// Only the token identity may reach the session store.
	err := accounts.HandleAuthEvent(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "admin-a"},
	}, &domain.SessionUser{ID: "user-b", Email: "b@example.com"})
	require.NoError(t, err)

	state := waitSettled(t, store)
	require.NotNil(t, state.User)
	assert.Equal(t, "user-b", state.User.ID)
}

func TestHandleAuthEventAnonymousCannotSignIn(t *testing.T) {
	accounts, store := newAccountsForEvents(t)

	err := accounts.HandleAuthEvent(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "admin-a"},
	}, nil)
	require.NoError(t, err)

	state := waitSettled(t, store)
	assert.Nil(t, state.User, "a tokenless event must not establish a session")
}

func TestHandleAuthEventSignOutClearsIdentity(t *testing.T) {
	accounts, store := newAccountsForEvents(t)

	caller := &domain.SessionUser{ID: "user-b"}
	require.NoError(t, accounts.HandleAuthEvent(domain.AuthEvent{Type: domain.AuthEventSignedIn}, caller))
	state := waitSettled(t, store)
	require.NotNil(t, state.User)

	// A sign-out is always a nil-user event, even while the caller still
	// holds a valid token.
	require.NoError(t, accounts.HandleAuthEvent(domain.AuthEvent{Type: domain.AuthEventSignedOut}, caller))
	require.Eventually(t, func() bool {
		s := store.Snapshot()
		return s.User == nil && !s.Loading
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHandleAuthEventRejectsUnknownType(t *testing.T) {
	accounts, _ := newAccountsForEvents(t)

	err := accounts.HandleAuthEvent(domain.AuthEvent{Type: "PASSWORD_RECOVERY_X"}, nil)
	require.Error(t, err)
}
