package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// roleTable resolves admin status purely from the user's own id, the way
// the profile-backed resolver does
type roleTable struct {
	admins   map[string]bool
	resolved []string
	err      error
}

func (r *roleTable) Resolve(ctx context.Context, user *domain.SessionUser) (*domain.RoleResolution, error) {
	r.resolved = append(r.resolved, user.ID)
	if r.err != nil {
		return nil, r.err
	}
	return &domain.RoleResolution{IsAdmin: r.admins[user.ID]}, nil
}

func newGuardLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error", "test")
	require.NoError(t, err)
	return log
}

// serveGuarded sends one request through the guard, authenticated as the
// given user (nil means no token)
func serveGuarded(t *testing.T, roles *roleTable, user *domain.SessionUser, capability Capability) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if user != nil {
		req = req.WithContext(context.WithValue(req.Context(), UserContextKey, user))
	}

	guard := Guard(roles, capability, newGuardLogger(t))
	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		assert.True(t, called)
	} else {
		assert.False(t, called, "rejected requests must not reach the handler")
	}
	return rec
}

func decodeRejection(t *testing.T, rec *httptest.ResponseRecorder) guardRejection {
	t.Helper()
	var rejection guardRejection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rejection))
	return rejection
}

func TestGuardRolePartition(t *testing.T) {
	admin := &domain.SessionUser{ID: "admin"}
	user := &domain.SessionUser{ID: "user"}

	tests := []struct {
		name         string
		user         *domain.SessionUser
		capability   Capability
		wantStatus   int
		wantRedirect string
	}{
		{
			name:       "admin admitted to admin route",
			user:       admin,
			capability: AdminOnly(),
			wantStatus: http.StatusOK,
		},
		{
			name:         "user rejected from admin route",
			user:         user,
			capability:   AdminOnly(),
			wantStatus:   http.StatusForbidden,
			wantRedirect: "/home",
		},
		{
			name:       "user admitted to user route",
			user:       user,
			capability: UserOnly(),
			wantStatus: http.StatusOK,
		},
		{
			name:         "admin rejected from user route",
			user:         admin,
			capability:   UserOnly(),
			wantStatus:   http.StatusForbidden,
			wantRedirect: "/admin/dashboard",
		},
		{
			name:       "admin admitted to shared route",
			user:       admin,
			capability: AnyAuthenticated(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "user admitted to shared route",
			user:       user,
			capability: AnyAuthenticated(),
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles := &roleTable{admins: map[string]bool{"admin": true}}
			rec := serveGuarded(t, roles, tt.user, tt.capability)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantRedirect != "" {
				assert.Equal(t, tt.wantRedirect, decodeRejection(t, rec).Redirect)
			}
		})
	}
}

func TestGuardUnauthenticatedRedirectsToSignIn(t *testing.T) {
	for _, capability := range []Capability{AdminOnly(), UserOnly(), AnyAuthenticated()} {
		roles := &roleTable{admins: map[string]bool{}}
		rec := serveGuarded(t, roles, nil, capability)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "/signin", decodeRejection(t, rec).Redirect)
	}
}

// The verdict must follow the request's own identity. Another user being
// an admin somewhere in the system must never admit this caller.
func TestGuardResolvesRoleForRequestUser(t *testing.T) {
	roles := &roleTable{admins: map[string]bool{"admin-a": true}}

	rec := serveGuarded(t, roles, &domain.SessionUser{ID: "user-b"}, AdminOnly())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, []string{"user-b"}, roles.resolved)
	assert.Equal(t, "/home", decodeRejection(t, rec).Redirect)
}

// A valid token is sufficient on its own; admission cannot depend on who
// else has signed in or out of the process.
func TestGuardAdmitsValidTokenWithoutPriorEvents(t *testing.T) {
	roles := &roleTable{admins: map[string]bool{}}

	rec := serveGuarded(t, roles, &domain.SessionUser{ID: "fresh"}, AnyAuthenticated())

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardRoleErrorFailsClosedForAdminRoutes(t *testing.T) {
	roles := &roleTable{err: errors.NewExternalError("role lookup failed", nil)}

	rec := serveGuarded(t, roles, &domain.SessionUser{ID: "someone"}, AdminOnly())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The same degraded resolution still admits the user to user routes.
	rec = serveGuarded(t, roles, &domain.SessionUser{ID: "someone"}, UserOnly())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardSkipsRoleLookupWhenRoleUnconstrained(t *testing.T) {
	roles := &roleTable{admins: map[string]bool{}}

	serveGuarded(t, roles, &domain.SessionUser{ID: "someone"}, AnyAuthenticated())

	assert.Empty(t, roles.resolved, "shared routes must not pay for a role lookup")
}
