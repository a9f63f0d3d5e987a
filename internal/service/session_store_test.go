package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillbridge-api/internal/domain"
)

// gatedRoleResolver blocks each Resolve call until released, so tests can
// interleave resolutions with later events
type gatedRoleResolver struct {
	mu      sync.Mutex
	gates   map[string]chan *domain.RoleResolution
	started chan string
}

func newGatedRoleResolver() *gatedRoleResolver {
	return &gatedRoleResolver{
		gates:   make(map[string]chan *domain.RoleResolution),
		started: make(chan string, 16),
	}
}

func (g *gatedRoleResolver) gate(userID string) chan *domain.RoleResolution {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates[userID] == nil {
		g.gates[userID] = make(chan *domain.RoleResolution, 1)
	}
	return g.gates[userID]
}

func (g *gatedRoleResolver) Resolve(ctx context.Context, user *domain.SessionUser) (*domain.RoleResolution, error) {
	gate := g.gate(user.ID)
	g.started <- user.ID
	return <-gate, nil
}

func (g *gatedRoleResolver) release(userID string, resolution *domain.RoleResolution) {
	g.gate(userID) <- resolution
}

func newStoreUnderTest(t *testing.T, roles RoleResolver, timeout time.Duration) *SessionStore {
	repo := &fakeProfileRepo{core: &domain.ProfileCore{ID: "any", FullName: "Name"}}
	reconciler := NewReconcilerService(repo, newFakePendingStore(), newTestLogger(t))
	resolver := SessionResolverFunc(func(ctx context.Context) (*domain.SessionUser, error) {
		return nil, nil
	})
	return NewSessionStore(resolver, roles, reconciler, timeout, newTestLogger(t))
}

func waitSettled(t *testing.T, store *SessionStore) domain.SessionState {
	t.Helper()
	var state domain.SessionState
	require.Eventually(t, func() bool {
		state = store.Snapshot()
		return !state.Loading
	}, 2*time.Second, 5*time.Millisecond)
	return state
}

func TestSessionStoreSignOutClearsState(t *testing.T) {
	roles := newGatedRoleResolver()
	store := newStoreUnderTest(t, roles, time.Second)
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	store.Dispatch(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "alice", Email: "alice@example.com"},
	})
	<-roles.started
	roles.release("alice", &domain.RoleResolution{IsAdmin: true, Source: "profile"})

	state := waitSettled(t, store)
	require.NotNil(t, state.User)
	assert.True(t, state.IsAdmin)

	store.Dispatch(domain.AuthEvent{Type: domain.AuthEventSignedOut})
	require.Eventually(t, func() bool {
		s := store.Snapshot()
		return s.User == nil && !s.Loading
	}, 2*time.Second, 5*time.Millisecond)

	state = store.Snapshot()
	assert.False(t, state.IsAdmin)
	assert.Nil(t, state.Profile)
}

func TestSessionStoreDiscardsStaleRoleLookup(t *testing.T) {
	roles := newGatedRoleResolver()
	store := newStoreUnderTest(t, roles, 5*time.Second)
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	// Sign in as an admin whose role lookup is slow.
	store.Dispatch(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "admin", Email: "admin@example.com"},
	})
	<-roles.started

	// Sign out before the lookup lands.
	store.Dispatch(domain.AuthEvent{Type: domain.AuthEventSignedOut})
	require.Eventually(t, func() bool {
		s := store.Snapshot()
		return s.User == nil && !s.Loading
	}, 2*time.Second, 5*time.Millisecond)

	// The stale lookup finally answers with admin privileges. It belongs
	// to a dead generation and must not resurrect them.
	roles.release("admin", &domain.RoleResolution{IsAdmin: true, Source: "profile"})

	time.Sleep(50 * time.Millisecond)
	state := store.Snapshot()
	assert.Nil(t, state.User)
	assert.False(t, state.IsAdmin, "stale resolution must be discarded")
}

func TestSessionStoreLastEventWins(t *testing.T) {
	roles := newGatedRoleResolver()
	store := newStoreUnderTest(t, roles, 5*time.Second)
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	store.Dispatch(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "first"},
	})
	<-roles.started

	store.Dispatch(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "second"},
	})
	<-roles.started

	// The first lookup answers late with admin, the second on time
	// without. Only the second may apply.
	roles.release("second", &domain.RoleResolution{IsAdmin: false, Source: "profile"})
	state := waitSettled(t, store)
	roles.release("first", &domain.RoleResolution{IsAdmin: true, Source: "profile"})

	time.Sleep(50 * time.Millisecond)
	state = store.Snapshot()
	require.NotNil(t, state.User)
	assert.Equal(t, "second", state.User.ID)
	assert.False(t, state.IsAdmin)
}

func TestSessionStoreLateInitialResolveIsDiscarded(t *testing.T) {
	roles := newGatedRoleResolver()
	store := newStoreUnderTest(t, roles, 5*time.Second)

	releaseInitial := make(chan struct{})
	store.resolver = func(ctx context.Context) (*domain.SessionUser, error) {
		<-releaseInitial
		return nil, nil
	}
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	// A real sign-in lands while the initial resolve is still in flight.
	store.Dispatch(domain.AuthEvent{
		Type: domain.AuthEventSignedIn,
		User: &domain.SessionUser{ID: "alice", Email: "alice@example.com"},
	})
	<-roles.started
	roles.release("alice", &domain.RoleResolution{IsAdmin: true, Source: "profile"})

	state := waitSettled(t, store)
	require.NotNil(t, state.User)

	// The initial resolve finally answers signed-out. It predates the
	// sign-in and must not clear it.
	close(releaseInitial)

	time.Sleep(50 * time.Millisecond)
	state = store.Snapshot()
	require.NotNil(t, state.User, "late initial resolve must not clear a newer session")
	assert.Equal(t, "alice", state.User.ID)
	assert.True(t, state.IsAdmin)
}

func TestSessionStoreLoadingTimesOut(t *testing.T) {
	roles := newGatedRoleResolver()
	store := newStoreUnderTest(t, roles, 30*time.Millisecond)

	// A resolver that never answers keeps the store loading until the
	// safety timeout fires.
	store.resolver = func(ctx context.Context) (*domain.SessionUser, error) {
		select {}
	}
	require.NoError(t, store.Start(context.Background()))
	defer store.Stop()

	assert.True(t, store.Snapshot().Loading)

	state := waitSettled(t, store)
	assert.Nil(t, state.User, "timed-out resolve settles on signed-out")
}
