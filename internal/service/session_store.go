package service

import (
	"context"
	"sync"
	"time"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/logger"
)

// SessionStore owns the resolved session/role snapshot the route guards
// read. All state lives inside a single event loop goroutine; callers talk
// to it over channels, so no lock ever guards the snapshot itself.
//
// Every auth event bumps a generation counter, and role lookups launched
// for older generations are discarded when they land. A slow lookup for a
// signed-out user can therefore never resurrect a stale admin flag.
type SessionStore struct {
	resolver   SessionResolverFunc
	roles      RoleResolver
	reconciler *ReconcilerService
	timeout    time.Duration
	logger     *logger.Logger

	events    chan domain.AuthEvent
	initials  chan domain.AuthEvent
	snapshots chan chan domain.SessionState
	results   chan roleResult

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	done    chan struct{}
}

type roleResult struct {
	generation uint64
	resolution *domain.RoleResolution
}

// NewSessionStore creates a session store. The resolver fetches the ambient
// session once at startup; timeout bounds how long guards report loading
// before the store gives up and settles on signed-out.
func NewSessionStore(resolver SessionResolverFunc, roles RoleResolver, reconciler *ReconcilerService, timeout time.Duration, logger *logger.Logger) *SessionStore {
	return &SessionStore{
		resolver:   resolver,
		roles:      roles,
		reconciler: reconciler,
		timeout:    timeout,
		logger:     logger,
		events:     make(chan domain.AuthEvent, 16),
		initials:   make(chan domain.AuthEvent, 1),
		snapshots:  make(chan chan domain.SessionState),
		results:    make(chan roleResult, 16),
	}
}

// Start launches the event loop and kicks off the initial session resolve
func (s *SessionStore) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(ctx)

	// The initial resolve reports over its own channel so the loop can
	// tell it apart from real auth events: if one of those lands first,
	// the late initial result is obsolete and must not clobber it.
	go func() {
		user, err := s.resolver(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Initial session resolve failed")
			user = nil
		}
		select {
		case s.initials <- domain.AuthEvent{Type: domain.AuthEventInitial, User: user}:
		case <-s.quit:
		}
	}()

	s.logger.Info("Session store started")
	return nil
}

// Stop shuts the event loop down and waits for it to exit
func (s *SessionStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.quit)
	<-s.done
	s.logger.Info("Session store stopped")
}

// Dispatch feeds an auth event into the loop. It never blocks the caller;
// when the store is stopped the event is dropped.
func (s *SessionStore) Dispatch(event domain.AuthEvent) {
	select {
	case s.events <- event:
	case <-s.quit:
	}
}

// Snapshot returns a copy of the current session state
func (s *SessionStore) Snapshot() domain.SessionState {
	reply := make(chan domain.SessionState, 1)
	select {
	case s.snapshots <- reply:
		return <-reply
	case <-s.quit:
		return domain.SessionState{}
	}
}

func (s *SessionStore) run(ctx context.Context) {
	defer close(s.done)

	state := domain.SessionState{Loading: true}
	var generation uint64

	// The safety timer ends the loading state even if the initial
	// resolve hangs, so guards cannot stall requests indefinitely.
	safety := time.NewTimer(s.timeout)
	defer safety.Stop()

	apply := func(event domain.AuthEvent) {
		generation++
		state.User = event.User
		state.Profile = nil
		state.IsAdmin = false

		if event.User == nil {
			state.Loading = false
			s.logger.WithField("event", string(event.Type)).Debug("Session cleared")
			return
		}

		state.Loading = true
		safety.Reset(s.timeout)
		go s.resolveRole(ctx, generation, event)
	}

	for {
		select {
		case event := <-s.events:
			apply(event)

		case event := <-s.initials:
			if generation > 0 {
				s.logger.Debug("Discarding late initial session resolve")
				continue
			}
			apply(event)

		case result := <-s.results:
			if result.generation != generation {
				s.logger.WithFields(map[string]interface{}{
					"result_generation":  result.generation,
					"current_generation": generation,
				}).Debug("Discarding stale role resolution")
				continue
			}
			state.Loading = false
			if result.resolution != nil {
				state.IsAdmin = result.resolution.IsAdmin
				state.Profile = result.resolution.Profile
			}

		case <-safety.C:
			if state.Loading {
				s.logger.Warn("Session resolve timed out, settling on current state")
				state.Loading = false
			}

		case reply := <-s.snapshots:
			reply <- state

		case <-s.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// resolveRole reconciles the profile row and derives the role off the loop
// goroutine, then reports back tagged with its generation
func (s *SessionStore) resolveRole(ctx context.Context, generation uint64, event domain.AuthEvent) {
	if _, err := s.reconciler.EnsureProfile(ctx, event.User, nil); err != nil {
		s.logger.WithError(err).Warn("Profile reconciliation failed during session resolve")
	}

	resolution, err := s.roles.Resolve(ctx, event.User)
	if err != nil {
		s.logger.WithError(err).Warn("Role resolution failed during session resolve")
		resolution = &domain.RoleResolution{IsAdmin: false, Source: "none"}
	}

	select {
	case s.results <- roleResult{generation: generation, resolution: resolution}:
	case <-s.quit:
	}
}
