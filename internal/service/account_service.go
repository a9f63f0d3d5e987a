package service

import (
	"context"
	"strings"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/internal/service/auth"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// SignUpRequest carries the registration form
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// SignInRequest carries the credentials form
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult bundles the issued session with the reconciled state
type SignInResult struct {
	Session   *auth.SupabaseSession   `json:"session"`
	Reconcile *domain.ReconcileResult `json:"reconcile"`
	Redirect  string                  `json:"redirect"`
	IsAdmin   bool                    `json:"is_admin"`
}

// AccountService orchestrates sign-up, sign-in and sign-out against the
// auth backend, keeping the session store and profile row in step
type AccountService struct {
	supabase     *auth.SupabaseClient
	pendingStore PendingProfileStore
	reconciler   *ReconcilerService
	roles        RoleResolver
	sessions     *SessionStore
	profileRepo  repository.ProfileRepository
	logger       *logger.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	supabase *auth.SupabaseClient,
	pendingStore PendingProfileStore,
	reconciler *ReconcilerService,
	roles RoleResolver,
	sessions *SessionStore,
	profileRepo repository.ProfileRepository,
	logger *logger.Logger,
) *AccountService {
	return &AccountService{
		supabase:     supabase,
		pendingStore: pendingStore,
		reconciler:   reconciler,
		roles:        roles,
		sessions:     sessions,
		profileRepo:  profileRepo,
		logger:       logger,
	}
}

// SignUp stages the profile fields first, then registers the auth user.
// Staging before the auth call means a crash between the two steps loses
// nothing: the next sign-in reconciles from the staged entry.
func (s *AccountService) SignUp(ctx context.Context, req SignUpRequest) (*domain.SessionUser, error) {
	if err := validateSignUp(req); err != nil {
		return nil, err
	}

	pending := &domain.PendingProfile{
		FullName:    strings.TrimSpace(req.FullName),
		Gender:      strings.TrimSpace(req.Gender),
		DateOfBirth: strings.TrimSpace(req.DateOfBirth),
	}
	if err := s.pendingStore.StageProfile(ctx, req.Email, pending); err != nil {
		// Staging is belt and braces on top of the metadata path, so
		// a cache outage must not block registration.
		s.logger.WithError(err).Warn("Failed to stage pending profile")
	}

	metadata := map[string]interface{}{
		"full_name": pending.FullName,
	}
	if pending.Gender != "" {
		metadata["gender"] = pending.Gender
	}
	if pending.DateOfBirth != "" {
		metadata["date_of_birth"] = pending.DateOfBirth
	}

	user, err := s.supabase.SignUp(ctx, req.Email, req.Password, metadata)
	if err != nil {
		return nil, err
	}

	if err := s.pendingStore.StageEmail(ctx, user.ID, req.Email); err != nil {
		s.logger.WithError(err).Warn("Failed to stage pending email")
	}

	return user, nil
}

// SignIn exchanges credentials for a session, reconciles the profile row
// and feeds the session store
func (s *AccountService) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, errors.NewValidationError("email and password are required", nil)
	}

	session, err := s.supabase.PasswordGrant(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	user := &session.User

	reconcile, err := s.reconciler.EnsureProfile(ctx, user, nil)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Profile reconciliation failed at sign-in")
		reconcile = &domain.ReconcileResult{Outcome: domain.ReconcileUnchanged}
	}

	if err := s.profileRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).Debug("Failed to touch last_login")
	}

	resolution, err := s.roles.Resolve(ctx, user)
	if err != nil {
		resolution = &domain.RoleResolution{Source: "none"}
	}

	s.sessions.Dispatch(domain.AuthEvent{Type: domain.AuthEventSignedIn, User: user})

	return &SignInResult{
		Session:   session,
		Reconcile: reconcile,
		Redirect:  signInRedirect(resolution),
		IsAdmin:   resolution.IsAdmin,
	}, nil
}

// signInRedirect picks the post-login landing page: admins go to the
// dashboard, users are walked through onboarding and the skill assessment
// before reaching home
func signInRedirect(resolution *domain.RoleResolution) string {
	if resolution.IsAdmin {
		return "/admin/dashboard"
	}
	if p := resolution.Profile; p != nil {
		if !p.OnboardingCompleted {
			return "/onboarding"
		}
		if !p.SkillAssessmentCompleted {
			return "/assessment"
		}
	}
	return "/home"
}

// SignOut revokes the session and clears the store
func (s *AccountService) SignOut(ctx context.Context, accessToken string) error {
	if err := s.supabase.SignOut(ctx, accessToken); err != nil {
		// Revocation failure still signs the user out locally; the
		// token expires on its own.
		s.logger.WithError(err).Warn("Token revocation failed")
	}
	s.sessions.Dispatch(domain.AuthEvent{Type: domain.AuthEventSignedOut, User: nil})
	return nil
}

// HandleAuthEvent forwards an auth-change report into the session store.
// The event's identity is always the caller's validated token user, never
// whatever the body claims, so no caller can report a sign-in as somebody
// else; a sign-out is always a nil-user event.
func (s *AccountService) HandleAuthEvent(event domain.AuthEvent, user *domain.SessionUser) error {
	switch event.Type {
	case domain.AuthEventInitial, domain.AuthEventSignedIn, domain.AuthEventSignedOut, domain.AuthEventTokenRefreshed:
	default:
		return errors.NewValidationError("unknown auth event type", map[string]interface{}{"type": string(event.Type)})
	}

	if event.Type == domain.AuthEventSignedOut {
		event.User = nil
	} else {
		event.User = user
	}

	s.sessions.Dispatch(event)
	return nil
}

func validateSignUp(req SignUpRequest) error {
	details := map[string]interface{}{}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		details["email"] = "a valid email is required"
	}
	if len(req.Password) < 8 {
		details["password"] = "password must be at least 8 characters"
	}
	if strings.TrimSpace(req.FullName) == "" {
		details["full_name"] = "full name is required"
	}
	if len(details) > 0 {
		return errors.NewValidationError("invalid sign-up request", details)
	}
	return nil
}
