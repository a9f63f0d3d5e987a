package domain

// SessionUser is the identity carried by a Supabase session token or auth
// event. Metadata holds the raw user_metadata map; profile reconciliation
// and role resolution read hints out of it.
type SessionUser struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// MetaString returns a string field from the user metadata, or ""
func (u *SessionUser) MetaString(key string) string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	if val, ok := u.Metadata[key].(string); ok {
		return val
	}
	return ""
}

// AuthEventType mirrors the event names emitted by the auth backend
type AuthEventType string

const (
	AuthEventInitial        AuthEventType = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEventType = "SIGNED_IN"
	AuthEventSignedOut      AuthEventType = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is a single auth-change notification. User is nil on sign-out.
type AuthEvent struct {
	Type AuthEventType `json:"type"`
	User *SessionUser  `json:"user,omitempty"`
}

// SessionState is the resolved session/role snapshot the route guards read.
type SessionState struct {
	User    *SessionUser `json:"user,omitempty"`
	Profile *Profile     `json:"profile,omitempty"`
	IsAdmin bool         `json:"is_admin"`
	Loading bool         `json:"loading"`
}

// RedirectPath is the canonical post-login target for the current state:
// unauthenticated users go to sign-in, admins to the admin home, everyone
// else to the user home.
func (s SessionState) RedirectPath() string {
	if s.User == nil {
		return "/signin"
	}
	if s.IsAdmin {
		return "/admin/dashboard"
	}
	return "/home"
}

// RoleResolution is the outcome of deriving admin status for a session user
type RoleResolution struct {
	IsAdmin bool     `json:"is_admin"`
	Profile *Profile `json:"profile,omitempty"`
	// Source records where the role came from: "profile", "metadata"
	// (RLS fallback) or "none".
	Source string `json:"source"`
}
